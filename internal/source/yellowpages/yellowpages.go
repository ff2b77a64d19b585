// Package yellowpages scrapes public directory listings for auto-related
// businesses. Only data the directory already publishes is collected.
package yellowpages

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/source/types"
	"buyerfinder/internal/source/util"
)

const userAgent = "BuyerFinder/1.0 (+local)"

type Config struct {
	BaseURL    string
	Categories []string
	Locations  []string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string            { return "yellowpages" }
func (s *Scraper) Kind() domain.SourceKind { return domain.SourceDirectory }

// Fetch searches every configured (category, location) pair. A single failed
// search does not abort the rest; the source as a whole fails only when no
// search succeeded, so an outage is never mistaken for zero listings.
func (s *Scraper) Fetch(ctx context.Context) (types.FetchResult, error) {
	res := types.FetchResult{Source: domain.SourceDirectory}

	attempted, failed := 0, 0
	var lastErr error

	for _, loc := range s.cfg.Locations {
		for _, cat := range s.cfg.Categories {
			attempted++
			records, err := s.search(ctx, cat, loc)
			if err != nil {
				failed++
				lastErr = err
				slog.Warn("directory search failed", "category", cat, "location", loc, "err", err)
				continue
			}
			slog.Info("directory search done", "category", cat, "location", loc, "listings", len(records))
			res.Records = append(res.Records, records...)
		}
	}

	if attempted > 0 && failed == attempted {
		return res, fmt.Errorf("yellowpages: all %d searches failed: %w", attempted, lastErr)
	}
	return res, nil
}

func (s *Scraper) search(ctx context.Context, category, location string) ([]domain.RawRecord, error) {
	q := url.Values{}
	q.Set("search_terms", category)
	q.Set("geo_location_terms", location)
	searchURL := s.cfg.BaseURL + "/search?" + q.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yellowpages get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("yellowpages status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yellowpages parse: %w", err)
	}

	return parseListings(doc, category), nil
}

// parseListings pulls one raw record per ".result" block. Listings without
// a business name are skipped here the same way the normalizer would drop
// them later.
func parseListings(doc *goquery.Document, category string) []domain.RawRecord {
	var out []domain.RawRecord

	doc.Find("div.result").Each(func(_ int, sel *goquery.Selection) {
		name := util.CleanText(sel.Find("a.business-name").First().Text())
		if name == "" {
			return
		}

		fields := map[string]string{
			"name":     name,
			"phone":    util.CleanText(sel.Find("div.phones").First().Text()),
			"address":  util.CleanText(sel.Find("div.street-address").First().Text()),
			"category": category,
		}
		if href, ok := sel.Find("a.track-visit-website").First().Attr("href"); ok {
			fields["website"] = href
		}

		out = append(out, domain.RawRecord{Source: domain.SourceDirectory, Fields: fields})
	})

	return out
}
