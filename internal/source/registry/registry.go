// Package registry talks to an authorized vehicle-registry API. Registry
// records are access-controlled; the client refuses to start without
// credentials and never falls back to live data on its own. Use Mock for
// anything that is not an authorized production run.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/source/types"
)

// ErrUnauthorized covers 401/403 from the registry API. It aborts the whole
// source immediately: an authorization problem must never look like an
// empty result set.
var ErrUnauthorized = errors.New("registry: not authorized")

type Config struct {
	Endpoint     string
	APIKey       string
	UserID       string
	Locations    []string
	LookbackDays int
}

type Client struct {
	cfg Config
	hc  *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" || cfg.UserID == "" {
		return nil, errors.New("registry: endpoint, api key and user id are all required")
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Name() string            { return "registry" }
func (c *Client) Kind() domain.SourceKind { return domain.SourceRegistry }

func (c *Client) Fetch(ctx context.Context) (types.FetchResult, error) {
	res := types.FetchResult{Source: domain.SourceRegistry}

	attempted, failed := 0, 0
	var lastErr error

	for _, loc := range c.cfg.Locations {
		attempted++
		records, err := c.findRecentBuyers(ctx, loc)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return res, err
			}
			failed++
			lastErr = err
			slog.Warn("registry query failed", "location", loc, "err", err)
			continue
		}
		slog.Info("registry query done", "location", loc, "records", len(records))
		res.Records = append(res.Records, records...)
	}

	if attempted > 0 && failed == attempted {
		return res, fmt.Errorf("registry: all %d queries failed: %w", attempted, lastErr)
	}
	return res, nil
}

type registrationRecord struct {
	OwnerName        string `json:"owner_name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	VehicleType      string `json:"vehicle_type"`
	RegistrationDate string `json:"registration_date"`
	Location         string `json:"location"`
}

type registrationsResponse struct {
	Records []registrationRecord `json:"records"`
}

func (c *Client) findRecentBuyers(ctx context.Context, location string) ([]domain.RawRecord, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("purchase_date_start", fmt.Sprintf("-%dd", c.cfg.LookbackDays))
	q.Set("type", "new_registration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.Endpoint+"/registrations?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("User-ID", c.cfg.UserID)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry get: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("registry status %d", resp.StatusCode)
	}

	var body registrationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("registry decode: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(body.Records))
	for _, r := range body.Records {
		out = append(out, domain.RawRecord{
			Source: domain.SourceRegistry,
			Fields: map[string]string{
				"owner_name": r.OwnerName,
				"phone":      r.Phone,
				"address":    r.Address,
				"category":   r.VehicleType,
				// the query is already scoped to recent registrations
				"recent_registration": "true",
				"registration_date":   r.RegistrationDate,
			},
		})
	}
	return out, nil
}

// Mock stands in for the real registry. It returns fixed sample records and
// never performs network I/O.
type Mock struct {
	Locations []string
}

func (m *Mock) Name() string            { return "registry(mock)" }
func (m *Mock) Kind() domain.SourceKind { return domain.SourceRegistry }

func (m *Mock) Fetch(ctx context.Context) (types.FetchResult, error) {
	res := types.FetchResult{Source: domain.SourceRegistry}
	for _, loc := range m.Locations {
		for i := 1; i <= 2; i++ {
			res.Records = append(res.Records, domain.RawRecord{
				Source: domain.SourceRegistry,
				Fields: map[string]string{
					"owner_name":          "Sample Business " + strconv.Itoa(i),
					"category":            "Commercial",
					"address":             loc,
					"recent_registration": "true",
					"registration_date":   time.Now().AddDate(0, 0, -30*i).Format("2006-01-02"),
				},
			})
		}
	}
	slog.Warn("registry mock in use, records are not real", "records", len(res.Records))
	return res, nil
}
