package yellowpages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/source/util"
)

const fixtureHTML = `
<html><body>
  <div class="result">
    <a class="business-name">Joe's Auto Sales</a>
    <div class="phones">(904) 555-0101</div>
    <div class="street-address">12 Main St, Jacksonville, FL</div>
    <a class="track-visit-website" href="https://joes.example.com">Website</a>
  </div>
  <div class="result">
    <a class="business-name">Riverside Collision</a>
    <div class="phones">904-555-0303</div>
  </div>
  <div class="result">
    <a class="business-name"></a>
    <div class="phones">904-555-0404</div>
  </div>
</body></html>`

func TestParseListings(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixtureHTML))
	require.NoError(t, err)

	records := parseListings(doc, "auto dealers")
	require.Len(t, records, 2, "nameless listing is skipped")

	first := records[0]
	assert.Equal(t, domain.SourceDirectory, first.Source)
	assert.Equal(t, "Joe's Auto Sales", first.Fields["name"])
	assert.Equal(t, "(904) 555-0101", first.Fields["phone"])
	assert.Equal(t, "12 Main St, Jacksonville, FL", first.Fields["address"])
	assert.Equal(t, "https://joes.example.com", first.Fields["website"])
	assert.Equal(t, "auto dealers", first.Fields["category"])

	second := records[1]
	assert.Equal(t, "Riverside Collision", second.Fields["name"])
	assert.Empty(t, second.Fields["website"])
	assert.Empty(t, second.Fields["address"])
}

func TestFetchAgainstStubServer(t *testing.T) {
	var gotQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQueries = append(gotQueries,
			r.URL.Query().Get("search_terms")+"|"+r.URL.Query().Get("geo_location_terms"))
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	s := New(Config{
		BaseURL:    srv.URL,
		Categories: []string{"auto dealers", "car buyers"},
		Locations:  []string{"Jacksonville, FL"},
	}, util.NewHostLimiter(100, 10))

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDirectory, res.Source)
	assert.Len(t, res.Records, 4, "two listings per search, two searches")
	assert.Equal(t, []string{
		"auto dealers|Jacksonville, FL",
		"car buyers|Jacksonville, FL",
	}, gotQueries)
}

func TestFetchFailsWhenAllSearchesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(Config{
		BaseURL:    srv.URL,
		Categories: []string{"auto dealers"},
		Locations:  []string{"Jacksonville, FL"},
	}, nil)

	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestFetchToleratesPartialSearchFailure(t *testing.T) {
	n := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		if n == 1 {
			http.Error(w, "oops", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	s := New(Config{
		BaseURL:    srv.URL,
		Categories: []string{"auto dealers", "car buyers"},
		Locations:  []string{"Jacksonville, FL"},
	}, nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
}
