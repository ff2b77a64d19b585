package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buyerfinder/internal/domain"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{Endpoint: "https://api.example.com"})
	require.Error(t, err)

	_, err = NewClient(Config{Endpoint: "https://api.example.com", APIKey: "k", UserID: "u"})
	require.NoError(t, err)
}

func TestFetchMapsRegistrations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "user-42", r.Header.Get("User-ID"))
		assert.Equal(t, "/registrations", r.URL.Path)
		assert.Equal(t, "Jacksonville, FL", r.URL.Query().Get("location"))
		assert.Equal(t, "-90d", r.URL.Query().Get("purchase_date_start"))
		assert.Equal(t, "new_registration", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[
			{"owner_name":"John Smith","phone":"9045550202","address":"5 Oak St","vehicle_type":"Commercial","registration_date":"2026-07-10"},
			{"owner_name":"Jane Doe","vehicle_type":"Passenger","registration_date":"2026-08-01"}
		]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Endpoint:  srv.URL,
		APIKey:    "test-key",
		UserID:    "user-42",
		Locations: []string{"Jacksonville, FL"},
	})
	require.NoError(t, err)

	res, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, domain.SourceRegistry, res.Source)

	first := res.Records[0]
	assert.Equal(t, domain.SourceRegistry, first.Source)
	assert.Equal(t, "John Smith", first.Fields["owner_name"])
	assert.Equal(t, "9045550202", first.Fields["phone"])
	assert.Equal(t, "Commercial", first.Fields["category"])
	assert.Equal(t, "true", first.Fields["recent_registration"])
}

func TestFetchPropagatesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Endpoint:  srv.URL,
		APIKey:    "bad-key",
		UserID:    "user-42",
		Locations: []string{"Jacksonville, FL", "Saint Augustine, FL"},
	})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetchFailsWhenAllLocationsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Endpoint:  srv.URL,
		APIKey:    "k",
		UserID:    "u",
		Locations: []string{"A", "B"},
	})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestMockFetch(t *testing.T) {
	m := &Mock{Locations: []string{"Jacksonville, FL"}}

	res, err := m.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	for _, r := range res.Records {
		assert.Equal(t, domain.SourceRegistry, r.Source)
		assert.Equal(t, "true", r.Fields["recent_registration"])
		assert.NotEmpty(t, r.Fields["owner_name"])
	}
}
