package search

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyderabadinfra/server/internal/models"
)

const listingsBody = `{
	"data": {
		"content": [
			{"id": "p1", "title": "Lake view flat", "city": "Hyderabad", "price": 500000,
			 "isFeatured": true, "viewsCount": 42, "latitude": 17.44, "longitude": 78.37,
			 "createdAt": "2026-08-01T00:00:00Z"},
			{"id": "p2", "title": "Bare record"}
		],
		"totalElements": 2
	}
}`

func TestFetchListings_FreeTextRoutesToSearch(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logrus.New())
	minPrice := 100000.0
	results, total, err := client.FetchListings(models.SearchRequest{
		Query:    "lake view",
		City:     "Hyderabad",
		MinPrice: &minPrice,
		Page:     0,
		Size:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, []string{"lake view"}, gotQuery["query"])
	assert.Equal(t, []string{"Hyderabad"}, gotQuery["city"])
	assert.Equal(t, []string{"100000"}, gotQuery["minPrice"])
	assert.Equal(t, []string{"10"}, gotQuery["size"])

	assert.Equal(t, int64(2), total)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.True(t, results[0].IsFeatured)
	assert.Equal(t, int64(42), results[0].ViewsCount)
	require.NotNil(t, results[0].Latitude)
	assert.InDelta(t, 17.44, *results[0].Latitude, 0.001)
}

func TestFetchListings_StructuredFiltersRouteToFilter(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logrus.New())
	_, _, err := client.FetchListings(models.SearchRequest{City: "Hyderabad", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, "/filter", gotPath)
}

func TestFetchListings_OmittedFieldsStayZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logrus.New())
	results, _, err := client.FetchListings(models.SearchRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)

	bare := results[1]
	assert.Equal(t, "p2", bare.ID)
	assert.False(t, bare.IsFeatured)
	assert.Zero(t, bare.ViewsCount)
	assert.Nil(t, bare.Latitude)
	assert.True(t, bare.CreatedAt.IsZero())
}

func TestFetchListings_ServerErrorIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logrus.New())
	_, _, err := client.FetchListings(models.SearchRequest{Size: 10})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchListings_UnreachableHostIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second, logrus.New())
	_, _, err := client.FetchListings(models.SearchRequest{Size: 10})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchFeatured_PassesLimit(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logrus.New())
	results, err := client.FetchFeatured(6)
	require.NoError(t, err)
	assert.Equal(t, "/featured", gotPath)
	assert.Equal(t, []string{"6"}, gotQuery["size"])
	assert.Len(t, results, 2)
}
