package search

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyderabadinfra/server/internal/events"
	"hyderabadinfra/server/internal/models"
)

type stubListingsClient struct {
	results    []models.SearchResult
	total      int64
	err        error
	featured   []models.SearchResult
	lastReq    models.SearchRequest
	fetchCalls int
}

func (c *stubListingsClient) FetchListings(req models.SearchRequest) ([]models.SearchResult, int64, error) {
	c.fetchCalls++
	c.lastReq = req
	if c.err != nil {
		return nil, 0, c.err
	}
	out := make([]models.SearchResult, len(c.results))
	copy(out, c.results)
	return out, c.total, nil
}

func (c *stubListingsClient) FetchFeatured(limit int) ([]models.SearchResult, error) {
	if limit < len(c.featured) {
		return c.featured[:limit], nil
	}
	return c.featured, nil
}

type stubHistoryStore struct {
	saved   []models.SearchHistory
	recent  []models.SearchHistory
	popular []string
	err     error
}

func (s *stubHistoryStore) InsertSearchHistory(h models.SearchHistory) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, h)
	return nil
}

func (s *stubHistoryStore) RecentSearchesByUser(userID string, limit int) ([]models.SearchHistory, error) {
	return s.recent, nil
}

func (s *stubHistoryStore) PopularSearchTerms(limit int) ([]string, error) {
	return s.popular, nil
}

type nullPublisher struct {
	published []events.Event
	err       error
}

func (p *nullPublisher) Publish(topic string, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, e)
	return nil
}

func listing(id, title string) models.SearchResult {
	return models.SearchResult{
		ID:        id,
		Title:     title,
		Location:  "Kondapur, Hyderabad",
		City:      "Hyderabad",
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestScoreResult_BaseScore(t *testing.T) {
	r := listing("p1", "Plain flat")
	assert.Equal(t, 10.0, scoreResult(&r, ""))
}

func TestScoreResult_FeaturedAndVerifiedBoosts(t *testing.T) {
	r := listing("p1", "Plain flat")
	r.IsFeatured = true
	assert.Equal(t, 30.0, scoreResult(&r, ""))

	r.IsVerified = true
	assert.Equal(t, 45.0, scoreResult(&r, ""))
}

func TestScoreResult_EngagementBoostsAreCapped(t *testing.T) {
	r := listing("p1", "Plain flat")
	r.ViewsCount = 50
	assert.Equal(t, 15.0, scoreResult(&r, ""))

	r.ViewsCount = 1000
	assert.Equal(t, 20.0, scoreResult(&r, ""), "views boost caps at 10")

	r.ViewsCount = 0
	r.FavoritesCount = 10
	assert.Equal(t, 15.0, scoreResult(&r, ""))

	r.FavoritesCount = 500
	assert.Equal(t, 25.0, scoreResult(&r, ""), "favorites boost caps at 15")
}

func TestScoreResult_TextMatchesAreCaseInsensitive(t *testing.T) {
	r := listing("p1", "Lake View Apartment")
	r.Description = "Spacious 3BHK with LAKE VIEW balcony"
	r.Location = "Lake View Road, Gachibowli"

	// title +25, description +15, location +20 on top of the base 10
	assert.Equal(t, 70.0, scoreResult(&r, "lake view"))

	r.Location = "Gachibowli"
	assert.Equal(t, 50.0, scoreResult(&r, "lake view"))
}

func TestSearch_FeaturedSortsAheadOfPlain(t *testing.T) {
	plain := listing("plain", "City flat")
	featured := listing("featured", "City flat")
	featured.IsFeatured = true

	client := &stubListingsClient{results: []models.SearchResult{plain, featured}, total: 2}
	engine := NewEngine(client, &stubHistoryStore{}, &nullPublisher{}, logrus.New())

	page, err := engine.Search(models.SearchRequest{}, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "featured", page.Results[0].ID)
	assert.GreaterOrEqual(t, page.Results[0].RelevanceScore-page.Results[1].RelevanceScore, 20.0)
}

func TestSearch_TieBreaksOnCreationTimeDescending(t *testing.T) {
	older := listing("older", "Same flat")
	newer := listing("newer", "Same flat")
	newer.CreatedAt = older.CreatedAt.Add(24 * time.Hour)

	client := &stubListingsClient{results: []models.SearchResult{older, newer}, total: 2}
	engine := NewEngine(client, &stubHistoryStore{}, &nullPublisher{}, logrus.New())

	page, err := engine.Search(models.SearchRequest{}, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "newer", page.Results[0].ID)
}

func TestSearch_FreeTextRankingScenario(t *testing.T) {
	// Twelve Hyderabad listings, three featured, a few matching the free
	// text. The page holds the ten best-scored rows with featured matches
	// first.
	var upstream []models.SearchResult
	for i := 0; i < 12; i++ {
		r := listing(fmt.Sprintf("p%d", i), fmt.Sprintf("Flat number %d", i))
		if i < 3 {
			r.IsFeatured = true
		}
		if i%4 == 0 {
			r.Title = fmt.Sprintf("Lake view flat %d", i)
		}
		upstream = append(upstream, r)
	}

	client := &stubListingsClient{results: upstream, total: 12}
	store := &stubHistoryStore{}
	publisher := &nullPublisher{}
	engine := NewEngine(client, store, publisher, logrus.New())

	page, err := engine.Search(models.SearchRequest{Query: "lake view", City: "Hyderabad"}, "u1", "10.0.0.1", "test-agent")
	require.NoError(t, err)

	assert.Len(t, page.Results, 10, "results clamp to one page after ranking")
	assert.Equal(t, int64(12), page.TotalElements)
	// p0 is both featured and a title match: base 10 + featured 20 + title 25.
	assert.Equal(t, "p0", page.Results[0].ID)
	assert.Equal(t, 55.0, page.Results[0].RelevanceScore)

	for i := 1; i < len(page.Results); i++ {
		assert.GreaterOrEqual(t, page.Results[i-1].RelevanceScore, page.Results[i].RelevanceScore)
	}

	// History records the pre-clamp result count and the search event fires.
	require.Len(t, store.saved, 1)
	assert.Equal(t, "lake view", store.saved[0].SearchQuery)
	assert.Equal(t, 12, store.saved[0].ResultsCount)
	assert.Equal(t, "10.0.0.1", store.saved[0].IPAddress)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.TypePropertySearched, publisher.published[0].EventType())
}

func TestSearch_UpstreamFailureIsFatal(t *testing.T) {
	client := &stubListingsClient{err: ErrUpstreamUnavailable}
	store := &stubHistoryStore{}
	engine := NewEngine(client, store, &nullPublisher{}, logrus.New())

	_, err := engine.Search(models.SearchRequest{}, "u1", "", "")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Empty(t, store.saved, "failed searches are not recorded")
}

func TestSearch_HistoryFailuresAreSwallowed(t *testing.T) {
	client := &stubListingsClient{results: []models.SearchResult{listing("p1", "Flat")}, total: 1}
	store := &stubHistoryStore{err: fmt.Errorf("disk full")}
	publisher := &nullPublisher{err: fmt.Errorf("broker down")}
	engine := NewEngine(client, store, publisher, logrus.New())

	page, err := engine.Search(models.SearchRequest{}, "u1", "", "")
	require.NoError(t, err)
	assert.Len(t, page.Results, 1)
}

func TestSearch_ComputesDistanceWhenCoordinatesPresent(t *testing.T) {
	lat, lon := 17.4435, 78.3772 // Gachibowli
	r := listing("p1", "Flat")
	plat, plon := 17.4948, 78.3996 // Kondapur, a few km north
	r.Latitude, r.Longitude = &plat, &plon

	client := &stubListingsClient{results: []models.SearchResult{r}, total: 1}
	engine := NewEngine(client, &stubHistoryStore{}, &nullPublisher{}, logrus.New())

	page, err := engine.Search(models.SearchRequest{Latitude: &lat, Longitude: &lon}, "u1", "", "")
	require.NoError(t, err)
	require.NotNil(t, page.Results[0].DistanceKm)
	assert.InDelta(t, 6.2, *page.Results[0].DistanceKm, 1.5)
}

func TestSearch_NoDistanceWithoutRequestCoordinates(t *testing.T) {
	lat, lon := 17.4948, 78.3996
	r := listing("p1", "Flat")
	r.Latitude, r.Longitude = &lat, &lon

	client := &stubListingsClient{results: []models.SearchResult{r}, total: 1}
	engine := NewEngine(client, &stubHistoryStore{}, &nullPublisher{}, logrus.New())

	page, err := engine.Search(models.SearchRequest{}, "u1", "", "")
	require.NoError(t, err)
	assert.Nil(t, page.Results[0].DistanceKm)
}

func mustFilter(t *testing.T, req models.SearchRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return string(data)
}

func TestGetRecommendations_InfersMostFrequentCity(t *testing.T) {
	store := &stubHistoryStore{recent: []models.SearchHistory{
		{SearchFilter: mustFilter(t, models.SearchRequest{City: "Hyderabad"})},
		{SearchFilter: mustFilter(t, models.SearchRequest{City: "Hyderabad"})},
		{SearchFilter: mustFilter(t, models.SearchRequest{City: "Pune"})},
		{SearchFilter: "{not json"},
	}}
	client := &stubListingsClient{results: []models.SearchResult{listing("p1", "Flat")}, total: 1}
	engine := NewEngine(client, store, &nullPublisher{}, logrus.New())

	results, err := engine.GetRecommendations("u1", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "Hyderabad", client.lastReq.City)
	assert.Equal(t, "createdAt", client.lastReq.SortBy)
}

func TestGetRecommendations_NoHistoryFallsBackToFeatured(t *testing.T) {
	client := &stubListingsClient{featured: []models.SearchResult{listing("f1", "Featured flat")}}
	engine := NewEngine(client, &stubHistoryStore{}, &nullPublisher{}, logrus.New())

	results, err := engine.GetRecommendations("u1", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f1", results[0].ID)
	assert.Zero(t, client.fetchCalls, "no synthetic search without history")
}

func TestGetRecommendations_TruncatesToLimit(t *testing.T) {
	var upstream []models.SearchResult
	for i := 0; i < 8; i++ {
		upstream = append(upstream, listing(fmt.Sprintf("p%d", i), "Flat"))
	}
	store := &stubHistoryStore{recent: []models.SearchHistory{
		{SearchFilter: mustFilter(t, models.SearchRequest{City: "Hyderabad"})},
	}}
	client := &stubListingsClient{results: upstream, total: 8}
	engine := NewEngine(client, store, &nullPublisher{}, logrus.New())

	results, err := engine.GetRecommendations("u1", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestGetSuggestions_FiltersByPartialQuery(t *testing.T) {
	store := &stubHistoryStore{popular: []string{"lake view", "gated community", "Lakefront villa"}}
	engine := NewEngine(&stubListingsClient{}, store, &nullPublisher{}, logrus.New())

	all, err := engine.GetSuggestions("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := engine.GetSuggestions("LAKE", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"lake view", "Lakefront villa"}, filtered)
}
