package search

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/eventbus"
	"hyderabadinfra/server/internal/events"
	"hyderabadinfra/server/internal/models"
)

const defaultPageSize = 10

// ListingsClient is the remote listings endpoint contract.
type ListingsClient interface {
	FetchListings(req models.SearchRequest) ([]models.SearchResult, int64, error)
	FetchFeatured(limit int) ([]models.SearchResult, error)
}

// HistoryStore persists and mines search history records.
type HistoryStore interface {
	InsertSearchHistory(h models.SearchHistory) error
	RecentSearchesByUser(userID string, limit int) ([]models.SearchHistory, error)
	PopularSearchTerms(limit int) ([]string, error)
}

// Engine fans out to the listings endpoint, scores and reorders results, and
// records the query for later suggestion and recommendation mining.
type Engine struct {
	client    ListingsClient
	store     HistoryStore
	publisher eventbus.Publisher
	logger    *logrus.Logger
}

func NewEngine(client ListingsClient, store HistoryStore, publisher eventbus.Publisher, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Engine{client: client, store: store, publisher: publisher, logger: logger}
}

// Search executes one ranked search. Only the upstream fetch can fail the
// call; recording history is a side effect that degrades to a log line.
func (e *Engine) Search(req models.SearchRequest, userID, ipAddress, userAgent string) (*models.SearchPage, error) {
	if req.Size <= 0 {
		req.Size = defaultPageSize
	}
	if req.Page < 0 {
		req.Page = 0
	}

	results, total, err := e.client.FetchListings(req)
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].RelevanceScore = scoreResult(&results[i], req.Query)
		applyDistance(&results[i], req)
	}

	// Stable sort: equal scores order by listing creation time descending,
	// equal creation times retain upstream order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	e.saveHistory(req, userID, len(results), ipAddress, userAgent)

	// The upstream may hand back more rows than one page; clamp after ranking
	// so the best-scored results fill the page.
	if len(results) > req.Size {
		results = results[:req.Size]
	}

	return &models.SearchPage{
		Results:       results,
		TotalElements: total,
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

// scoreResult computes the fixed additive relevance heuristic.
func scoreResult(r *models.SearchResult, query string) float64 {
	score := 10.0

	if r.IsFeatured {
		score += 20.0
	}
	if r.IsVerified {
		score += 15.0
	}
	score += min(float64(r.ViewsCount)*0.1, 10.0)
	score += min(float64(r.FavoritesCount)*0.5, 15.0)

	if query != "" {
		q := strings.ToLower(query)
		if strings.Contains(strings.ToLower(r.Title), q) {
			score += 25.0
		}
		if strings.Contains(strings.ToLower(r.Description), q) {
			score += 15.0
		}
		if strings.Contains(strings.ToLower(r.Location), q) {
			score += 20.0
		}
	}

	return score
}

func applyDistance(r *models.SearchResult, req models.SearchRequest) {
	if req.Latitude == nil || req.Longitude == nil || r.Latitude == nil || r.Longitude == nil {
		return
	}
	from := orb.Point{*req.Longitude, *req.Latitude}
	to := orb.Point{*r.Longitude, *r.Latitude}
	km := geo.Distance(from, to) / 1000.0
	r.DistanceKm = &km
}

func (e *Engine) saveHistory(req models.SearchRequest, userID string, resultsCount int, ipAddress, userAgent string) {
	filters, err := json.Marshal(req)
	if err != nil {
		e.logger.WithError(err).Error("Failed to serialize search filters")
		filters = nil
	}

	h := models.SearchHistory{
		ID:           uuid.New().String(),
		UserID:       userID,
		SearchQuery:  req.Query,
		SearchFilter: string(filters),
		ResultsCount: resultsCount,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.InsertSearchHistory(h); err != nil {
		e.logger.WithError(err).Warn("Failed to save search history")
	}

	searched := events.NewPropertySearched(userID)
	searched.Query = req.Query
	searched.SearchCity = req.City
	searched.PropertyType = req.PropertyType
	searched.MinPrice = req.MinPrice
	searched.MaxPrice = req.MaxPrice
	searched.ResultsCount = resultsCount
	if err := e.publisher.Publish(eventbus.TopicSearchEvents, searched); err != nil {
		e.logger.WithError(err).Warn("Failed to publish search event")
	}
}

// GetRecommendations infers a preferred city from the user's recent searches
// and runs a synthetic search for it. Users without history get featured
// listings instead.
func (e *Engine) GetRecommendations(userID string, limit int) ([]models.SearchResult, error) {
	recent, err := e.store.RecentSearchesByUser(userID, 10)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load search history")
	}
	if len(recent) == 0 {
		return e.GetFeatured(limit)
	}

	req := e.inferPreferences(recent)
	page, err := e.Search(req, userID, "", "")
	if err != nil {
		return nil, err
	}

	results := page.Results
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// inferPreferences picks the highest-frequency city from past filter sets and
// builds a recency-sorted synthetic request around it.
func (e *Engine) inferPreferences(searches []models.SearchHistory) models.SearchRequest {
	cityCounts := make(map[string]int)
	for _, h := range searches {
		if h.SearchFilter == "" {
			continue
		}
		var past models.SearchRequest
		if err := json.Unmarshal([]byte(h.SearchFilter), &past); err != nil {
			continue
		}
		if past.City != "" {
			cityCounts[past.City]++
		}
	}

	req := models.SearchRequest{
		Size:   defaultPageSize,
		SortBy: "createdAt",
	}
	best := 0
	for city, count := range cityCounts {
		if count > best || (count == best && req.City == "") {
			req.City = city
			best = count
		}
	}
	return req
}

// GetSuggestions returns popular historical query strings, optionally
// filtered to those containing the partial query.
func (e *Engine) GetSuggestions(query string, limit int) ([]string, error) {
	terms, err := e.store.PopularSearchTerms(limit)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return terms, nil
	}

	q := strings.ToLower(query)
	filtered := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.Contains(strings.ToLower(term), q) {
			filtered = append(filtered, term)
		}
	}
	return filtered, nil
}

// GetFeatured returns the upstream's featured listings unranked.
func (e *Engine) GetFeatured(limit int) ([]models.SearchResult, error) {
	return e.client.FetchFeatured(limit)
}
