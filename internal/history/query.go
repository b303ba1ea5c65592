package history

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/models"
)

// ActivityStore is the query side of the activity read model. All listings
// come back newest first.
type ActivityStore interface {
	ActivitiesByUser(userID string, page, size int) ([]models.ActivityRecord, error)
	CountActivitiesByUser(userID string) (int64, error)
	ActivitiesByUserSince(userID string, since time.Time, limit int) ([]models.ActivityRecord, error)
	ActivitiesByType(userID, activityType string, limit int) ([]models.ActivityRecord, error)
	ActivitiesByTypes(userID string, activityTypes []string, limit int) ([]models.ActivityRecord, error)
	CountActivitiesByTypeSince(userID string, since time.Time) (map[string]int64, error)
	MostActiveDaySince(userID string, since time.Time) (string, error)
	LastActivityTime(userID string) (*time.Time, error)
}

// ResponseCache memoizes assembled history responses. It is advisory:
// nothing here distinguishes a cache failure from a miss.
type ResponseCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

// Activity types that count as property-related for GetPropertyActivities.
var propertyActivityTypes = []string{
	models.ActivityPropertyCreated,
	models.ActivityPropertyViewed,
	models.ActivityPropertySearched,
}

// QueryHandler serves aggregated views over accumulated activity records.
type QueryHandler struct {
	store  ActivityStore
	cache  ResponseCache
	logger *logrus.Logger
}

func NewQueryHandler(store ActivityStore, cache ResponseCache, logger *logrus.Logger) *QueryHandler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &QueryHandler{store: store, cache: cache, logger: logger}
}

// GetHistory returns one page of a user's history plus summary statistics.
// The assembled response is cached per (user, page, size); the summary is
// always recomputed against the live store on a miss, never cached alone.
func (q *QueryHandler) GetHistory(userID string, page, size int) (*models.HistoryResponse, error) {
	cacheKey := fmt.Sprintf("user_history:%s:%d:%d", userID, page, size)
	if cached, ok := q.cache.Get(cacheKey); ok {
		if response, ok := cached.(*models.HistoryResponse); ok {
			q.logger.WithField("user_id", userID).Debug("Serving user history from cache")
			return response, nil
		}
	}

	activities, err := q.store.ActivitiesByUser(userID, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to query user history: %w", err)
	}
	total, err := q.store.CountActivitiesByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user history: %w", err)
	}

	summary, err := q.buildSummary(userID)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}

	response := &models.HistoryResponse{
		UserID:          userID,
		Activities:      activities,
		TotalActivities: total,
		CurrentPage:     page,
		TotalPages:      totalPages,
		Summary:         summary,
	}
	q.cache.Set(cacheKey, response)

	q.logger.WithFields(logrus.Fields{
		"user_id":          userID,
		"total_activities": total,
	}).Info("Retrieved user history")
	return response, nil
}

// GetRecent returns activities from the trailing 24 hours, uncached.
func (q *QueryHandler) GetRecent(userID string, limit int) ([]models.ActivityRecord, error) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	return q.store.ActivitiesByUserSince(userID, since, limit)
}

// GetByType returns a user's activities of a single type.
func (q *QueryHandler) GetByType(userID, activityType string, limit int) ([]models.ActivityRecord, error) {
	return q.store.ActivitiesByType(userID, activityType, limit)
}

// GetPropertyActivities returns the property-related subset of a user's history.
func (q *QueryHandler) GetPropertyActivities(userID string, limit int) ([]models.ActivityRecord, error) {
	return q.store.ActivitiesByTypes(userID, propertyActivityTypes, limit)
}

// GetSearchHistory returns the user's recorded searches.
func (q *QueryHandler) GetSearchHistory(userID string, limit int) ([]models.ActivityRecord, error) {
	return q.GetByType(userID, models.ActivityPropertySearched, limit)
}

// buildSummary recomputes the derived statistics: per-type counts over a
// trailing 30-day window, the busiest calendar day in that window, and the
// newest activity timestamp over the whole history.
func (q *QueryHandler) buildSummary(userID string) (*models.ActivitySummary, error) {
	windowStart := time.Now().UTC().Add(-30 * 24 * time.Hour)

	counts, err := q.store.CountActivitiesByTypeSince(userID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities by type: %w", err)
	}
	var total int64
	for _, c := range counts {
		total += c
	}

	mostActiveDay, err := q.store.MostActiveDaySince(userID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to find most active day: %w", err)
	}

	lastActivity, err := q.store.LastActivityTime(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find last activity time: %w", err)
	}

	return &models.ActivitySummary{
		UserID:                userID,
		ActivityCounts:        counts,
		TotalActivitiesWindow: total,
		MostActiveDay:         mostActiveDay,
		LastActivityTimestamp: lastActivity,
	}, nil
}
