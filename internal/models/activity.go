package models

import "time"

// Activity type tags published by the command side and stored in the read model.
// The strings are the wire contract with downstream consumers; do not rename.
const (
	ActivityPropertyCreated  = "PROPERTY_CREATED"
	ActivityPropertyViewed   = "PROPERTY_VIEWED"
	ActivityPropertySearched = "PROPERTY_SEARCHED"
	ActivityStatusChanged    = "PROPERTY_STATUS_CHANGED"
)

// ActivityRecord is one observed user action in the read model.
// Records are written once by the projector and never mutated.
type ActivityRecord struct {
	ActivityID        string    `json:"activity_id"`
	UserID            string    `json:"user_id"`
	Timestamp         time.Time `json:"timestamp"`
	ActivityType      string    `json:"activity_type"`
	Description       string    `json:"description"`
	ActivityData      string    `json:"activity_data,omitempty"`
	RelatedEntityID   string    `json:"related_entity_id,omitempty"`
	RelatedEntityType string    `json:"related_entity_type,omitempty"`
	SessionID         string    `json:"session_id,omitempty"`
	IPAddress         string    `json:"ip_address,omitempty"`
	UserAgent         string    `json:"user_agent,omitempty"`
}

// ActivitySummary is derived on demand, never persisted.
type ActivitySummary struct {
	UserID                string           `json:"user_id"`
	ActivityCounts        map[string]int64 `json:"activity_counts"`
	TotalActivitiesWindow int64            `json:"total_activities_last_30_days"`
	MostActiveDay         string           `json:"most_active_day"`
	LastActivityTimestamp *time.Time       `json:"last_activity_timestamp"`
}

// HistoryResponse is the assembled page returned by the history query handler.
type HistoryResponse struct {
	UserID          string           `json:"user_id"`
	Activities      []ActivityRecord `json:"activities"`
	TotalActivities int64            `json:"total_activities"`
	CurrentPage     int              `json:"current_page"`
	TotalPages      int              `json:"total_pages"`
	Summary         *ActivitySummary `json:"summary"`
}
