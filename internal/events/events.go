package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stable event type tags. These are the wire contract with consumers that do
// not share our type definitions; do not rename.
const (
	TypePropertyCreated       = "PropertyCreated"
	TypePropertyViewed        = "PropertyViewed"
	TypePropertyStatusChanged = "PropertyStatusChanged"
	TypeUserActivity          = "UserActivity"
	TypePropertySearched      = "PropertySearched"
	TypeNotificationRequest   = "NotificationRequest"
)

// Event is the capability set every domain event carries. EventID and
// OccurredAt are assigned once at construction and never reassigned, so
// ordering can be reconstructed from payloads even if transport reorders.
type Event interface {
	EventID() string
	AggregateID() string
	UserID() string
	OccurredAt() time.Time
	EventType() string
	Version() *int64
}

// Base holds the envelope fields shared by all domain events.
type Base struct {
	ID        string    `json:"event_id"`
	Aggregate string    `json:"aggregate_id"`
	Actor     string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Seq       *int64    `json:"version,omitempty"`
}

func newBase(aggregateID, actorID string) Base {
	return Base{
		ID:        uuid.New().String(),
		Aggregate: aggregateID,
		Actor:     actorID,
		Timestamp: time.Now().UTC(),
	}
}

func (b Base) EventID() string       { return b.ID }
func (b Base) AggregateID() string   { return b.Aggregate }
func (b Base) UserID() string        { return b.Actor }
func (b Base) OccurredAt() time.Time { return b.Timestamp }
func (b Base) Version() *int64       { return b.Seq }

// PropertyCreated is published when a listing is persisted for the first time.
type PropertyCreated struct {
	Base
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	City         string   `json:"city"`
	Price        float64  `json:"price"`
	PropertyType string   `json:"property_type"`
	ListingType  string   `json:"listing_type"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	AreaSqft     *float64 `json:"area_sqft,omitempty"`
}

func (PropertyCreated) EventType() string { return TypePropertyCreated }

// NewPropertyCreated builds the creation fact for a freshly persisted listing.
func NewPropertyCreated(propertyID, ownerID string) *PropertyCreated {
	return &PropertyCreated{Base: newBase(propertyID, ownerID)}
}

// PropertyViewed records that a viewer looked at a listing. The actor on the
// envelope is the listing owner; the viewer rides in the payload.
type PropertyViewed struct {
	Base
	ViewerUserID string `json:"viewer_user_id"`
}

func (PropertyViewed) EventType() string { return TypePropertyViewed }

func NewPropertyViewed(propertyID, ownerID, viewerID string) *PropertyViewed {
	return &PropertyViewed{Base: newBase(propertyID, ownerID), ViewerUserID: viewerID}
}

// PropertyStatusChanged is published when an owner transitions a listing's
// lifecycle state.
type PropertyStatusChanged struct {
	Base
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

func (PropertyStatusChanged) EventType() string { return TypePropertyStatusChanged }

func NewPropertyStatusChanged(propertyID, ownerID, oldStatus, newStatus string) *PropertyStatusChanged {
	return &PropertyStatusChanged{
		Base:      newBase(propertyID, ownerID),
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// UserActivity is the generic audit/history fact. The acting user is the
// aggregate. ActivityData is opaque to consumers.
type UserActivity struct {
	Base
	ActivityType string          `json:"activity_type"`
	Description  string          `json:"description"`
	ActivityData json.RawMessage `json:"activity_data,omitempty"`
}

func (UserActivity) EventType() string { return TypeUserActivity }

func NewUserActivity(userID, activityType, description string, data json.RawMessage) *UserActivity {
	return &UserActivity{
		Base:         newBase(userID, userID),
		ActivityType: activityType,
		Description:  description,
		ActivityData: data,
	}
}

// PropertySearched records one executed search. The aggregate is a fresh
// search session id.
type PropertySearched struct {
	Base
	Query        string   `json:"query"`
	SearchCity   string   `json:"search_city,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	ResultsCount int      `json:"results_count"`
}

func (PropertySearched) EventType() string { return TypePropertySearched }

func NewPropertySearched(userID string) *PropertySearched {
	return &PropertySearched{Base: newBase(uuid.New().String(), userID)}
}

// NotificationRequest asks the notification service to deliver a message.
// Delivery mechanics are the consumer's problem.
type NotificationRequest struct {
	Base
	Channel      string            `json:"channel"` // EMAIL, SMS or PUSH
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject"`
	Message      string            `json:"message"`
	TemplateData map[string]string `json:"template_data,omitempty"`
}

func (NotificationRequest) EventType() string { return TypeNotificationRequest }

func NewNotificationRequest(userID, channel, recipient, subject, message string) *NotificationRequest {
	return &NotificationRequest{
		Base:      newBase(userID, userID),
		Channel:   channel,
		Recipient: recipient,
		Subject:   subject,
		Message:   message,
	}
}
