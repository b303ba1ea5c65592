package property

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/eventbus"
	"hyderabadinfra/server/internal/events"
	"hyderabadinfra/server/internal/models"
)

var ErrForbidden = errors.New("only the property owner may perform this operation")

// PropertyStore is the authoritative store the command side writes to.
type PropertyStore interface {
	Create(p *models.Property) error
	FindByID(id string) (*models.Property, error)
	CountByOwner(ownerID string) (int64, error)
	IncrementViewCount(id string, viewedAt time.Time) error
	UpdateStatus(id string, status models.PropertyStatus, updatedAt time.Time) error
}

// Notifier pushes a denormalized listing count to the user service. Calls
// are best-effort: the command handler logs and swallows failures.
type Notifier interface {
	UpdatePropertyCount(ownerID string, count int64) error
}

// CreatePropertyCommand is the validated input for creating a listing.
type CreatePropertyCommand struct {
	OwnerID      string   `json:"owner_id"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Location     string   `json:"location" binding:"required"`
	City         string   `json:"city"`
	Price        float64  `json:"price"`
	PropertyType string   `json:"property_type" binding:"required"`
	ListingType  string   `json:"listing_type" binding:"required"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	AreaSqft     *float64 `json:"area_sqft"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// CommandHandler performs authoritative mutations and publishes the facts.
// Only the persisted-record outcome is surfaced to callers; event publishes
// and the cross-service notify degrade to log lines.
type CommandHandler struct {
	store     PropertyStore
	publisher eventbus.Publisher
	notifier  Notifier
	logger    *logrus.Logger
}

func NewCommandHandler(store PropertyStore, publisher eventbus.Publisher, notifier Notifier, logger *logrus.Logger) *CommandHandler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &CommandHandler{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateProperty persists a new listing and emits the creation facts.
// Retried commands mint a fresh id and create a duplicate listing; there is
// no idempotency key.
func (h *CommandHandler) CreateProperty(cmd CreatePropertyCommand) (*models.Property, error) {
	propertyType, err := models.ParsePropertyType(cmd.PropertyType)
	if err != nil {
		return nil, err
	}
	listingType, err := models.ParseListingType(cmd.ListingType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Property{
		ID:           uuid.New().String(),
		OwnerID:      cmd.OwnerID,
		Title:        cmd.Title,
		Description:  cmd.Description,
		Location:     cmd.Location,
		City:         cmd.City,
		Price:        cmd.Price,
		PropertyType: propertyType,
		ListingType:  listingType,
		Bedrooms:     cmd.Bedrooms,
		Bathrooms:    cmd.Bathrooms,
		AreaSqft:     cmd.AreaSqft,
		Latitude:     cmd.Latitude,
		Longitude:    cmd.Longitude,
		Status:       models.PropertyStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	created := events.NewPropertyCreated(p.ID, p.OwnerID)
	created.Title = p.Title
	created.Description = p.Description
	created.Location = p.Location
	created.City = p.City
	created.Price = p.Price
	created.PropertyType = string(p.PropertyType)
	created.ListingType = string(p.ListingType)
	created.Bedrooms = p.Bedrooms
	created.Bathrooms = p.Bathrooms
	created.AreaSqft = p.AreaSqft
	h.publish(eventbus.TopicPropertyEvents, created)

	h.publishActivity(p.OwnerID, models.ActivityPropertyCreated,
		"User created property: "+p.Title, p)

	h.updateOwnerPropertyCount(p.OwnerID)

	h.publish(eventbus.TopicNotifications,
		events.NewNotificationRequest(p.OwnerID, "EMAIL", p.OwnerID,
			"Property listed", "Your property listing is now live: "+p.Title))

	h.logger.WithFields(logrus.Fields{
		"property_id": p.ID,
		"owner_id":    p.OwnerID,
	}).Info("Property created")

	return p, nil
}

// RecordView increments the view counter and emits viewing facts. View
// tracking is best-effort: nothing here may break the read path that
// triggered it, so every failure is logged and dropped.
func (h *CommandHandler) RecordView(propertyID, viewerID string) {
	p, err := h.store.FindByID(propertyID)
	if err != nil {
		h.logger.WithError(err).WithField("property_id", propertyID).Error("Failed to record property view")
		return
	}

	if err := h.store.IncrementViewCount(propertyID, time.Now().UTC()); err != nil {
		h.logger.WithError(err).WithField("property_id", propertyID).Error("Failed to increment view count")
		return
	}

	h.publish(eventbus.TopicPropertyEvents, events.NewPropertyViewed(propertyID, p.OwnerID, viewerID))
	h.publishActivity(viewerID, models.ActivityPropertyViewed,
		"User viewed property: "+p.Title, p)
}

// UpdateStatus transitions a listing's lifecycle state. Only the recorded
// owner may do this.
func (h *CommandHandler) UpdateStatus(propertyID, newStatus, requesterID string) (*models.Property, error) {
	status, err := models.ParsePropertyStatus(newStatus)
	if err != nil {
		return nil, err
	}

	p, err := h.store.FindByID(propertyID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != requesterID {
		return nil, ErrForbidden
	}

	oldStatus := p.Status
	now := time.Now().UTC()
	if err := h.store.UpdateStatus(propertyID, status, now); err != nil {
		return nil, fmt.Errorf("failed to update property status: %w", err)
	}
	p.Status = status
	p.UpdatedAt = now

	h.publish(eventbus.TopicPropertyEvents,
		events.NewPropertyStatusChanged(propertyID, p.OwnerID, string(oldStatus), string(status)))
	h.publishActivity(requesterID, models.ActivityStatusChanged,
		fmt.Sprintf("User changed property status to %s: %s", status, p.Title), p)

	return p, nil
}

func (h *CommandHandler) publish(topic string, e events.Event) {
	if err := h.publisher.Publish(topic, e); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"topic":      topic,
			"event_type": e.EventType(),
		}).Error("Failed to publish event")
	}
}

func (h *CommandHandler) publishActivity(userID, activityType, description string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal activity payload")
		data = nil
	}
	h.publish(eventbus.TopicUserActivity, events.NewUserActivity(userID, activityType, description, data))
}

// updateOwnerPropertyCount makes the synchronous cross-service call. The
// primary mutation has already committed, so failures never reach the caller.
func (h *CommandHandler) updateOwnerPropertyCount(ownerID string) {
	count, err := h.store.CountByOwner(ownerID)
	if err != nil {
		h.logger.WithError(err).WithField("owner_id", ownerID).Warn("Failed to count owner properties")
		return
	}
	if err := h.notifier.UpdatePropertyCount(ownerID, count); err != nil {
		h.logger.WithError(err).WithField("owner_id", ownerID).Warn("Failed to update user property count")
	}
}
