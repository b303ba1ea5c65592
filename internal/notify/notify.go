package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client pushes denormalized counters to the user service. The caller treats
// failures as best-effort; this client just reports them honestly.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type propertyCountUpdate struct {
	PropertyCount int64 `json:"property_count"`
}

// UpdatePropertyCount POSTs the owner's current listing count to the user
// service. The call is bounded by the client timeout.
func (c *Client) UpdatePropertyCount(ownerID string, count int64) error {
	payload, err := json.Marshal(propertyCountUpdate{PropertyCount: count})
	if err != nil {
		return fmt.Errorf("failed to marshal property count payload: %v", err)
	}

	url := fmt.Sprintf("%s/api/users/%s/property-count", c.baseURL, ownerID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to reach user service: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	c.logger.WithFields(logrus.Fields{
		"owner_id":       ownerID,
		"property_count": count,
	}).Debug("Updated user property count")
	return nil
}
