package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropertyCreated_AssignsIdentityAtConstruction(t *testing.T) {
	before := time.Now().UTC()
	e := NewPropertyCreated("prop-1", "user-1")
	after := time.Now().UTC()

	assert.NotEmpty(t, e.EventID())
	assert.Equal(t, "prop-1", e.AggregateID())
	assert.Equal(t, "user-1", e.UserID())
	assert.Equal(t, TypePropertyCreated, e.EventType())
	assert.Nil(t, e.Version())
	assert.False(t, e.OccurredAt().Before(before))
	assert.False(t, e.OccurredAt().After(after))

	other := NewPropertyCreated("prop-1", "user-1")
	assert.NotEqual(t, e.EventID(), other.EventID())
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	area := 1250.5
	bedrooms := 3
	e := NewPropertyCreated("prop-42", "user-7")
	e.Title = "Lake view apartment"
	e.Description = "3BHK with a lake view"
	e.Location = "Gachibowli, Hyderabad"
	e.City = "Hyderabad"
	e.Price = 500000
	e.PropertyType = "APARTMENT"
	e.ListingType = "SALE"
	e.Bedrooms = &bedrooms
	e.AreaSqft = &area

	data, err := Encode(e)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	got, ok := decoded.(*PropertyCreated)
	require.True(t, ok)
	assert.Equal(t, e.EventID(), got.EventID())
	assert.Equal(t, e.AggregateID(), got.AggregateID())
	assert.Equal(t, e.UserID(), got.UserID())
	assert.True(t, e.OccurredAt().Equal(got.OccurredAt()))
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, e.Description, got.Description)
	assert.Equal(t, e.Price, got.Price)
	assert.Equal(t, e.Bedrooms, got.Bedrooms)
	assert.Equal(t, e.AreaSqft, got.AreaSqft)
}

func TestEncodeDecode_AllEventTypes(t *testing.T) {
	all := []Event{
		NewPropertyCreated("p1", "u1"),
		NewPropertyViewed("p1", "u1", "u2"),
		NewPropertyStatusChanged("p1", "u1", "ACTIVE", "SOLD"),
		NewUserActivity("u1", "PROPERTY_VIEWED", "User viewed property", json.RawMessage(`{"id":"p1"}`)),
		NewPropertySearched("u1"),
		NewNotificationRequest("u1", "EMAIL", "u1@example.com", "Welcome", "Hello"),
	}

	for _, e := range all {
		data, err := Encode(e)
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, e.EventType(), decoded.EventType())
		assert.Equal(t, e.EventID(), decoded.EventID())
		assert.Equal(t, e.AggregateID(), decoded.AggregateID())
	}
}

func TestDecode_UnknownTypeRoutesAsRaw(t *testing.T) {
	data := []byte(`{"event_type":"SomethingNew","payload":{"event_id":"e-9","aggregate_id":"a-9","user_id":"u-9","timestamp":"2026-01-02T03:04:05Z","extra":true}}`)

	decoded, err := Decode(data)
	require.NoError(t, err)

	raw, ok := decoded.(*Raw)
	require.True(t, ok)
	assert.Equal(t, "SomethingNew", raw.EventType())
	assert.Equal(t, "e-9", raw.EventID())
	assert.Equal(t, "a-9", raw.AggregateID())
	assert.NotEmpty(t, raw.Payload)
}

func TestUserActivity_ActorIsAggregate(t *testing.T) {
	e := NewUserActivity("user-3", "PROPERTY_CREATED", "User created property: Villa", nil)
	assert.Equal(t, "user-3", e.AggregateID())
	assert.Equal(t, "user-3", e.UserID())
}
