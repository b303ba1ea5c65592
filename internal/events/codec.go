package events

import (
	"encoding/json"
	"fmt"
)

// wireEvent is the serialized form pushed onto the event channel. The type
// tag lives outside the payload so consumers can route without decoding it.
type wireEvent struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// Raw carries an event whose type tag is unknown to this consumer. The
// envelope fields are still decoded so routing and ordering keep working.
type Raw struct {
	Base
	Type    string
	Payload json.RawMessage
}

func (r Raw) EventType() string { return r.Type }

// Encode serializes an event for the event channel, preserving its type tag.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", e.EventType(), err)
	}
	return json.Marshal(wireEvent{EventType: e.EventType(), Payload: payload})
}

// Decode deserializes an event from the channel. Unknown type tags come back
// as *Raw rather than an error so independent consumers can still route.
func Decode(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	var e Event
	switch w.EventType {
	case TypePropertyCreated:
		e = &PropertyCreated{}
	case TypePropertyViewed:
		e = &PropertyViewed{}
	case TypePropertyStatusChanged:
		e = &PropertyStatusChanged{}
	case TypeUserActivity:
		e = &UserActivity{}
	case TypePropertySearched:
		e = &PropertySearched{}
	case TypeNotificationRequest:
		e = &NotificationRequest{}
	default:
		raw := &Raw{Type: w.EventType, Payload: w.Payload}
		if err := json.Unmarshal(w.Payload, &raw.Base); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s envelope fields: %w", w.EventType, err)
		}
		return raw, nil
	}

	if err := json.Unmarshal(w.Payload, e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", w.EventType, err)
	}
	return e, nil
}
