package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/wheel/events"
)

// WheelEvent represents the base structure for all wheel events
type WheelEvent struct {
	ID        string          `json:"id"`        // Event UUID
	WheelID   string          `json:"wheel_id"`  // Wheel UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// EventType represents the type of wheel event
type EventType string

const (
	EventTypeSnapshot            EventType = "Snapshot"
	EventTypeRosterUpdated       EventType = "RosterUpdated"
	EventTypeSpinEnabled         EventType = "SpinEnabled"
	EventTypeAnnouncementCleared EventType = "AnnouncementCleared"
	EventTypeSpinStarted         EventType = "SpinStarted"
	EventTypeAudioCue            EventType = "AudioCue"
	EventTypeWinnerAnnounced     EventType = "WinnerAnnounced"
	EventTypeCelebration         EventType = "Celebration"
)

// NewWheelEvent wraps a payload in an event envelope.
func NewWheelEvent(wheelID uuid.UUID, eventType EventType, payload any) (*WheelEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &WheelEvent{
		ID:        uuid.New().String(),
		WheelID:   wheelID.String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *WheelEvent) (interface{}, error) {
	var target interface{}
	switch event.Type {
	case EventTypeRosterUpdated:
		target = &events.RosterUpdatedPayload{}
	case EventTypeSpinEnabled:
		target = &events.SpinEnabledPayload{}
	case EventTypeSpinStarted:
		target = &events.SpinStartedPayload{}
	case EventTypeAudioCue:
		target = &events.AudioCuePayload{}
	case EventTypeWinnerAnnounced:
		target = &events.WinnerAnnouncedPayload{}
	case EventTypeCelebration:
		target = &events.CelebrationPayload{}
	case EventTypeSnapshot:
		target = &map[string]interface{}{}
	case EventTypeAnnouncementCleared:
		return nil, nil
	default:
		return nil, nil // Unknown event type
	}
	if err := json.Unmarshal(event.Data, target); err != nil {
		return nil, err
	}
	return target, nil
}
