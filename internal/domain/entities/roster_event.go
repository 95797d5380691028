package entities

import (
	"time"

	"github.com/google/uuid"
)

// RosterEventType represents the type of roster update event
type RosterEventType string

const (
	RosterEventTypeRegistration       RosterEventType = "registration"
	RosterEventTypeProfileUpdate      RosterEventType = "profile_update"
	RosterEventTypeLocationUpdate     RosterEventType = "location_update"
	RosterEventTypeOnlineStatusUpdate RosterEventType = "online_status_update"
	RosterEventTypeScoreUpdate        RosterEventType = "score_update"
)

// RosterEvent represents a real-time update to a roster entry. Events are
// published after a successful write so cached rosters can be invalidated
// without polling.
type RosterEvent struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	EventType     RosterEventType        `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields"`
}

// NewRosterEvent creates a new roster event
func NewRosterEvent(userID string, eventType RosterEventType, changedFields map[string]interface{}) *RosterEvent {
	return &RosterEvent{
		ID:            uuid.New().String(),
		UserID:        userID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}
