package providers

import (
	"context"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to roster
// events
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.RosterEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.RosterEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelRosterUpdates is the channel carrying all roster updates
	EventChannelRosterUpdates = "roster:updates"

	// EventChannelUserPrefix is the prefix for user-specific channels
	EventChannelUserPrefix = "roster:user:"
)

// GetUserChannel returns the channel name for a specific user
func GetUserChannel(userID string) string {
	return EventChannelUserPrefix + userID
}
