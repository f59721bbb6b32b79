// Package events carries provider update events from content sources to
// running menus.
//
// Update events are broadcast, not targeted: every subscriber receives
// every event and decides for itself whether it is relevant. [MemoryBus]
// connects publishers and menus in one process; [RedisBus] does the same
// across processes over Redis pub/sub.
package events

import (
	"context"
	"errors"

	"github.com/matzehuels/piemenu/pkg/provider"
)

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("events: bus closed")

// Bus broadcasts update events to every subscriber.
type Bus interface {
	// Publish broadcasts ev. Slow subscribers may miss events.
	Publish(ctx context.Context, ev provider.UpdateEvent) error

	// Subscribe returns a channel receiving every event published after the
	// call returns. The channel is closed when ctx is done or the bus closes.
	Subscribe(ctx context.Context) (<-chan provider.UpdateEvent, error)

	Close() error
}

// SubscriberBuffer is the per-subscriber channel capacity.
const SubscriberBuffer = 64
