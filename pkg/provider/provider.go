package provider

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/piemenu/pkg/node"
)

// Provider supplies menu content for one category.
type Provider interface {
	// ID is stable and unique among registered providers.
	ID() string
	Name() string
	Icon() string

	// ProvideFunctions returns a snapshot of the provider's root nodes.
	ProvideFunctions(ctx context.Context) []node.Node

	// LoadChildren produces the children of a dynamic node. It may be slow
	// and is never called on the menu's owner goroutine.
	LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error)

	// Refresh resynchronizes backing data before the next ProvideFunctions.
	Refresh(ctx context.Context) error
}

// UpdateEvent announces that a provider's content changed. An empty
// ContentID means any ring of the provider may match.
type UpdateEvent struct {
	ID         string            `json:"id"`
	ProviderID string            `json:"provider_id"`
	ContentID  string            `json:"content_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Time       time.Time         `json:"time"`
}

// NewUpdateEvent returns an event with a fresh ID and timestamp.
func NewUpdateEvent(providerID, contentID string) UpdateEvent {
	return UpdateEvent{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		ContentID:  contentID,
		Time:       time.Now().UTC(),
	}
}
