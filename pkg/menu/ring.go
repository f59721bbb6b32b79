package menu

import "github.com/matzehuels/piemenu/pkg/node"

// None marks an unset Hovered or Selected index.
const None = -1

// RingState is one displayed ring.
type RingState struct {
	// Nodes are the ring's items, already capped to the layout limit.
	Nodes    []node.Node `json:"nodes"`
	Hovered  int         `json:"hovered"`
	Selected int         `json:"selected"`

	// Collapsed rings are shrunk to a breadcrumb after navigating into a
	// folder. Their state is kept, so returning to them never reloads.
	Collapsed bool `json:"collapsed"`

	// OpenedByClick rings stay open when the pointer moves back into a
	// parent ring; rings opened by hovering across a boundary do not.
	OpenedByClick bool `json:"opened_by_click"`

	// ProviderID and ContentID identify where the ring's nodes came from.
	// Ring 0 mixes providers and leaves both empty.
	ProviderID string `json:"provider_id,omitempty"`
	ContentID  string `json:"content_id,omitempty"`
}

func newRing(nodes []node.Node, providerID, contentID string, openedByClick bool) RingState {
	return RingState{
		Nodes:         nodes,
		Hovered:       None,
		Selected:      None,
		OpenedByClick: openedByClick,
		ProviderID:    providerID,
		ContentID:     contentID,
	}
}

// SelectedNode returns the selected node, if any.
func (r RingState) SelectedNode() (node.Node, bool) {
	if r.Selected < 0 || r.Selected >= len(r.Nodes) {
		return node.Node{}, false
	}
	return r.Nodes[r.Selected], true
}

// HoveredNode returns the hovered node, if any.
func (r RingState) HoveredNode() (node.Node, bool) {
	if r.Hovered < 0 || r.Hovered >= len(r.Nodes) {
		return node.Node{}, false
	}
	return r.Nodes[r.Hovered], true
}

// containsProvider reports whether any node of the ring belongs to providerID.
func (r RingState) containsProvider(providerID string) bool {
	for _, n := range r.Nodes {
		if n.ProviderID == providerID {
			return true
		}
	}
	return false
}

// withNode returns a copy of nodes with nodes[i] replaced. The ring's node
// slice may be shared with configurations already handed out.
func withNode(nodes []node.Node, i int, n node.Node) []node.Node {
	out := make([]node.Node, len(nodes))
	copy(out, nodes)
	out[i] = n
	return out
}
