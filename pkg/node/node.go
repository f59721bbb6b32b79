package node

// Kind classifies a node for display and default interaction wiring.
type Kind string

const (
	KindCategory Kind = "category"
	KindAction   Kind = "action"
	KindFile     Kind = "file"
	KindFolder   Kind = "folder"
	KindApp      Kind = "app"
	KindSystem   Kind = "system"
)

// Metadata keys with meaning to the engine.
const (
	// MetaContentID identifies the content a node's children were built from.
	MetaContentID = "content_id"

	// MetaPath is the filesystem path of file and folder nodes. It doubles as
	// the content identity when MetaContentID is absent.
	MetaPath = "path"
)

// Anchor selects where a partial child ring is placed relative to the wedge
// of the parent item that opened it.
type Anchor string

const (
	// AnchorDefault defers to the layout configuration.
	AnchorDefault Anchor = ""

	// AnchorCenter centers the child arc on the parent's midpoint.
	AnchorCenter Anchor = "center"

	// AnchorCounterClockwiseEdge starts the child arc at the parent's
	// counter-clockwise edge and lays items out clockwise.
	AnchorCounterClockwiseEdge Anchor = "ccw-edge"

	// AnchorClockwiseEdge starts the child arc at the parent's clockwise edge
	// and lays items out counter-clockwise.
	AnchorClockwiseEdge Anchor = "cw-edge"
)

// Hints carries per-node layout preferences. Zero values mean "use the
// engine default".
type Hints struct {
	// PreferFullCircle forces the child ring to span all 360 degrees.
	PreferFullCircle bool `json:"prefer_full_circle,omitempty"`

	// ChildItemAngle fixes the angle, in degrees, of every item in the child ring.
	ChildItemAngle float64 `json:"child_item_angle,omitempty"`

	// AngleOverride fixes this node's own angle when it sits in the root ring.
	AngleOverride float64 `json:"angle_override,omitempty"`

	// Anchor positions a partial child ring against this node's wedge.
	Anchor Anchor `json:"anchor,omitempty"`

	ChildRingThickness float64 `json:"child_ring_thickness,omitempty"`
	ChildIconSize      float64 `json:"child_icon_size,omitempty"`

	// PartialSliceThreshold switches the child ring to a full circle once it
	// holds at least this many items.
	PartialSliceThreshold int `json:"partial_slice_threshold,omitempty"`
}

// Node is one menu item. Nodes are immutable value snapshots: a provider
// builds a fresh tree on every call, children are owned by their parent and
// there are no back references.
type Node struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Icon       string            `json:"icon,omitempty"`
	Kind       Kind              `json:"kind"`
	Children   []Node            `json:"children,omitempty"`
	Bindings   Bindings          `json:"bindings"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	ProviderID string            `json:"provider_id,omitempty"`
	Hints      Hints             `json:"hints"`

	// NeedsDynamicLoading marks nodes whose children come from the owning
	// provider's LoadChildren rather than the Children field.
	NeedsDynamicLoading bool `json:"needs_dynamic_loading,omitempty"`

	// ChildLimit caps how many children are displayed. Zero means unlimited.
	ChildLimit int `json:"child_limit,omitempty"`

	// Hidden nodes are filtered out of their parent's displayed children.
	Hidden bool `json:"hidden,omitempty"`
}

// IsBranch reports whether the node can open a child ring.
func (n Node) IsBranch() bool {
	return n.Kind == KindCategory || n.Kind == KindFolder || len(n.Children) > 0 || n.NeedsDynamicLoading
}

// DisplayedChildren returns the children shown in a child ring: hidden
// children are dropped and the rest truncated to ChildLimit. The returned
// slice is a copy; the node itself is not modified.
func (n Node) DisplayedChildren() []Node {
	if len(n.Children) == 0 {
		return nil
	}
	out := make([]Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Hidden {
			continue
		}
		out = append(out, c)
		if n.ChildLimit > 0 && len(out) == n.ChildLimit {
			break
		}
	}
	return out
}

// ActsAsLeaf reports whether the node behaves as a leaf for the current
// pass. A branch whose real children are all filtered away degrades to a
// leaf; dynamic nodes never do, since their children are not known yet.
func (n Node) ActsAsLeaf() bool {
	if !n.IsBranch() {
		return true
	}
	if n.NeedsDynamicLoading {
		return false
	}
	return len(n.Children) > 0 && len(n.DisplayedChildren()) == 0
}

// ContentID returns the identity of the content this node's children are
// built from, or "" when the node carries none.
func (n Node) ContentID() string {
	if id := n.Metadata[MetaContentID]; id != "" {
		return id
	}
	return n.Metadata[MetaPath]
}

// Resolve returns the behavior bound to channel under the pressed modifiers.
// Expanding behaviors on a node that acts as a leaf degrade to executing the
// same action, or to nothing when no action is bound.
func (n Node) Resolve(ch Channel, mods Modifier) Behavior {
	b := n.Bindings.For(ch).Resolve(mods)
	if (b.Kind == Expand || b.Kind == NavigateInto) && n.ActsAsLeaf() {
		if b.Action == "" {
			return Behavior{}
		}
		return Behavior{Kind: Execute, Action: b.Action}
	}
	return b
}

// Find walks nodes depth-first and returns the first node matching fn.
func Find(nodes []Node, fn func(Node) bool) (Node, bool) {
	for _, n := range nodes {
		if fn(n) {
			return n, true
		}
		if found, ok := Find(n.Children, fn); ok {
			return found, true
		}
	}
	return Node{}, false
}

// Cap truncates nodes to at most limit entries. A non-positive limit
// returns nodes unchanged.
func Cap(nodes []Node, limit int) []Node {
	if limit <= 0 || len(nodes) <= limit {
		return nodes
	}
	return nodes[:limit]
}
