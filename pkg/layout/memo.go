package layout

import (
	"time"

	"github.com/matzehuels/piemenu/pkg/cache"
	"github.com/matzehuels/piemenu/pkg/observability"
)

// Memo caches the ring configurations of one menu. The cached array is
// reused until the structural shape of the stack changes: per-ring node
// counts, the active level, selected indices or collapsed flags. Callers
// that replace ring contents without changing that shape (a live update)
// call Invalidate.
//
// Memo is not safe for concurrent use; it belongs to the menu owner.
type Memo struct {
	engine  *Engine
	keyer   cache.Keyer
	key     string
	configs []RingConfig
}

// NewMemo creates a memo over e.
func NewMemo(e *Engine) *Memo {
	return &Memo{engine: e, keyer: cache.NewDefaultKeyer()}
}

// Get returns the configurations for rings, recomputing them only when
// the shape key differs from the last call. The result must be treated as
// read-only.
func (m *Memo) Get(rings []RingInput, active int) []RingConfig {
	start := time.Now()
	key := m.keyer.LayoutKey(shape(rings, active))
	if m.configs != nil && key == m.key {
		observability.Menu().OnLayout(len(rings), true, time.Since(start))
		return m.configs
	}
	m.configs = m.engine.Compute(rings)
	m.key = key
	observability.Menu().OnLayout(len(rings), false, time.Since(start))
	return m.configs
}

// Invalidate drops the cached configurations.
func (m *Memo) Invalidate() {
	m.configs = nil
	m.key = ""
}

func shape(rings []RingInput, active int) cache.LayoutKeyOpts {
	opts := cache.LayoutKeyOpts{
		Counts:      make([]int, len(rings)),
		ActiveLevel: active,
		Selected:    make([]int, len(rings)),
		Collapsed:   make([]bool, len(rings)),
	}
	for i, r := range rings {
		opts.Counts[i] = len(r.Nodes)
		opts.Selected[i] = r.Selected
		opts.Collapsed[i] = r.Collapsed
	}
	return opts
}
