package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that menu profiles
// sharing one Redis instance do not read each other's entries.
//
//	work := NewScopedKeyer(nil, "profile:work:")
//	home := NewScopedKeyer(nil, "profile:home:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ChildrenKey returns the prefixed children key.
func (k *ScopedKeyer) ChildrenKey(providerID, generation, contentID string) string {
	return k.prefix + k.inner.ChildrenKey(providerID, generation, contentID)
}

// GenerationKey returns the prefixed generation key.
func (k *ScopedKeyer) GenerationKey(providerID string) string {
	return k.prefix + k.inner.GenerationKey(providerID)
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(opts)
}
