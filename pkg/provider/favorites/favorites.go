package favorites

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider/folder"
)

// ID is the provider ID.
const ID = "favorites"

// ContentID identifies the favorites category, so adding or removing a
// favorite refreshes exactly the ring showing it.
const ContentID = "favorites"

// Lister lists a directory, as folder.Provider does.
type Lister interface {
	List(ctx context.Context, dir string) ([]node.Node, error)
}

// Provider serves favorites from a Store.
type Provider struct {
	store  Store
	lister Lister

	mu   sync.RWMutex
	favs []Favorite
}

// New returns a provider reading from store. Favorite folders are listed
// through lister; a nil lister uses a folder provider with default options.
func New(store Store, lister Lister) *Provider {
	if lister == nil {
		lister, _ = folder.New(folder.Options{})
	}
	return &Provider{store: store, lister: lister}
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return "Favorites" }
func (p *Provider) Icon() string { return "star" }

// Favorites returns the current list in ring order.
func (p *Provider) Favorites() []Favorite {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Favorite(nil), p.favs...)
}

// ProvideFunctions returns a "Favorites" category.
func (p *Provider) ProvideFunctions(context.Context) []node.Node {
	favs := p.Favorites()
	children := make([]node.Node, 0, len(favs))
	for _, f := range favs {
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		if f.Dir {
			children = append(children, node.Folder(ID, f.Path, name, folder.ActionOpen))
		} else {
			children = append(children, node.File(ID, f.Path, name, folder.ActionOpen))
		}
	}
	cat := node.Category(ID, "favorites", "Favorites", "star", children...)
	cat.Metadata = map[string]string{node.MetaContentID: ContentID}
	return []node.Node{cat}
}

// LoadChildren lists a favorite folder. Entries are re-stamped with this
// provider's ID so updates for them reach the favorites rings.
func (p *Provider) LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error) {
	dir := n.Metadata[node.MetaPath]
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has no path", n.ID)
	}
	children, err := p.lister.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	for i := range children {
		children[i].ProviderID = ID
	}
	return children, nil
}

// Refresh reloads the list from the store.
func (p *Provider) Refresh(ctx context.Context) error {
	favs, err := p.store.Load(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeProvider, err, "load favorites")
	}
	sort.SliceStable(favs, func(i, j int) bool { return favs[i].Position < favs[j].Position })
	p.mu.Lock()
	p.favs = favs
	p.mu.Unlock()
	return nil
}

// Add appends a favorite and persists the list. Adding a path twice
// replaces the earlier entry in place.
func (p *Provider) Add(ctx context.Context, f Favorite) error {
	if err := errors.ValidatePath(f.Path); err != nil {
		return err
	}
	f.Path = filepath.Clean(f.Path)

	p.mu.Lock()
	favs := append([]Favorite(nil), p.favs...)
	p.mu.Unlock()

	replaced := false
	for i := range favs {
		if favs[i].Path == f.Path {
			f.Position = favs[i].Position
			favs[i] = f
			replaced = true
		}
	}
	if !replaced {
		f.Position = len(favs)
		favs = append(favs, f)
	}
	return p.save(ctx, favs)
}

// Remove drops the favorite at path.
func (p *Provider) Remove(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	p.mu.Lock()
	favs := make([]Favorite, 0, len(p.favs))
	for _, f := range p.favs {
		if f.Path != path {
			favs = append(favs, f)
		}
	}
	found := len(favs) != len(p.favs)
	p.mu.Unlock()

	if !found {
		return errors.New(errors.ErrCodeNotFound, "no favorite at %s", path)
	}
	for i := range favs {
		favs[i].Position = i
	}
	return p.save(ctx, favs)
}

func (p *Provider) save(ctx context.Context, favs []Favorite) error {
	if err := p.store.Save(ctx, favs); err != nil {
		return errors.Wrap(errors.ErrCodeProvider, err, "save favorites")
	}
	p.mu.Lock()
	p.favs = favs
	p.mu.Unlock()
	return nil
}
