// Package folder provides menu content from directories on disk.
//
// Every configured directory becomes a dynamic root node; its children are
// listed on demand, sub-folders first, with dotfiles hidden unless
// configured otherwise. A [Watcher] turns filesystem changes in listed
// directories into update events so open rings refresh in place.
package folder

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
)

// ID is the provider ID.
const ID = "files"

// Actions bound by folder nodes.
const (
	ActionOpen   node.ActionRef = "files.open"
	ActionReveal node.ActionRef = "files.reveal"
)

// Options configures a Provider.
type Options struct {
	// Roots are the directories shown in ring 0.
	Roots []string `toml:"roots"`

	// ShowHidden displays dotfiles instead of hiding them.
	ShowHidden bool `toml:"show_hidden"`

	// Limit caps how many entries a folder ring shows. Zero is unlimited.
	Limit int `toml:"limit"`
}

// Provider lists directory contents.
type Provider struct {
	opts Options
}

// New validates opts and returns a provider.
func New(opts Options) (*Provider, error) {
	for i, root := range opts.Roots {
		root = ExpandHome(root)
		if err := errors.ValidatePath(root); err != nil {
			return nil, err
		}
		opts.Roots[i] = filepath.Clean(root)
	}
	return &Provider{opts: opts}, nil
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return "Files" }
func (p *Provider) Icon() string { return "folder" }

// Roots returns the configured root directories.
func (p *Provider) Roots() []string { return append([]string(nil), p.opts.Roots...) }

// ProvideFunctions returns one dynamic folder node per root.
func (p *Provider) ProvideFunctions(context.Context) []node.Node {
	out := make([]node.Node, 0, len(p.opts.Roots))
	for _, root := range p.opts.Roots {
		out = append(out, p.folderNode(root))
	}
	return out
}

// LoadChildren lists the directory behind n.
func (p *Provider) LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error) {
	dir := n.Metadata[node.MetaPath]
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has no path", n.ID)
	}
	return p.List(ctx, dir)
}

// List returns the entries of dir as nodes: folders first, then files, each
// group sorted case-insensitively.
func (p *Provider) List(ctx context.Context, dir string) ([]node.Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProvider, err, "list %s", dir)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if a, b := entries[i].IsDir(), entries[j].IsDir(); a != b {
			return a
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	out := make([]node.Node, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, e.Name())
		var n node.Node
		if e.IsDir() {
			n = p.folderNode(path)
		} else {
			n = node.File(ID, path, e.Name(), ActionOpen)
			n.Bindings.RightClick = node.On(node.RunKeepOpen(ActionReveal))
		}
		n.Hidden = !p.opts.ShowHidden && strings.HasPrefix(e.Name(), ".")
		out = append(out, n)
	}
	return out, nil
}

func (p *Provider) folderNode(path string) node.Node {
	name := filepath.Base(path)
	if name == string(filepath.Separator) || name == "." {
		name = path
	}
	n := node.Folder(ID, path, name, ActionOpen)
	n.ChildLimit = p.opts.Limit
	n.Bindings.RightClick = node.On(node.RunKeepOpen(ActionReveal))
	n.Hints.Anchor = node.AnchorCenter
	return n
}

// Refresh is a no-op; listings are read from disk on every load.
func (p *Provider) Refresh(context.Context) error { return nil }

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
