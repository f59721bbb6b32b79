package provider

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/piemenu/pkg/cache"
	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
)

func TestRegistry(t *testing.T) {
	files := NewStatic("files", "Files", "folder")
	apps := NewStatic("apps", "Apps", "grid")

	r, err := NewRegistry(files, apps)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if diff := cmp.Diff([]string{"files", "apps"}, r.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	if p, ok := r.Get("apps"); !ok || p != Provider(apps) {
		t.Error("Get(apps) failed")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}

	err = r.Register(NewStatic("files", "Other", ""))
	if errors.GetCode(err) != errors.ErrCodeDuplicateID {
		t.Errorf("duplicate register: %v", err)
	}
	err = r.Register(NewStatic("bad id", "Bad", ""))
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("invalid id: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestNewUpdateEvent(t *testing.T) {
	a := NewUpdateEvent("files", "/tmp")
	b := NewUpdateEvent("files", "/tmp")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("event IDs should be unique: %q %q", a.ID, b.ID)
	}
	if a.ProviderID != "files" || a.ContentID != "/tmp" || a.Time.IsZero() {
		t.Errorf("event = %+v", a)
	}
}

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	dir := node.Folder("files", "/home", "home", "files.open")
	s := NewStatic("files", "Files", "folder", dir)
	s.SetChildren("/home", node.File("files", "/home/a.txt", "a.txt", "files.open"))

	roots := s.ProvideFunctions(ctx)
	roots[0].Name = "changed"
	if s.ProvideFunctions(ctx)[0].Name != "home" {
		t.Error("ProvideFunctions should return a copy")
	}

	children, err := s.LoadChildren(ctx, dir)
	if err != nil || len(children) != 1 {
		t.Fatalf("LoadChildren = %v, %v", children, err)
	}
	if _, err := s.LoadChildren(ctx, node.Folder("files", "/nope", "nope", "")); errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("unknown folder: %v", err)
	}
}

type countingProvider struct {
	*Static
	loads int
}

func (c *countingProvider) LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error) {
	c.loads++
	return c.Static.LoadChildren(ctx, n)
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dir := node.Folder("files", "/home", "home", "files.open")
	inner := &countingProvider{Static: NewStatic("files", "Files", "folder", dir)}
	inner.SetChildren("/home", node.File("files", "/home/a.txt", "a.txt", "files.open"))
	p := Cached(inner, fc, time.Minute)

	first, err := p.LoadChildren(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.LoadChildren(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if inner.loads != 1 {
		t.Errorf("loads = %d, want 1", inner.loads)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached children differ (-first +second):\n%s", diff)
	}

	inner.SetChildren("/home",
		node.File("files", "/home/a.txt", "a.txt", "files.open"),
		node.File("files", "/home/b.txt", "b.txt", "files.open"),
	)
	if err := p.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	third, err := p.LoadChildren(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if inner.loads != 2 || len(third) != 2 {
		t.Errorf("after refresh: loads=%d children=%d", inner.loads, len(third))
	}
	if inner.Refreshes() != 1 {
		t.Errorf("Refresh should reach the wrapped provider")
	}
}

func TestCachedProviderRefreshAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	home := node.Folder("files", "/home", "home", "files.open")

	// An earlier run leaves /home cached on disk.
	fc1, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	prev := NewStatic("files", "Files", "folder", home)
	prev.SetChildren("/home", node.File("files", "/home/old.txt", "old.txt", "files.open"))
	if _, err := Cached(prev, fc1, time.Minute).LoadChildren(ctx, home); err != nil {
		t.Fatal(err)
	}

	fc2, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingProvider{Static: NewStatic("files", "Files", "folder", home)}
	inner.SetChildren("/home", node.File("files", "/home/new.txt", "new.txt", "files.open"))
	p := Cached(inner, fc2, time.Minute)

	warm, err := p.LoadChildren(ctx, home)
	if err != nil {
		t.Fatal(err)
	}
	if len(warm) != 1 || warm[0].Name != "old.txt" || inner.loads != 0 {
		t.Fatalf("warm start should be served from disk: %+v (loads=%d)", warm, inner.loads)
	}

	if err := p.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := p.LoadChildren(ctx, home)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "new.txt" {
		t.Errorf("after refresh got %+v, want new.txt", got)
	}

	// A third instance on the same directory follows the new generation.
	fc3, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	other := &countingProvider{Static: NewStatic("files", "Files", "folder", home)}
	other.SetChildren("/home")
	again, err := Cached(other, fc3, time.Minute).LoadChildren(ctx, home)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0].Name != "new.txt" || other.loads != 0 {
		t.Errorf("third instance got %+v (loads=%d), want cached new.txt", again, other.loads)
	}
}

func TestCachedProviderSkipsAnonymousNodes(t *testing.T) {
	ctx := context.Background()
	inner := &countingProvider{Static: NewStatic("apps", "Apps", "grid")}
	inner.SetChildren("")
	p := Cached(inner, nil, 0)

	anon := node.Node{ID: "x", NeedsDynamicLoading: true}
	for range 2 {
		if _, err := p.LoadChildren(ctx, anon); err != nil {
			t.Fatal(err)
		}
	}
	if inner.loads != 2 {
		t.Errorf("loads = %d, want 2", inner.loads)
	}
}
