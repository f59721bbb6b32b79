package cli

import (
	"context"
	"sync"
	"testing"

	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/provider/system"
	"github.com/matzehuels/piemenu/pkg/session"
)

// demoProvider serves one "Demo" category with n actions bound to demo.run.
func demoProvider(n int) *provider.Static {
	var children []node.Node
	for i := range n {
		id := string(rune('a' + i))
		children = append(children, node.Action("demo", id, "Item "+id, "", "demo.run"))
	}
	return provider.NewStatic("demo", "Demo", "", node.Category("demo", "demo", "Demo", "", children...))
}

// ranActions records the nodes demo.run was called with.
type ranActions struct {
	mu  sync.Mutex
	ids []string
}

func (r *ranActions) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

// newTestSession opens a session with the system provider and a demo
// provider. With a nil sched the session owns its loop, which is started.
func newTestSession(t *testing.T, sched menu.Scheduler) (*session.Session, *ranActions) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := session.Config{Providers: []string{system.ID}}
	cfg.Cache.Backend = session.BackendNone
	sess, err := session.Open(ctx, session.Options{
		Config:    cfg,
		Scheduler: sched,
		Extra:     []provider.Provider{demoProvider(3)},
		DryRun:    true,
	})
	if err != nil {
		cancel()
		t.Fatal(err)
	}

	ran := &ranActions{}
	sess.Actions.Register("demo.run", func(_ context.Context, n node.Node) error {
		ran.mu.Lock()
		defer ran.mu.Unlock()
		ran.ids = append(ran.ids, n.ID)
		return nil
	})

	if sched == nil {
		go sess.Run(ctx)
	}
	t.Cleanup(func() {
		cancel()
		sess.Close()
	})
	return sess, ran
}
