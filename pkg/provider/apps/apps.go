// Package apps provides a ring of running applications, listed through
// gopsutil so the same provider works on Linux, macOS and Windows.
package apps

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/common"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
)

// ID is the provider ID.
const ID = "apps"

// Actions bound by application nodes.
const (
	ActionActivate node.ActionRef = "apps.activate"
	ActionQuit     node.ActionRef = "apps.quit"
)

// Metadata keys set on application nodes.
const (
	MetaPID     = "pid"
	MetaCommand = "command"
)

// Options configures a Provider.
type Options struct {
	// ProcDir overrides the procfs mount on Linux, e.g. a host's /proc
	// bind-mounted into a container. Empty uses the platform default.
	ProcDir string `toml:"proc_dir"`

	// Ignore lists command names never shown.
	Ignore []string `toml:"ignore"`

	// Limit caps how many applications the ring shows. Zero is unlimited.
	Limit int `toml:"limit"`
}

// Process is one scanned application.
type Process struct {
	PID     int
	Command string
}

// Lister enumerates running processes.
type Lister func(ctx context.Context) ([]Process, error)

// Provider lists running applications. The list is rescanned on Refresh.
type Provider struct {
	opts   Options
	ignore map[string]bool
	list   Lister

	mu    sync.RWMutex
	procs []Process
}

// New returns a provider; the process list is empty until Refresh.
func New(opts Options) *Provider {
	ignore := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = true
	}
	p := &Provider{opts: opts, ignore: ignore}
	p.list = func(ctx context.Context) ([]Process, error) {
		return List(ctx, p.opts.ProcDir)
	}
	return p
}

// WithLister replaces the process source.
func (p *Provider) WithLister(l Lister) *Provider {
	p.list = l
	return p
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return "Applications" }
func (p *Provider) Icon() string { return "grid" }

// Processes returns the last scan.
func (p *Provider) Processes() []Process {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Process(nil), p.procs...)
}

// ProvideFunctions returns a single "Running" category holding one action
// per application, sorted by name.
func (p *Provider) ProvideFunctions(context.Context) []node.Node {
	procs := p.Processes()
	children := make([]node.Node, 0, len(procs))
	for _, proc := range procs {
		n := node.Action(ID, "pid:"+strconv.Itoa(proc.PID), proc.Command, "app", ActionActivate)
		n.Kind = node.KindApp
		n.Metadata = map[string]string{
			MetaPID:     strconv.Itoa(proc.PID),
			MetaCommand: proc.Command,
		}
		n.Bindings.RightClick = node.On(node.RunKeepOpen(ActionQuit))
		children = append(children, n)
	}
	running := node.Category(ID, "running", "Running", "grid", children...)
	running.ChildLimit = p.opts.Limit
	running.Metadata = map[string]string{node.MetaContentID: "running"}
	return []node.Node{running}
}

// LoadChildren is unsupported; every application node is a leaf.
func (p *Provider) LoadChildren(_ context.Context, n node.Node) ([]node.Node, error) {
	return nil, errors.New(errors.ErrCodeUnsupported, "apps provider has no dynamic nodes (got %q)", n.ID)
}

// Refresh rescans running processes. Commands are listed once, under
// their lowest PID.
func (p *Provider) Refresh(ctx context.Context) error {
	procs, err := p.list(ctx)
	if err != nil {
		return err
	}
	sortProcesses(procs)
	out := make([]Process, 0, len(procs))
	seen := make(map[string]bool, len(procs))
	for _, proc := range procs {
		if proc.Command == "" || p.ignore[proc.Command] || seen[proc.Command] {
			continue
		}
		seen[proc.Command] = true
		out = append(out, proc)
	}
	p.mu.Lock()
	p.procs = out
	p.mu.Unlock()
	return nil
}

// List returns every running process with a name, sorted by command name
// and then PID. procDir, when set, replaces the procfs mount on Linux.
// Processes that exit mid-scan are skipped.
func List(ctx context.Context, procDir string) ([]Process, error) {
	if procDir != "" {
		ctx = context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: procDir})
	}
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProvider, err, "list processes")
	}
	procs := make([]Process, 0, len(ps))
	for _, proc := range ps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		procs = append(procs, Process{PID: int(proc.Pid), Command: name})
	}
	sortProcesses(procs)
	return procs, nil
}

func sortProcesses(procs []Process) {
	sort.Slice(procs, func(i, j int) bool {
		if procs[i].Command != procs[j].Command {
			return procs[i].Command < procs[j].Command
		}
		return procs[i].PID < procs[j].PID
	})
}
