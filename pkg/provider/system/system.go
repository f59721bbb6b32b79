// Package system provides session and power actions: lock, sleep, log out,
// restart and shut down.
//
// Nodes only carry action references. The commands behind them are bound in
// a node.ActionRegistry by [Register], which lets front ends swap them out
// or run the menu without side effects.
package system

import (
	"context"
	"os/exec"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/node"
)

// ID is the provider ID.
const ID = "system"

// Command is one system action.
type Command struct {
	ID   string   `toml:"id"`
	Name string   `toml:"name"`
	Icon string   `toml:"icon"`
	Argv []string `toml:"argv"`

	// Confirm keeps the menu open on a plain click; the action runs only
	// with Shift held, guarding destructive commands.
	Confirm bool `toml:"confirm"`
}

// Ref returns the action reference of c.
func (c Command) Ref() node.ActionRef { return node.ActionRef("system." + c.ID) }

// DefaultCommands uses systemd and loginctl.
func DefaultCommands() []Command {
	return []Command{
		{ID: "lock", Name: "Lock", Icon: "lock", Argv: []string{"loginctl", "lock-session"}},
		{ID: "sleep", Name: "Sleep", Icon: "moon", Argv: []string{"systemctl", "suspend"}},
		{ID: "logout", Name: "Log Out", Icon: "logout", Argv: []string{"loginctl", "terminate-session", "self"}, Confirm: true},
		{ID: "restart", Name: "Restart", Icon: "restart", Argv: []string{"systemctl", "reboot"}, Confirm: true},
		{ID: "shutdown", Name: "Shut Down", Icon: "power", Argv: []string{"systemctl", "poweroff"}, Confirm: true},
	}
}

// Provider serves a "System" category.
type Provider struct {
	cmds []Command
}

// New returns a provider for cmds, or DefaultCommands when cmds is empty.
func New(cmds ...Command) (*Provider, error) {
	if len(cmds) == 0 {
		cmds = DefaultCommands()
	}
	seen := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		if c.ID == "" || len(c.Argv) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "system command %q needs an id and argv", c.Name)
		}
		if seen[c.ID] {
			return nil, errors.New(errors.ErrCodeDuplicateID, "system command %q defined twice", c.ID)
		}
		seen[c.ID] = true
	}
	return &Provider{cmds: cmds}, nil
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return "System" }
func (p *Provider) Icon() string { return "power" }

// Commands returns the configured commands.
func (p *Provider) Commands() []Command { return append([]Command(nil), p.cmds...) }

// ProvideFunctions returns the System category. Its ring prefers a full
// circle so power actions keep a stable position.
func (p *Provider) ProvideFunctions(context.Context) []node.Node {
	children := make([]node.Node, 0, len(p.cmds))
	for _, c := range p.cmds {
		n := node.Action(ID, c.ID, c.Name, c.Icon, c.Ref())
		n.Kind = node.KindSystem
		if c.Confirm {
			n.Bindings.LeftClick = node.On(node.Behavior{Kind: node.DoNothing}).With(node.ModShift, node.Run(c.Ref()))
		}
		children = append(children, n)
	}
	cat := node.Category(ID, "system", "System", "power", children...)
	cat.Hints.PreferFullCircle = true
	return []node.Node{cat}
}

// LoadChildren is unsupported; the tree is static.
func (p *Provider) LoadChildren(_ context.Context, n node.Node) ([]node.Node, error) {
	return nil, errors.New(errors.ErrCodeUnsupported, "system provider has no dynamic nodes (got %q)", n.ID)
}

func (p *Provider) Refresh(context.Context) error { return nil }

// Runner executes argv.
type Runner func(ctx context.Context, argv []string) error

// ExecRunner runs argv as a child process and waits for it.
func ExecRunner(ctx context.Context, argv []string) error {
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return errors.Wrap(errors.ErrCodeProvider, err, "%s: %s", argv[0], out)
	}
	return nil
}

// Register binds every command of p in reg through run. A nil run uses
// ExecRunner.
func (p *Provider) Register(reg *node.ActionRegistry, run Runner) {
	if run == nil {
		run = ExecRunner
	}
	for _, c := range p.cmds {
		argv := c.Argv
		reg.Register(c.Ref(), func(ctx context.Context, _ node.Node) error {
			return run(ctx, argv)
		})
	}
}
