// Package cli implements the piemenu command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/buildinfo"
	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = session.AppName

	// defaultServeAddr is where the debug API listens.
	defaultServeAddr = "127.0.0.1:7411"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	providers  string
	dryRun     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "piemenu is a radial context-menu engine",
		Long:         `piemenu builds radial menus from pluggable content providers (applications, favorites, folders, system actions) and lets you inspect, browse and serve them from the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", session.DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&c.providers, "providers", "", "comma-separated providers to enable, overriding the config")
	root.PersistentFlags().BoolVar(&c.dryRun, "dry-run", false, "log actions instead of running them")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.hitCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.providersCommand())
	root.AddCommand(c.favoritesCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// =============================================================================
// Session Factory
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (session.Config, error) {
	cfg, err := session.LoadConfig(c.configPath)
	if err != nil {
		return session.Config{}, err
	}
	if c.providers != "" {
		cfg.Providers = strings.Split(c.providers, ",")
		if err := cfg.ValidateAndSetDefaults(); err != nil {
			return session.Config{}, err
		}
	}
	return cfg, nil
}

// openSession builds a menu session. A nil sched gives the session its own
// loop, which the caller starts with Run.
func (c *CLI) openSession(ctx context.Context, sched menu.Scheduler) (*session.Session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return session.Open(ctx, session.Options{
		Config:    cfg,
		Scheduler: sched,
		DryRun:    c.dryRun,
		Logger:    c.Logger,
	})
}

// startSession opens a session with its own loop and runs it until ctx is
// done. The returned stop function cancels it and closes the session.
func (c *CLI) startSession(ctx context.Context) (*session.Session, func(), error) {
	sess, err := c.openSession(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sess.Run(ctx); err != nil {
			c.Logger.Warn("session stopped", "err", err)
		}
	}()
	return sess, func() {
		cancel()
		<-done
		sess.Close()
	}, nil
}

// walkFlag registers the --open flag shared by inspection commands.
func walkFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "open", "", `items to open before inspecting, as "level:index" pairs (e.g. "0:2,1:0")`)
}

// walk opens the items named by open in sess, one step at a time so the
// spinner can name the item being loaded.
func walk(ctx context.Context, sess *session.Session, open string) error {
	steps, err := session.ParseSteps(open)
	if err != nil || len(steps) == 0 {
		return err
	}
	sp := startSpinner(ctx, os.Stderr, "Opening")
	defer sp.stop()
	for _, st := range steps {
		sp.setLabel("Opening " + st.String())
		if err := sess.Walk(ctx, []session.Step{st}); err != nil {
			return err
		}
	}
	return nil
}
