package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/piemenu/pkg/cache"
	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/events"
	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/provider/apps"
	"github.com/matzehuels/piemenu/pkg/provider/favorites"
	"github.com/matzehuels/piemenu/pkg/provider/folder"
	"github.com/matzehuels/piemenu/pkg/provider/system"
)

// Options configures Open.
type Options struct {
	Config Config

	// Scheduler owns the stack. When nil the session creates a menu.Loop,
	// started by Run.
	Scheduler menu.Scheduler

	// Bus overrides the bus selected by Config.Events.
	Bus events.Bus

	// Extra providers are registered after the configured ones.
	Extra []provider.Provider

	// DryRun logs commands instead of running them.
	DryRun bool

	Logger *log.Logger
}

// Session is one assembled menu instance.
type Session struct {
	ID     string
	Config Config

	Loop        *menu.Loop
	Stack       *menu.Stack
	Coordinator *menu.Coordinator
	Controller  *menu.Controller
	Bus         events.Bus
	Actions     *node.ActionRegistry
	Providers   *provider.Registry

	// Favorites is nil unless the favorites provider is enabled.
	Favorites *favorites.Provider

	watcher *folder.Watcher
	closers []io.Closer
	logger  *log.Logger
}

// Open builds a session from opts and loads ring 0. Call Run to start
// event processing and Close to release stores and connections.
func Open(ctx context.Context, opts Options) (_ *Session, err error) {
	cfg := opts.Config
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Session{
		ID:      uuid.NewString(),
		Config:  cfg,
		Actions: node.NewActionRegistry(),
		logger:  logger,
	}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	s.Bus = opts.Bus
	if s.Bus == nil {
		if s.Bus, err = openBus(ctx, cfg.Events, logger); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, s.Bus)
	}

	c, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, c)

	if cfg.Events.Watch && slices.Contains(cfg.Providers, folder.ID) {
		if s.watcher, err = folder.NewWatcher(s.Bus, logger); err != nil {
			return nil, fmt.Errorf("folder watcher: %w", err)
		}
	}

	reg, err := provider.NewRegistry()
	if err != nil {
		return nil, err
	}
	s.Providers = reg
	for _, id := range cfg.Providers {
		p, err := s.buildProvider(ctx, id, c)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", id, err)
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	for _, p := range opts.Extra {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	s.registerActions(opts.DryRun)

	sched := opts.Scheduler
	if sched == nil {
		s.Loop = menu.NewLoop(logger)
		sched = s.Loop
	}
	s.Stack, err = menu.New(menu.Options{
		Providers: reg,
		Layout:    cfg.Layout,
		Scheduler: sched,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	s.Coordinator = menu.NewCoordinator(s.Stack, logger)
	s.Controller = menu.NewController(s.Stack, s.Actions, cfg.Center, logger)

	// The loop is not running yet, so loading here cannot race it.
	s.Stack.Load(ctx)
	s.logger.Debug("session opened", "id", s.ID, "providers", reg.IDs())
	return s, nil
}

func openBus(ctx context.Context, cfg EventsConfig, logger *log.Logger) (events.Bus, error) {
	if cfg.Backend == BackendRedis {
		return events.NewRedisBus(ctx, cfg.Redis, logger)
	}
	return events.NewMemoryBus(), nil
}

func openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case BackendFile:
		return cache.NewFileCache(cfg.Dir)
	case BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Redis)
	default:
		return cache.NewNullCache(), nil
	}
}

func (s *Session) buildProvider(ctx context.Context, id string, c cache.Cache) (provider.Provider, error) {
	cfg := s.Config
	switch id {
	case apps.ID:
		return apps.New(cfg.Apps), nil
	case system.ID:
		return system.New(cfg.System...)
	case folder.ID:
		fp, err := folder.New(cfg.Files)
		if err != nil {
			return nil, err
		}
		var p provider.Provider = provider.Cached(fp, c, cfg.Cache.TTL)
		if s.watcher != nil {
			p = folder.Tracking(p, s.watcher)
		}
		return p, nil
	case favorites.ID:
		store, err := openFavoritesStore(ctx, cfg.Favorites)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store)
		lister, err := folder.New(folder.Options{ShowHidden: cfg.Files.ShowHidden, Limit: cfg.Files.Limit})
		if err != nil {
			return nil, err
		}
		s.Favorites = favorites.New(store, lister)
		return s.Favorites, nil
	}
	return nil, errors.New(errors.ErrCodeProviderNotFound, "unknown provider %q", id)
}

func openFavoritesStore(ctx context.Context, cfg FavoritesConfig) (favorites.Store, error) {
	if cfg.Store == BackendMongo {
		return favorites.NewMongoStore(ctx, cfg.Mongo)
	}
	return favorites.NewTOMLStore(cfg.Path)
}

// registerActions binds every action reference the built-in providers use.
func (s *Session) registerActions(dryRun bool) {
	run := system.ExecRunner
	if dryRun {
		run = func(_ context.Context, argv []string) error {
			s.logger.Info("dry run", "argv", argv)
			return nil
		}
	}
	if p, ok := s.Providers.Get(system.ID); ok {
		p.(*system.Provider).Register(s.Actions, run)
	}

	open := func(ctx context.Context, path string) error {
		if path == "" {
			return errors.New(errors.ErrCodeInvalidInput, "nothing to open")
		}
		return run(ctx, []string{"xdg-open", path})
	}
	s.Actions.Register(folder.ActionOpen, func(ctx context.Context, n node.Node) error {
		return open(ctx, n.Metadata[node.MetaPath])
	})
	s.Actions.Register(folder.ActionReveal, func(ctx context.Context, n node.Node) error {
		return open(ctx, filepath.Dir(n.Metadata[node.MetaPath]))
	})

	s.Actions.Register(apps.ActionActivate, func(_ context.Context, n node.Node) error {
		// Raising windows is up to the front end; the engine only reports it.
		s.logger.Info("activate application", "command", n.Metadata[apps.MetaCommand], "pid", n.Metadata[apps.MetaPID])
		return nil
	})
	s.Actions.Register(apps.ActionQuit, func(_ context.Context, n node.Node) error {
		pid, err := strconv.Atoi(n.Metadata[apps.MetaPID])
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q has no pid", n.ID)
		}
		if dryRun {
			s.logger.Info("dry run", "signal", "TERM", "pid", pid)
			return nil
		}
		proc, err := os.FindProcess(pid)
		if err != nil {
			return err
		}
		return proc.Signal(syscall.SIGTERM)
	})
}

// Run processes update events and, when the session owns its loop, runs
// it. It blocks until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	if s.Loop != nil {
		go s.Loop.Run(ctx)
	}
	if s.watcher != nil {
		go func() {
			if err := s.watcher.Run(ctx); err != nil {
				s.logger.Warn("folder watcher stopped", "err", err)
			}
		}()
	}
	err := s.Coordinator.Run(ctx, s.Bus)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Do runs fn on the stack's owner. Without an owned loop the caller already
// is the owner and fn runs inline.
func (s *Session) Do(ctx context.Context, fn func()) error {
	if s.Loop == nil {
		fn()
		return nil
	}
	return s.Loop.Do(ctx, fn)
}

// Publish sends ev to every subscriber of the session's bus.
func (s *Session) Publish(ctx context.Context, ev provider.UpdateEvent) error {
	return s.Bus.Publish(ctx, ev)
}

// Close releases stores, caches and the bus. It is safe to call twice.
func (s *Session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
