package session

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/piemenu/pkg/cache"
	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/events"
	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/layout"
	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/provider/apps"
	"github.com/matzehuels/piemenu/pkg/provider/favorites"
	"github.com/matzehuels/piemenu/pkg/provider/folder"
	"github.com/matzehuels/piemenu/pkg/provider/system"
)

// Backends.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendTOML   = "toml"
	BackendMongo  = "mongo"
)

// Config is the full menu configuration.
type Config struct {
	// Providers lists the enabled providers in ring 0 order.
	Providers []string `toml:"providers"`

	// Center is where the menu is centered, in screen coordinates.
	Center hittest.Point `toml:"center"`

	Layout    layout.Config    `toml:"layout"`
	Files     folder.Options   `toml:"files"`
	Apps      apps.Options     `toml:"apps"`
	System    []system.Command `toml:"system"`
	Favorites FavoritesConfig  `toml:"favorites"`
	Cache     CacheConfig      `toml:"cache"`
	Events    EventsConfig     `toml:"events"`
}

// FavoritesConfig selects the favorites store.
type FavoritesConfig struct {
	Store string                `toml:"store"`
	Path  string                `toml:"path"`
	Mongo favorites.MongoConfig `toml:"mongo"`
}

// CacheConfig selects where dynamically loaded children are cached.
type CacheConfig struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	TTL     time.Duration     `toml:"ttl"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// EventsConfig selects the update event bus. Watch enables the folder
// watcher, which publishes an update whenever a listed directory changes.
type EventsConfig struct {
	Backend string             `toml:"backend"`
	Watch   bool               `toml:"watch"`
	Redis   events.RedisConfig `toml:"redis"`
}

// Defaults.
var (
	DefaultProviders = []string{apps.ID, favorites.ID, folder.ID, system.ID}
	DefaultCenter    = hittest.Point{X: 300, Y: 300}
)

// DefaultConfig returns a validated configuration with every default set.
func DefaultConfig() Config {
	var c Config
	_ = c.ValidateAndSetDefaults()
	return c
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// unknown providers and backends.
func (c *Config) ValidateAndSetDefaults() error {
	if len(c.Providers) == 0 {
		c.Providers = slices.Clone(DefaultProviders)
	}
	if c.Center == (hittest.Point{}) {
		c.Center = DefaultCenter
	}
	if err := c.Layout.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if len(c.Files.Roots) == 0 {
		c.Files.Roots = []string{"~"}
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, id := range c.Providers {
		switch id {
		case apps.ID, favorites.ID, folder.ID, system.ID:
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "unknown provider %q", id)
		}
		if seen[id] {
			return errors.New(errors.ErrCodeDuplicateID, "provider %q enabled twice", id)
		}
		seen[id] = true
	}

	if c.Favorites.Store == "" {
		c.Favorites.Store = BackendTOML
	}
	if c.Favorites.Store == BackendTOML && c.Favorites.Path == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Favorites.Path = filepath.Join(dir, "favorites.toml")
		}
	}
	if err := oneOf("favorites.store", c.Favorites.Store, BackendTOML, BackendMongo); err != nil {
		return err
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.Backend == BackendFile && c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		} else {
			c.Cache.Backend = BackendNone
		}
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = provider.DefaultChildrenTTL
	}
	if err := oneOf("cache.backend", c.Cache.Backend, BackendNone, BackendFile, BackendRedis); err != nil {
		return err
	}

	if c.Events.Backend == "" {
		c.Events.Backend = BackendMemory
	}
	return oneOf("events.backend", c.Events.Backend, BackendMemory, BackendRedis)
}

func oneOf(field, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s must be one of %s, got %q", field, strings.Join(allowed, ", "), v)
}

// LoadConfig reads the TOML file at path. A missing file yields the
// defaults; unknown keys are an error so typos do not pass silently.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path != "" {
		md, err := toml.DecodeFile(path, &c)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
			}
		}
	}
	if err := c.ValidateAndSetDefaults(); err != nil {
		return Config{}, err
	}
	return c, nil
}
