package favorites

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/piemenu/pkg/errors"
)

// Favorite is one pinned path.
type Favorite struct {
	Path string `toml:"path" bson:"_id" json:"path"`
	Name string `toml:"name,omitempty" bson:"name,omitempty" json:"name,omitempty"`
	Dir  bool   `toml:"dir,omitempty" bson:"dir,omitempty" json:"dir,omitempty"`

	// Position orders favorites in the ring.
	Position int `toml:"position" bson:"position" json:"position"`
}

// Store persists the favorites list.
type Store interface {
	Load(ctx context.Context) ([]Favorite, error)
	Save(ctx context.Context, favs []Favorite) error
	Close() error
}

// TOMLStore keeps favorites in a TOML file:
//
//	[[favorite]]
//	path = "/home/me/notes"
//	dir = true
type TOMLStore struct {
	path string
}

type tomlFile struct {
	Favorites []Favorite `toml:"favorite"`
}

// NewTOMLStore returns a store backed by the file at path. The file is
// created on the first Save.
func NewTOMLStore(path string) (*TOMLStore, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &TOMLStore{path: path}, nil
}

// Path returns the backing file.
func (s *TOMLStore) Path() string { return s.path }

// Load reads the file. A missing file is an empty list.
func (s *TOMLStore) Load(context.Context) ([]Favorite, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", s.path)
	}
	return f.Favorites, nil
}

// Save replaces the file atomically.
func (s *TOMLStore) Save(_ context.Context, favs []Favorite) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tomlFile{Favorites: favs}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *TOMLStore) Close() error { return nil }
