package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// ErrUnsupportedFormat is returned for catalog files that are neither YAML nor TOML
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// FileSource reads the catalog from a .yaml, .yml or .toml file
type FileSource struct {
	path string
}

// NewFileSource creates a source for the catalog file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Path returns the catalog file path
func (s *FileSource) Path() string {
	return s.path
}

// Load implements Source
func (s *FileSource) Load(ctx context.Context) (*model.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return Build(c)
}

// ReadFile parses a catalog file, choosing the format by extension
func ReadFile(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAML(path)
	case ".toml":
		return readTOML(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func readYAML(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	var c Catalog
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, path, err)
	}
	return &c, nil
}

func readTOML(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var c Catalog
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, path, err)
	}
	return &c, nil
}
