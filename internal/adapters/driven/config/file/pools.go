package file

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure PoolStore implements the interface.
var _ driven.QueryPoolStore = (*PoolStore)(nil)

// defaultPool is the query pool used when no file is configured.
//
//go:embed defaults/queries.yaml
var defaultPool []byte

// PoolStore loads session query pools from a YAML file.
// An empty path selects the embedded default pool.
type PoolStore struct {
	path string
}

// NewPoolStore creates a pool store for path.
func NewPoolStore(path string) *PoolStore {
	return &PoolStore{path: path}
}

// Path returns the pool file path, or empty when the embedded pool is used.
func (s *PoolStore) Path() string {
	return s.path
}

// LoadPool reads and parses the pool.
func (s *PoolStore) LoadPool() (domain.QueryPool, error) {
	if s.path == "" {
		return ParsePool(defaultPool)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.QueryPool{}, fmt.Errorf("reading query pool: %w", err)
	}
	pool, err := ParsePool(data)
	if err != nil {
		return domain.QueryPool{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return pool, nil
}

// DefaultPool returns the embedded YAML so it can be written out and edited.
func DefaultPool() []byte {
	out := make([]byte, len(defaultPool))
	copy(out, defaultPool)
	return out
}

// WriteDefaultPool writes the embedded pool to path unless a file already exists.
// Returns true when the file was written.
func WriteDefaultPool(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("creating pool directory: %w", err)
	}
	if err := os.WriteFile(path, defaultPool, 0600); err != nil {
		return false, fmt.Errorf("writing default pool: %w", err)
	}
	return true, nil
}

type poolFile struct {
	Sessions   map[string][]string `yaml:"sessions"`
	Categories []poolCategory      `yaml:"categories"`
}

type poolCategory struct {
	Name    string   `yaml:"name"`
	Queries []string `yaml:"queries"`
}

// ParsePool decodes a YAML query pool. Blank queries are dropped;
// a pool with no queries at all is rejected.
func ParsePool(data []byte) (domain.QueryPool, error) {
	var pf poolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return domain.QueryPool{}, fmt.Errorf("parsing query pool: %w", err)
	}

	pool := domain.QueryPool{Sessions: make(map[string][]string, len(pf.Sessions))}
	for name, queries := range pf.Sessions {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.QueryPool{}, fmt.Errorf("%w: session name must not be empty", domain.ErrInvalidInput)
		}
		pool.Sessions[name] = cleanQueries(queries)
	}
	for _, c := range pf.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return domain.QueryPool{}, fmt.Errorf("%w: category name must not be empty", domain.ErrInvalidInput)
		}
		pool.Categories = append(pool.Categories, domain.CategoryQueries{
			Name:    strings.TrimSpace(c.Name),
			Queries: cleanQueries(c.Queries),
		})
	}

	if pool.Size() == 0 {
		return domain.QueryPool{}, fmt.Errorf("%w: query pool is empty", domain.ErrInvalidInput)
	}
	return pool, nil
}

func cleanQueries(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
