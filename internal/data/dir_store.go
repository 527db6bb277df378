package data

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed rulesets/*.yaml
var defaultRuleSets embed.FS

// DefaultRuleSets returns the rule sets shipped with the server.
func DefaultRuleSets() fs.FS {
	sub, err := fs.Sub(defaultRuleSets, "rulesets")
	if err != nil {
		// embed paths are fixed at build time
		panic(err)
	}
	return sub
}

const ruleSetExt = ".yaml"

// DirStore reads <name>.yaml files from a filesystem.
type DirStore struct {
	fsys fs.FS
}

// NewDirStore creates a store over fsys (os.DirFS, DefaultRuleSets, fstest.MapFS).
func NewDirStore(fsys fs.FS) *DirStore {
	return &DirStore{fsys: fsys}
}

// Load reads and validates the named rule set.
func (s *DirStore) Load(ctx context.Context, name string) (*RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("loading rule set %q: %w", name, ErrNotFound)
	}

	raw, err := fs.ReadFile(s.fsys, name+ruleSetExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading rule set %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("loading rule set %q: %w", name, err)
	}
	return ParseRuleSet(name, raw)
}

// Names lists the rule sets available in the directory, sorted.
func (s *DirStore) Names() ([]string, error) {
	matches, err := fs.Glob(s.fsys, "*"+ruleSetExt)
	if err != nil {
		return nil, fmt.Errorf("listing rule sets: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ruleSetExt))
	}
	sort.Strings(names)
	return names, nil
}

// LoadAll loads every rule set in the directory.
func (s *DirStore) LoadAll(ctx context.Context) ([]*RuleSet, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}
	out := make([]*RuleSet, 0, len(names))
	for _, name := range names {
		rs, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	slog.Info("loaded rule sets", "count", len(out))
	return out, nil
}
