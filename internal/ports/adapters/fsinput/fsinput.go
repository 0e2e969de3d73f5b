// Package fsinput provides input sources that yield video files from the
// local filesystem.
package fsinput

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/mutecut/internal/types"
)

// DefaultExtensions is used when a DirSource has no extensions configured.
var DefaultExtensions = []string{".mp4"}

// DirSource lists files directly inside Dir whose extension matches, case-insensitively.
type DirSource struct {
	Dir        string
	Extensions []string
}

func (s DirSource) Inputs(ctx context.Context) ([]types.InputFile, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return nil, errors.New("input directory is empty")
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	exts := NormalizeExtensions(s.Extensions)
	var out []types.InputFile
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !hasExtension(e.Name(), exts) {
			continue
		}
		out = append(out, types.InputFile{Path: filepath.Join(s.Dir, e.Name()), Name: e.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListSource yields an explicit list of paths, in the order given.
type ListSource struct {
	Paths []string
}

func (s ListSource) Inputs(_ context.Context) ([]types.InputFile, error) {
	out := make([]types.InputFile, 0, len(s.Paths))
	for _, p := range s.Paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", p, err)
		}
		out = append(out, types.InputFile{Path: abs, Name: filepath.Base(abs)})
	}
	return out, nil
}

// NormalizeExtensions lowercases extensions and ensures a leading dot.
func NormalizeExtensions(exts []string) []string {
	var out []string
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultExtensions...)
	}
	return out
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
