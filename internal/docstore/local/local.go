// Package local implements a filesystem-backed document store. Folders are
// resolved beneath a root directory, which makes it usable for development,
// tests and on-prem file shares that receive the daily report.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reportetl/internal/docstore"
)

func init() {
	docstore.Register("local", func(_ context.Context, cfg docstore.Config) (docstore.Store, error) {
		return New(cfg.Root)
	})
}

// Store serves files beneath root.
type Store struct{ root string }

// New returns a Store rooted at root, which must be an existing directory.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("local: root must not be empty")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("local: root %s: %w", root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("local: root %s is not a directory", root)
	}
	return &Store{root: root}, nil
}

// path joins root, folder and name, refusing anything that escapes root.
func (s *Store) path(folder, name string) (string, error) {
	rel := filepath.Join(filepath.FromSlash(strings.Trim(folder, "/")), name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("local: path %q escapes root", folder+"/"+name)
	}
	return filepath.Join(s.root, rel), nil
}

// List returns regular file names in folder, sorted.
func (s *Store) List(ctx context.Context, folder string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.path(folder, ".")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Open opens folder/name for reading. A missing file yields an error that
// matches both docstore.ErrNotFound and os.ErrNotExist.
func (s *Store) Open(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(folder, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, wrap("open", p, err)
	}
	return f, nil
}

// Delete removes folder/name.
func (s *Store) Delete(ctx context.Context, folder, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(folder, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return wrap("delete", p, err)
	}
	return nil
}

func wrap(op, p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %s: %w: %w", op, p, docstore.ErrNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", op, p, err)
}
