// Package docstore defines the Document Store contract used by the report
// pipeline and a small registry of store implementations selected by kind.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

var (
	// ErrAuth marks failures to authenticate against the store.
	ErrAuth = errors.New("docstore: authentication failed")

	// ErrNotFound is returned by Open and Delete when the file does not exist.
	ErrNotFound = errors.New("docstore: file not found")
)

// Store is a folder-addressed file store. Folder paths use '/' separators
// and are interpreted by each implementation (server-relative for
// SharePoint, relative to Root for the local store).
type Store interface {
	// List returns the names of the files directly inside folder.
	List(ctx context.Context, folder string) ([]string, error)

	// Open streams the content of folder/name. The caller closes it.
	Open(ctx context.Context, folder, name string) (io.ReadCloser, error)

	// Delete removes folder/name.
	Delete(ctx context.Context, folder, name string) error
}

// Config selects and configures a Store.
type Config struct {
	Kind string

	// SharePoint
	SiteURL      string
	TenantID     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Timeout      time.Duration

	// Local
	Root string
}

// Factory builds an authenticated Store.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a store kind available to New. Registering the same kind
// again replaces the previous factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns a sorted snapshot of the registered store kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds the Store registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("docstore: unknown kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}
