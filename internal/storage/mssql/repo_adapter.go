package mssql

import (
	"context"

	"reportetl/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		dsn := cfg.DSN
		if dsn == "" {
			var err error
			if dsn, err = BuildDSN(cfg); err != nil {
				return nil, err
			}
		}
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     dsn,
			Driver:  driverFor(cfg.AuthMode),
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mssql", EnsureTable)
}

// wrappedRepo adapts *mssql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
