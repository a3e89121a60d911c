// Package postgres implements the Postgres sink using pgx v5. The batch is
// loaded with COPY inside a transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"reportetl/internal/schema"
	"reportetl/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN     string   // connection string for pgxpool
	Table   string   // fully qualified target table name, e.g., "public.reporte"
	Columns []string // ordered columns for COPY
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// BuildDSN renders a postgres:// URL from the discrete sink fields.
func BuildDSN(cfg storage.Config) (string, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return "", fmt.Errorf("postgres: server is required")
	}
	u := &url.URL{Scheme: "postgres", Host: cfg.Server, Path: "/" + cfg.Database}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	u.RawQuery = url.Values{"application_name": {"reportetl"}}.Encode()
	return u.String(), nil
}

// CopyFrom loads rows with COPY in one transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	bound, err := bindRows(columns, rows)
	if err != nil {
		return 0, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := tx.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(bound))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
		}
		return 0, fmt.Errorf("copy: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// bindRows converts YYYY-MM-DD strings in date columns to time.Time and
// decimal strings to pgtype.Numeric, which pgx encodes for COPY's binary
// format. Other values pass through.
func bindRows(columns []string, rows [][]any) ([][]any, error) {
	kinds := make(map[string]string, len(schema.Target))
	for _, c := range schema.Target {
		kinds[c.Name] = c.Kind
	}
	var dateIdx, numIdx []int
	for i, c := range columns {
		switch kinds[c] {
		case "date":
			dateIdx = append(dateIdx, i)
		case "decimal":
			numIdx = append(numIdx, i)
		}
	}
	if len(dateIdx) == 0 && len(numIdx) == 0 {
		return rows, nil
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		b := append([]any(nil), row...)
		for _, j := range dateIdx {
			if j >= len(b) {
				continue
			}
			s, ok := b[j].(string)
			if !ok {
				continue
			}
			d, err := civil.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, columns[j], err)
			}
			b[j] = d.In(time.UTC)
		}
		for _, j := range numIdx {
			if j >= len(b) {
				continue
			}
			s, ok := b[j].(string)
			if !ok {
				continue
			}
			var n pgtype.Numeric
			if err := n.Scan(s); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, columns[j], err)
			}
			b[j] = n
		}
		out[i] = b
	}
	return out, nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
