// Package mysql implements the MySQL sink with database/sql and the
// go-sql-driver/mysql driver. The batch is written with multi-row INSERT
// statements inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"reportetl/internal/storage"
)

// maxPlaceholders bounds a single INSERT below MySQL's 65535 placeholder limit.
const maxPlaceholders = 60000

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the pool and verifies connectivity.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// BuildDSN renders a go-sql-driver DSN from the discrete sink fields.
func BuildDSN(cfg storage.Config) (string, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return "", fmt.Errorf("mysql: server is required")
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Server
	mc.DBName = cfg.Database
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

// CopyFrom inserts rows in chunks of multi-row INSERTs within a single
// transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	chunk := maxPlaceholders / len(columns)
	var total int64
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		stmt, args, err := insertSQL(r.cfg.Table, columns, rows[start:end])
		if err != nil {
			rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// insertSQL renders INSERT INTO t (cols) VALUES (?,..),(?,..) for rows.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myFQN(table), strings.Join(mapIdent(columns), ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(group)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

// myIdent quotes an identifier with backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(strings.TrimSpace(p))
	}
	return strings.Join(parts, ".")
}

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = myIdent(c)
	}
	return out
}
