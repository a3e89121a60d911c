package storage

import (
	"fmt"

	"github.com/xo/dburl"
)

// driverKinds maps dburl driver names onto registered storage kinds.
var driverKinds = map[string]string{
	"sqlserver":     "mssql",
	"azuresql":      "mssql",
	"postgres":      "postgres",
	"pgx":           "postgres",
	"mysql":         "mysql",
	"sqlite3":       "sqlite",
	"moderncsqlite": "sqlite",
}

// ParseURL resolves a database URL such as "sqlserver://host/db",
// "pg://user@host/db" or "sq:report.db" into the storage kind and the
// driver-specific DSN. An "azuresql" URL selects Azure AD authentication.
func ParseURL(raw string) (Config, error) {
	u, err := dburl.Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse sink url: %w", err)
	}
	kind, ok := driverKinds[u.Driver]
	if !ok {
		return Config{}, fmt.Errorf("parse sink url: unsupported driver %q", u.Driver)
	}
	cfg := Config{Kind: kind, DSN: u.DSN}
	if u.Driver == "azuresql" {
		cfg.AuthMode = "azure"
	}
	return cfg, nil
}
