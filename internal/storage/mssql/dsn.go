package mssql

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"reportetl/internal/storage"
)

// BuildDSN renders a sqlserver:// connection string from the discrete sink
// fields. Server accepts "host", "host,port", "host:port" and
// "host\instance".
//
// Auth modes:
//   - "sql": user and password in the URL
//   - "windows": no credentials; the driver uses integrated security
//   - "azure": Azure AD default credential chain (fedauth)
func BuildDSN(cfg storage.Config) (string, error) {
	server := strings.TrimSpace(cfg.Server)
	if server == "" {
		return "", fmt.Errorf("mssql: server is required")
	}
	var instance string
	if i := strings.IndexByte(server, '\\'); i >= 0 {
		server, instance = server[:i], server[i+1:]
	}
	host := server
	if h, p, ok := strings.Cut(server, ","); ok {
		host = net.JoinHostPort(strings.TrimSpace(h), strings.TrimSpace(p))
	}

	u := &url.URL{Scheme: "sqlserver", Host: host}
	if instance != "" {
		u.Path = "/" + instance
	}
	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	q.Set("app name", "reportetl")

	switch strings.ToLower(cfg.AuthMode) {
	case "", "sql":
		if cfg.User == "" {
			return "", fmt.Errorf("mssql: user is required for sql authentication")
		}
		u.User = url.UserPassword(cfg.User, cfg.Password)
	case "windows":
	case "azure":
		q.Set("fedauth", "ActiveDirectoryDefault")
	default:
		return "", fmt.Errorf("mssql: unsupported auth_mode %q", cfg.AuthMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
