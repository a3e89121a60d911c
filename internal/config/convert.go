package config

import (
	"reportetl/internal/docstore"
	"reportetl/internal/report"
	"reportetl/internal/storage"
)

// DocStore maps the source section onto a docstore.Config.
func (s Source) DocStore() docstore.Config {
	return docstore.Config{
		Kind:         s.Kind,
		SiteURL:      s.SiteURL,
		TenantID:     s.TenantID,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Username:     s.Username,
		Password:     s.Password,
		Timeout:      s.Timeout.Std(),
		Root:         s.Root,
	}
}

// Storage maps the sink section onto a storage.Config. When URL is set it
// determines the kind and DSN; an explicit Kind must then agree with it.
func (s Sink) Storage() (storage.Config, error) {
	cfg := storage.Config{
		Kind:     s.Kind,
		Server:   s.Server,
		Database: s.Database,
		AuthMode: s.AuthMode,
		User:     s.User,
		Password: s.Password,
		Table:    s.Table,
		Columns:  report.TargetColumns,
	}
	if s.URL == "" {
		return cfg, nil
	}
	u, err := storage.ParseURL(s.URL)
	if err != nil {
		return storage.Config{}, err
	}
	if s.Kind != "" && s.Kind != u.Kind {
		return storage.Config{}, &Issue{
			Severity: SeverityError,
			Path:     "sink.kind",
			Message:  "kind " + s.Kind + " does not match url driver " + u.Kind,
		}
	}
	cfg.Kind = u.Kind
	cfg.DSN = u.DSN
	if u.AuthMode != "" {
		cfg.AuthMode = u.AuthMode
	}
	return cfg, nil
}
