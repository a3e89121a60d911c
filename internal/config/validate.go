package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to the operator but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "sink.server").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateRun performs static validation of a Run after defaults have been
// applied. It never mutates r and performs no I/O.
func ValidateRun(r Run) []Issue {
	var issues []Issue
	issues = append(issues, validateSource(r.Source)...)
	issues = append(issues, validateSink(r.Sink)...)
	issues = append(issues, validateLog(r.Log)...)
	issues = append(issues, validateMetrics(r.Metrics)...)
	return issues
}

func required(path, v string) []Issue {
	if strings.TrimSpace(v) != "" {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     path,
		Message:  path + " must not be empty",
	}}
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "sharepoint":
		issues = append(issues, required("source.site_url", s.SiteURL)...)
		issues = append(issues, required("source.tenant_id", s.TenantID)...)
		issues = append(issues, required("source.client_id", s.ClientID)...)
		if strings.TrimSpace(s.ClientSecret) == "" {
			issues = append(issues, required("source.username", s.Username)...)
			issues = append(issues, required("source.password", s.Password)...)
		}
		if s.SiteURL != "" && !strings.HasPrefix(strings.ToLower(s.SiteURL), "https://") {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.site_url",
				Message:  "site_url is not https; credentials will be sent in clear text",
			})
		}
	case "local":
		issues = append(issues, required("source.root", s.Root)...)
	case "":
		issues = append(issues, required("source.kind", s.Kind)...)
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q (want sharepoint or local)", s.Kind),
		})
	}

	issues = append(issues, required("source.folder", s.Folder)...)
	issues = append(issues, required("source.file", s.File)...)
	issues = append(issues, required("source.marker", s.Marker)...)

	if s.Marker != "" && s.Marker == s.File {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.marker",
			Message:  "marker and report file must differ",
		})
	}
	if s.Timeout < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.timeout",
			Message:  "timeout must not be negative",
		})
	}
	return issues
}

var knownSinks = map[string]bool{"mssql": true, "postgres": true, "mysql": true, "sqlite": true}

func validateSink(s Sink) []Issue {
	var issues []Issue

	if s.Kind != "" && !knownSinks[s.Kind] {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q (want mssql, postgres, mysql or sqlite)", s.Kind),
		})
	}
	issues = append(issues, required("sink.table", s.Table)...)

	if s.URL != "" {
		if _, err := s.Storage(); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.url",
				Message:  err.Error(),
			})
		}
		if s.Server != "" || s.Database != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "sink.url",
				Message:  "url is set; server and database are ignored",
			})
		}
		return issues
	}

	issues = append(issues, required("sink.kind", s.Kind)...)
	if s.Kind == "sqlite" {
		issues = append(issues, required("sink.database", s.Database)...)
		return issues
	}
	issues = append(issues, required("sink.server", s.Server)...)
	issues = append(issues, required("sink.database", s.Database)...)

	switch s.AuthMode {
	case "sql":
		issues = append(issues, required("sink.user", s.User)...)
		issues = append(issues, required("sink.password", s.Password)...)
	case "windows", "azure":
		if s.Kind != "mssql" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.auth_mode",
				Message:  fmt.Sprintf("auth_mode %q is only supported by mssql", s.AuthMode),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.auth_mode",
			Message:  fmt.Sprintf("unknown auth_mode %q (want sql, windows or azure)", s.AuthMode),
		})
	}
	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.level",
			Message:  fmt.Sprintf("unknown level %q", l.Level),
		})
	}
	switch l.Format {
	case "console", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown format %q (want console or json)", l.Format),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "none", "":
		return nil
	case "prometheus", "pushgateway":
		return required("metrics.pushgateway_url", m.PushgatewayURL)
	case "datadog":
		return required("metrics.datadog_addr", m.DatadogAddr)
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		}}
	}
}
