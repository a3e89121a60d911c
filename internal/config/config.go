// Package config defines the configuration model of a report run. A run file
// is JSON or YAML (selected by extension) and may be overridden field by field
// with REPORTETL_* environment variables.
//
// Example (trimmed):
//
//	{
//	  "job":    "vencidos-diarios",
//	  "source": { "kind": "sharepoint", "site_url": "https://contoso.sharepoint.com/sites/cartera",
//	              "folder": "Shared Documents/Reportes", "file": "ReporteDiario.xlsx" },
//	  "sink":   { "kind": "mssql", "server": "sql01", "database": "Cartera", "auth_mode": "windows" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when the file leaves a field empty.
const (
	DefaultJob      = "reportetl"
	DefaultMarker   = "runETL.txt"
	DefaultTable    = "dbo.ReporteVencidosDiarios"
	DefaultAuthMode = "sql"
	DefaultTimeout  = 60 * time.Second
)

// Run is the top-level object decoded from a run file.
type Run struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	Source  Source  `json:"source" yaml:"source"`
	Sink    Sink    `json:"sink" yaml:"sink"`
	Log     Log     `json:"log" yaml:"log"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Source locates the report and its marker in the Document Store.
type Source struct {
	// Kind selects the store: "sharepoint" or "local".
	Kind string `json:"kind" yaml:"kind"`

	SiteURL  string `json:"site_url" yaml:"site_url"`
	TenantID string `json:"tenant_id" yaml:"tenant_id"`
	ClientID string `json:"client_id" yaml:"client_id"`

	// ClientSecret selects the client-credentials flow; when empty the
	// username/password flow is used.
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
	Username     string `json:"username" yaml:"username"`
	Password     string `json:"password" yaml:"password"`

	// Root is the base directory of the "local" store.
	Root string `json:"root" yaml:"root"`

	// Folder holds both the report and the marker.
	Folder string `json:"folder" yaml:"folder"`
	File   string `json:"file" yaml:"file"`
	Marker string `json:"marker" yaml:"marker"`

	// DownloadDir receives the fetched report; empty means the OS temp dir.
	DownloadDir  string   `json:"download_dir" yaml:"download_dir"`
	KeepDownload bool     `json:"keep_download" yaml:"keep_download"`
	Timeout      Duration `json:"timeout" yaml:"timeout"`

	// Sheet selects a worksheet by name; empty means the first one.
	Sheet string `json:"sheet" yaml:"sheet"`
}

// Sink configures the Tabular Sink.
type Sink struct {
	// Kind selects the backend: mssql, postgres, mysql or sqlite. It may be
	// left empty when URL is set.
	Kind string `json:"kind" yaml:"kind"`

	// URL is an optional database URL (sqlserver://, pg://, sq:...) that
	// replaces the discrete connection fields.
	URL string `json:"url" yaml:"url"`

	Server   string `json:"server" yaml:"server"`
	Database string `json:"database" yaml:"database"`
	AuthMode string `json:"auth_mode" yaml:"auth_mode"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`

	Table           string `json:"table" yaml:"table"`
	AutoCreateTable bool   `json:"auto_create_table" yaml:"auto_create_table"`
}

// Log configures the process logger.
type Log struct {
	Level     string `json:"level" yaml:"level"`
	Format    string `json:"format" yaml:"format"`
	ErrorFile string `json:"error_file" yaml:"error_file"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Duration is a time.Duration that decodes from "90s"-style strings or from
// a number of seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string or number: %w", err)
	}
	return d.set(s)
}

// UnmarshalYAML accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var secs float64
	if n.Tag == "!!int" || n.Tag == "!!float" {
		if err := n.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

// Load reads path, decodes it as YAML for .yaml/.yml and JSON otherwise,
// applies REPORTETL_* overrides from the environment and fills defaults.
func Load(path string) (Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("read config: %w", err)
	}
	r, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return Run{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := r.ApplyEnv(os.LookupEnv); err != nil {
		return Run{}, err
	}
	r.ApplyDefaults()
	return r, nil
}

// Decode parses b according to ext (".yaml", ".yml" or anything else for
// JSON). Unknown fields are rejected so that typos surface early.
func Decode(b []byte, ext string) (Run, error) {
	var r Run
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&r); err != nil {
			return Run{}, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&r); err != nil {
			return Run{}, err
		}
	}
	return r, nil
}

// ApplyDefaults fills fields left empty by the file and environment.
func (r *Run) ApplyDefaults() {
	if r.Job == "" {
		r.Job = DefaultJob
	}
	if r.Source.Marker == "" {
		r.Source.Marker = DefaultMarker
	}
	if r.Source.Timeout == 0 {
		r.Source.Timeout = Duration(DefaultTimeout)
	}
	if r.Sink.Table == "" {
		r.Sink.Table = DefaultTable
	}
	if r.Sink.AuthMode == "" && r.Sink.URL == "" {
		r.Sink.AuthMode = DefaultAuthMode
	}
	if r.Log.Level == "" {
		r.Log.Level = "info"
	}
	if r.Log.Format == "" {
		r.Log.Format = "console"
	}
	if r.Metrics.Backend == "" {
		r.Metrics.Backend = "none"
	}
}
