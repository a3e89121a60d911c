package config

import (
	"fmt"
	"strconv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REPORTETL_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields with REPORTETL_* variables, e.g.
// REPORTETL_SOURCE_PASSWORD or REPORTETL_SINK_URL. A set but empty variable
// clears the field.
func (r *Run) ApplyEnv(lookup LookupFunc) error {
	str := map[string]*string{
		"JOB":                     &r.Job,
		"SOURCE_KIND":             &r.Source.Kind,
		"SOURCE_SITE_URL":         &r.Source.SiteURL,
		"SOURCE_TENANT_ID":        &r.Source.TenantID,
		"SOURCE_CLIENT_ID":        &r.Source.ClientID,
		"SOURCE_CLIENT_SECRET":    &r.Source.ClientSecret,
		"SOURCE_USERNAME":         &r.Source.Username,
		"SOURCE_PASSWORD":         &r.Source.Password,
		"SOURCE_ROOT":             &r.Source.Root,
		"SOURCE_FOLDER":           &r.Source.Folder,
		"SOURCE_FILE":             &r.Source.File,
		"SOURCE_MARKER":           &r.Source.Marker,
		"SOURCE_DOWNLOAD_DIR":     &r.Source.DownloadDir,
		"SOURCE_SHEET":            &r.Source.Sheet,
		"SINK_KIND":               &r.Sink.Kind,
		"SINK_URL":                &r.Sink.URL,
		"SINK_SERVER":             &r.Sink.Server,
		"SINK_DATABASE":           &r.Sink.Database,
		"SINK_AUTH_MODE":          &r.Sink.AuthMode,
		"SINK_USER":               &r.Sink.User,
		"SINK_PASSWORD":           &r.Sink.Password,
		"SINK_TABLE":              &r.Sink.Table,
		"LOG_LEVEL":               &r.Log.Level,
		"LOG_FORMAT":              &r.Log.Format,
		"LOG_ERROR_FILE":          &r.Log.ErrorFile,
		"METRICS_BACKEND":         &r.Metrics.Backend,
		"METRICS_PUSHGATEWAY_URL": &r.Metrics.PushgatewayURL,
		"METRICS_DATADOG_ADDR":    &r.Metrics.DatadogAddr,
	}
	for k, p := range str {
		if v, ok := lookup(EnvPrefix + k); ok {
			*p = v
		}
	}

	bools := map[string]*bool{
		"SOURCE_KEEP_DOWNLOAD":   &r.Source.KeepDownload,
		"SINK_AUTO_CREATE_TABLE": &r.Sink.AutoCreateTable,
	}
	for k, p := range bools {
		v, ok := lookup(EnvPrefix + k)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, k, err)
		}
		*p = b
	}

	if v, ok := lookup(EnvPrefix + "SOURCE_TIMEOUT"); ok {
		if err := r.Source.Timeout.set(v); err != nil {
			return fmt.Errorf("env %sSOURCE_TIMEOUT: %w", EnvPrefix, err)
		}
	}
	return nil
}
