// Package pipeline runs one daily report transfer: gate check, download,
// column validation, transformation and a single-batch load, followed by
// clearing the marker. Every run ends in MARKER_CLEARED, LOADED (marker
// delete failed) or ABORTED.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"reportetl/internal/docstore"
	"reportetl/internal/gate"
	"reportetl/internal/metrics"
	"reportetl/internal/parser"
	"reportetl/internal/report"
	"reportetl/internal/schema"
	"reportetl/internal/storage"
	"reportetl/internal/transformer"
)

// Config is the per-run input of Run.
type Config struct {
	Job    string
	Folder string
	File   string
	Marker string

	DownloadDir  string
	KeepDownload bool

	// ReferenceDate selects the report day; zero means the run date.
	ReferenceDate time.Time

	Parser parser.Options

	// SinkKind and Table drive the optional DDL bootstrap.
	SinkKind        string
	Table           string
	AutoCreateTable bool
}

// Deps are the collaborators of a run.
type Deps struct {
	// OpenStore authenticates against the Document Store.
	OpenStore func(ctx context.Context) (docstore.Store, error)

	// OpenSink connects to the Tabular Sink. It is called only once the
	// batch is ready, so an aborted run never touches the sink.
	OpenSink func(ctx context.Context) (storage.Repository, error)

	// ParserFor selects the reader for the downloaded file. Nil means
	// parser.ForFile with Config.Parser.
	ParserFor func(name string) (parser.Parser, error)

	// Logger receives one entry per transition. Nil means no logging.
	Logger *zap.Logger

	// Now is the process clock. Nil means time.Now.
	Now func() time.Time
}

// StageReport records one completed or failed stage.
type StageReport struct {
	Stage   string
	State   State
	Rows    int
	Elapsed time.Duration
	Err     error
}

// Outcome summarizes a run.
type Outcome struct {
	State  State
	Reason string
	Err    error

	Stages []StageReport

	RowsRead     int
	RowsAdmitted int
	RowsWritten  int64
	Rejected     map[string]int

	MarkerCleared  bool
	CleanupWarning error

	Fingerprint string
}

// Succeeded reports whether the batch was committed.
func (o Outcome) Succeeded() bool {
	return o.State == StateLoaded || o.State == StateMarkerCleared
}

// ExitCode maps the outcome onto a process exit status: 0 for success and
// for an absent marker, 2 for configuration errors, 1 otherwise.
func (o Outcome) ExitCode() int {
	if o.Err == nil {
		return 0
	}
	if KindOf(o.Err) == KindConfig {
		return 2
	}
	return 1
}

type runner struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
	out  Outcome
}

// Run executes the pipeline once. It never panics on collaborator errors;
// every failure is reported through the returned Outcome.
func Run(ctx context.Context, cfg Config, deps Deps) Outcome {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ParserFor == nil {
		opt := cfg.Parser
		deps.ParserFor = func(name string) (parser.Parser, error) { return parser.ForFile(name, opt) }
	}
	if cfg.Marker == "" {
		cfg.Marker = gate.DefaultMarker
	}

	r := &runner{
		cfg:  cfg,
		deps: deps,
		log:  deps.Logger.With(zap.String("job", cfg.Job)),
		out:  Outcome{State: StateStart},
	}
	r.run(ctx)

	kind := ""
	if r.out.Err != nil {
		kind = string(KindOf(r.out.Err))
	}
	metrics.RecordRun(cfg.Job, string(r.out.State), kind)
	return r.out
}

func (r *runner) run(ctx context.Context) {
	start := r.deps.Now()
	now := start
	ref := r.cfg.ReferenceDate
	if ref.IsZero() {
		ref = now
	}
	r.log.Info("pipeline: run started",
		zap.String("folder", r.cfg.Folder),
		zap.String("file", r.cfg.File),
		zap.String("marker", r.cfg.Marker),
		zap.String("reference_date", ref.Format(time.DateOnly)))

	if r.cfg.Folder == "" || r.cfg.File == "" {
		r.abort(StageConfig, KindConfig, "missing source folder or file", 0,
			errors.New("source folder and file are required"))
		return
	}
	if r.deps.OpenStore == nil || r.deps.OpenSink == nil {
		r.abort(StageConfig, KindConfig, "missing collaborators", 0,
			errors.New("document store and sink openers are required"))
		return
	}

	// START -> GATE_CHECKED
	t := r.deps.Now()
	store, err := r.deps.OpenStore(ctx)
	if err != nil {
		r.abort(StageAuth, KindAuth, ReasonAuthFailed, r.since(t), err)
		return
	}
	r.done(StageAuth, r.out.State, 0, r.since(t))

	t = r.deps.Now()
	proceed, err := gate.CheckAndProceed(ctx, store, r.cfg.Folder, r.cfg.Marker)
	if err != nil {
		r.abort(StageGate, KindGate, ReasonGateFailed, r.since(t), err)
		return
	}
	if !proceed {
		r.out.State = StateAborted
		r.out.Reason = ReasonMarkerAbsent
		r.record(StageGate, 0, r.since(t), nil)
		r.log.Info("pipeline: marker absent; nothing to do",
			zap.String("stage", StageGate),
			zap.String("state", string(StateAborted)),
			zap.Duration("elapsed", r.since(t)))
		return
	}
	r.done(StageGate, StateGateChecked, 0, r.since(t))

	// GATE_CHECKED -> FETCHED
	t = r.deps.Now()
	tbl, err := r.fetch(ctx, store)
	if err != nil {
		reason := ReasonDownloadFailed
		var re *readError
		if errors.As(err, &re) {
			reason = ReasonReadFailed
		}
		r.abort(StageFetch, KindFetch, reason, r.since(t), err)
		return
	}
	r.out.RowsRead = tbl.Len()
	metrics.RecordRows(r.cfg.Job, "read", int64(tbl.Len()))
	r.done(StageFetch, StateFetched, tbl.Len(), r.since(t),
		zap.String("fingerprint", r.out.Fingerprint))

	// FETCHED -> VALIDATED
	t = r.deps.Now()
	tbl, err = schema.Validate(tbl)
	if err != nil {
		r.abort(StageValidate, KindSchema, ReasonSchema, r.since(t), err)
		return
	}
	r.done(StageValidate, StateValidated, tbl.Len(), r.since(t))

	// VALIDATED -> TRANSFORMED
	t = r.deps.Now()
	recs, stats, err := transform(tbl, ref, now)
	if err != nil {
		r.abort(StageTransform, KindTransform, ReasonTransform, r.since(t), err)
		return
	}
	r.out.RowsAdmitted = stats.Admitted
	r.out.Rejected = stats.Rejected
	metrics.RecordRows(r.cfg.Job, "admitted", int64(stats.Admitted))
	reasons := make([]string, 0, len(stats.Rejected))
	for reason := range stats.Rejected {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	rejected := make([]zap.Field, 0, len(reasons))
	for _, reason := range reasons {
		n := stats.Rejected[reason]
		metrics.RecordRows(r.cfg.Job, "rejected_"+reason, int64(n))
		rejected = append(rejected, zap.Int("rejected_"+reason, n))
	}
	r.done(StageTransform, StateTransformed, stats.Admitted, r.since(t), rejected...)

	// TRANSFORMED -> LOADED
	t = r.deps.Now()
	n, err := r.load(ctx, recs)
	if err != nil {
		r.abort(StageLoad, KindWrite, ReasonWriteFailed, r.since(t), err)
		return
	}
	r.out.RowsWritten = n
	metrics.RecordRows(r.cfg.Job, "written", n)
	r.done(StageLoad, StateLoaded, int(n), r.since(t))

	// LOADED -> MARKER_CLEARED
	t = r.deps.Now()
	if err := store.Delete(ctx, r.cfg.Folder, r.cfg.Marker); err != nil {
		warn := &StageError{Kind: KindCleanup, Stage: StageCleanup, Err: err}
		r.out.CleanupWarning = warn
		r.record(StageCleanup, 0, r.since(t), warn)
		r.log.Warn("pipeline: marker not cleared; next run will reload this report",
			zap.String("stage", StageCleanup),
			zap.String("state", string(r.out.State)),
			zap.Duration("elapsed", r.since(t)),
			zap.Error(err))
	} else {
		r.out.MarkerCleared = true
		r.done(StageCleanup, StateMarkerCleared, 0, r.since(t))
	}

	r.log.Info("pipeline: run complete",
		zap.String("state", string(r.out.State)),
		zap.Int("rows_read", r.out.RowsRead),
		zap.Int("rows_admitted", r.out.RowsAdmitted),
		zap.Int64("rows_written", r.out.RowsWritten),
		zap.Bool("marker_cleared", r.out.MarkerCleared),
		zap.Duration("elapsed", r.since(start)))
}

// readError marks a report that was downloaded, or could have been, but
// cannot be read into a table.
type readError struct{ err error }

func (e *readError) Error() string { return "read report: " + e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

// fetch downloads the report and reads it into a table.
func (r *runner) fetch(ctx context.Context, store docstore.Store) (report.Table, error) {
	p, err := r.deps.ParserFor(r.cfg.File)
	if err != nil {
		return report.Table{}, &readError{err}
	}
	dl, err := fetchFile(ctx, store, r.cfg.Folder, r.cfg.File, r.cfg.DownloadDir)
	if err != nil {
		return report.Table{}, err
	}
	r.out.Fingerprint = dl.Fingerprint
	r.log.Debug("pipeline: report downloaded",
		zap.String("path", dl.Path),
		zap.Int64("bytes", dl.Size),
		zap.String("fingerprint", dl.Fingerprint))
	if !r.cfg.KeepDownload {
		defer func() {
			if err := os.Remove(dl.Path); err != nil {
				r.log.Warn("pipeline: remove download", zap.String("path", dl.Path), zap.Error(err))
			}
		}()
	}

	f, err := os.Open(dl.Path)
	if err != nil {
		return report.Table{}, err
	}
	defer f.Close()
	tbl, err := p.Parse(f)
	if err != nil {
		return report.Table{}, &readError{err}
	}
	return tbl, nil
}

// load opens the sink, optionally bootstraps the table and inserts the
// batch. The sink is closed before returning.
func (r *runner) load(ctx context.Context, recs []report.AdmissibleRecord) (int64, error) {
	repo, err := r.deps.OpenSink(ctx)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	if r.cfg.AutoCreateTable {
		if err := storage.EnsureTable(ctx, r.cfg.SinkKind, repo, r.cfg.Table); err != nil {
			return 0, err
		}
	}
	return storage.InsertBatch(ctx, repo, recs)
}

// transform runs the pure transformer. A panic on malformed input is turned
// into an error so the run aborts cleanly.
func transform(tbl report.Table, ref, now time.Time) (recs []report.AdmissibleRecord, stats transformer.Stats, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("transformer panicked: %v", p)
		}
	}()
	recs, stats = transformer.TransformWithStats(tbl, ref, now)
	return recs, stats, nil
}

func (r *runner) since(t time.Time) time.Duration { return r.deps.Now().Sub(t) }

func (r *runner) record(stage string, rows int, d time.Duration, err error) {
	r.out.Stages = append(r.out.Stages, StageReport{
		Stage:   stage,
		State:   r.out.State,
		Rows:    rows,
		Elapsed: d,
		Err:     err,
	})
	metrics.RecordStage(r.cfg.Job, stage, err, d)
}

// done moves to next and logs the completed stage.
func (r *runner) done(stage string, next State, rows int, d time.Duration, extra ...zap.Field) {
	r.out.State = next
	r.record(stage, rows, d, nil)
	fields := append([]zap.Field{
		zap.String("stage", stage),
		zap.String("state", string(next)),
		zap.Int("rows", rows),
		zap.Duration("elapsed", d),
	}, extra...)
	r.log.Info("pipeline: stage complete", fields...)
}

// abort ends the run with a StageError and logs a single error entry.
func (r *runner) abort(stage string, kind Kind, reason string, d time.Duration, err error) {
	se := &StageError{Kind: kind, Stage: stage, Err: err}
	from := r.out.State
	r.out.State = StateAborted
	r.out.Reason = reason
	r.out.Err = se
	r.record(stage, 0, d, se)
	r.log.Error("pipeline: run aborted",
		zap.String("stage", stage),
		zap.String("kind", string(kind)),
		zap.String("from_state", string(from)),
		zap.String("reason", reason),
		zap.Duration("elapsed", d),
		zap.Bool("marker_kept", true),
		zap.Error(err))
}
