package pipeline

// State is a node of the run state machine.
type State string

const (
	StateStart         State = "START"
	StateGateChecked   State = "GATE_CHECKED"
	StateFetched       State = "FETCHED"
	StateValidated     State = "VALIDATED"
	StateTransformed   State = "TRANSFORMED"
	StateLoaded        State = "LOADED"
	StateMarkerCleared State = "MARKER_CLEARED"
	StateAborted       State = "ABORTED"
)

// Stage names used in logs, metrics and StageError.
const (
	StageConfig    = "config"
	StageAuth      = "auth"
	StageGate      = "gate"
	StageFetch     = "fetch"
	StageValidate  = "validate"
	StageTransform = "transform"
	StageLoad      = "load"
	StageCleanup   = "cleanup"
)

// Abort reasons.
const (
	ReasonMarkerAbsent   = "marker absent"
	ReasonAuthFailed     = "authentication failed"
	ReasonGateFailed     = "gate check failed"
	ReasonDownloadFailed = "download failed"
	ReasonReadFailed     = "read report failed"
	ReasonSchema         = "schema validation failed"
	ReasonTransform      = "transform failed"
	ReasonWriteFailed    = "write failed"
)
