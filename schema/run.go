package schema

// Run statuses reported by the tracking server.
const (
	RunStatusRunning   = "RUNNING"
	RunStatusScheduled = "SCHEDULED"
	RunStatusFinished  = "FINISHED"
	RunStatusFailed    = "FAILED"
	RunStatusKilled    = "KILLED"
)

// Run is a single tracked run, split into metadata and logged data the way
// the tracking server reports it.
type Run struct {
	Info RunInfo `json:"info"`
	Data RunData `json:"data"`
}

// RunInfo is the metadata portion of a run.
type RunInfo struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// RunUUID is the deprecated alias of RunID still populated by servers.
	RunUUID string `json:"run_uuid,omitempty"`

	RunName      string `json:"run_name,omitempty"`
	ExperimentID string `json:"experiment_id"`
	UserID       string `json:"user_id,omitempty"`
	Status       string `json:"status,omitempty"`
	StartTime    int64  `json:"start_time,omitempty"`
	EndTime      int64  `json:"end_time,omitempty"`

	// ArtifactURI is the root URI of the run's artifact directory.
	ArtifactURI string `json:"artifact_uri,omitempty"`

	LifecycleStage string `json:"lifecycle_stage,omitempty"`
}

// RunData holds everything logged against a run.
type RunData struct {
	Metrics []Metric `json:"metrics,omitempty"`
	Params  []Param  `json:"params,omitempty"`
	Tags    []RunTag `json:"tags,omitempty"`
}

// Metric is a logged metric value at a timestamp/step.
type Metric struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Step      int64   `json:"step,omitempty"`
}

// Param is a logged run parameter.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RunTag is a key/value tag attached to a run.
type RunTag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}
