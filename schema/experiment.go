package schema

// Experiment lifecycle stages reported by the tracking server.
const (
	LifecycleStageActive  = "active"
	LifecycleStageDeleted = "deleted"
)

// Experiment is a single experiment record from the tracking server.
type Experiment struct {
	// ExperimentID uniquely identifies the experiment.
	ExperimentID string `json:"experiment_id"`

	// Name is the human readable experiment name. Unique per server.
	Name string `json:"name"`

	// ArtifactLocation is the root URI under which run artifacts are stored.
	ArtifactLocation string `json:"artifact_location,omitempty"`

	// LifecycleStage is "active" or "deleted".
	LifecycleStage string `json:"lifecycle_stage,omitempty"`

	LastUpdateTime int64 `json:"last_update_time,omitempty"`
	CreationTime   int64 `json:"creation_time,omitempty"`

	Tags []ExperimentTag `json:"tags,omitempty"`
}

// ExperimentTag is a key/value tag attached to an experiment.
type ExperimentTag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}
