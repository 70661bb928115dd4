package schema

// Model version stages used by the registry server.
const (
	StageNone       = "None"
	StageStaging    = "Staging"
	StageProduction = "Production"
	StageArchived   = "Archived"
)

// Model version statuses reported by the registry server.
const (
	ModelVersionStatusPendingRegistration = "PENDING_REGISTRATION"
	ModelVersionStatusFailedRegistration  = "FAILED_REGISTRATION"
	ModelVersionStatusReady               = "READY"
)

// ModelVersion is a single version of a registered model.
type ModelVersion struct {
	// Name of the registered model this version belongs to.
	Name string `json:"name"`

	// Version is the server-assigned version number. The registry reports it
	// as a string.
	Version string `json:"version"`

	CreationTimestamp    int64  `json:"creation_timestamp,omitempty"`
	LastUpdatedTimestamp int64  `json:"last_updated_timestamp,omitempty"`
	UserID               string `json:"user_id,omitempty"`

	// CurrentStage is one of the Stage* constants.
	CurrentStage string `json:"current_stage,omitempty"`

	Description string `json:"description,omitempty"`

	// Source is the URI of the run artifacts this version was registered from.
	Source string `json:"source,omitempty"`

	// RunID of the run that produced the model, when registered from a run.
	RunID string `json:"run_id,omitempty"`

	Status        string            `json:"status,omitempty"`
	StatusMessage string            `json:"status_message,omitempty"`
	Tags          []ModelVersionTag `json:"tags,omitempty"`
	RunLink       string            `json:"run_link,omitempty"`
}

// ModelVersionTag is a key/value tag attached to a model version.
type ModelVersionTag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// RegisteredModel is a named model in the registry together with its latest
// version per stage.
type RegisteredModel struct {
	Name                 string `json:"name"`
	CreationTimestamp    int64  `json:"creation_timestamp,omitempty"`
	LastUpdatedTimestamp int64  `json:"last_updated_timestamp,omitempty"`
	UserID               string `json:"user_id,omitempty"`
	Description          string `json:"description,omitempty"`

	// LatestVersions holds the newest version for each stage that has one.
	LatestVersions []ModelVersion `json:"latest_versions,omitempty"`

	Tags []RegisteredModelTag `json:"tags,omitempty"`
}

// RegisteredModelTag is a key/value tag attached to a registered model.
type RegisteredModelTag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}
