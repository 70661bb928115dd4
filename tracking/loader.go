package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/gate4ai/mlflow-tracking/client"
	"github.com/gate4ai/mlflow-tracking/schema"
	"go.uber.org/zap"
)

// ErrNoVersionInStage indicates a stage selector matched no model version.
var ErrNoVersionInStage = errors.New("tracking: no model version in stage")

// Loader is the model loading capability: it turns a models:/ URI into a
// resolved Model. The default implementation resolves through the registry
// server; callers with their own artifact plumbing can inject a
// replacement via WithLoader.
type Loader interface {
	Load(ctx context.Context, modelURI string) (*Model, error)
}

// Model is a registry model version resolved for loading.
type Model struct {
	// Name of the registered model.
	Name string

	// Version is the resolved exact version, even when the model was
	// addressed by stage.
	Version string

	// Stage is the version's current stage.
	Stage string

	// RunID of the producing run, when the version was registered from one.
	RunID string

	// Source is the artifact URI the version was registered from.
	Source string

	// DownloadURI is where the version's artifacts can be fetched from, as
	// reported by the registry.
	DownloadURI string
}

// registryLoader resolves models:/ URIs against the registry server. A
// numeric selector addresses that exact version; anything else is treated
// as a stage name and resolved to the newest version in that stage.
type registryLoader struct {
	raw    *client.RestClient
	logger *zap.Logger
}

var _ Loader = (*registryLoader)(nil)

func (l *registryLoader) Load(ctx context.Context, modelURI string) (*Model, error) {
	logger := l.logger.With(
		zap.String("operation", "LoadModel"),
		zap.String("uri", modelURI),
	)

	name, selector, err := ParseModelURI(modelURI)
	if err != nil {
		return nil, err
	}

	version, err := l.resolve(ctx, name, selector)
	if err != nil {
		logger.Error("Failed to resolve model version", zap.Error(err))
		return nil, err
	}

	downloadURI, err := l.raw.GetModelVersionDownloadURI(ctx, name, version.Version)
	if err != nil {
		logger.Error("Failed to resolve download URI", zap.Error(err))
		return nil, err
	}

	logger.Debug("Resolved model",
		zap.String("version", version.Version),
		zap.String("stage", version.CurrentStage),
	)
	return &Model{
		Name:        version.Name,
		Version:     version.Version,
		Stage:       version.CurrentStage,
		RunID:       version.RunID,
		Source:      version.Source,
		DownloadURI: downloadURI,
	}, nil
}

func (l *registryLoader) resolve(ctx context.Context, name, selector string) (*schema.ModelVersion, error) {
	if isVersionSelector(selector) {
		return l.raw.GetModelVersion(ctx, name, selector)
	}

	versions, err := l.raw.GetLatestVersions(ctx, name, []string{selector})
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoVersionInStage, name, selector)
	}
	return &versions[0], nil
}
