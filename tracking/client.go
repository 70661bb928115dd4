// Package tracking is a convenience layer over the MLflow REST client: it
// flattens paginated search results into single slices and addresses
// registry models through models:/ URIs.
package tracking

import (
	"context"
	"fmt"

	"github.com/gate4ai/mlflow-tracking/client"
	"github.com/gate4ai/mlflow-tracking/config"
	"github.com/gate4ai/mlflow-tracking/schema"
	"go.uber.org/zap"
)

// API is the page-level search surface the consolidating client rides on.
// *client.RestClient implements it; tests substitute fakes.
type API interface {
	SearchExperiments(ctx context.Context, opts client.SearchExperimentsOptions) (*client.ExperimentsPage, error)
	SearchRuns(ctx context.Context, opts client.SearchRunsOptions) (*client.RunsPage, error)
	SearchModelVersions(ctx context.Context, opts client.SearchModelVersionsOptions) (*client.ModelVersionsPage, error)
	SearchRegisteredModels(ctx context.Context, opts client.SearchRegisteredModelsOptions) (*client.RegisteredModelsPage, error)
}

var _ API = (*client.RestClient)(nil)

// Client consolidates paged tracking and registry searches and loads
// registry models. Each call owns its own pagination state, so a Client is
// safe for concurrent use.
type Client struct {
	api      API
	raw      *client.RestClient
	loader   Loader
	logger   *zap.Logger
	maxPages int
}

// ClientOption customizes a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient client.HTTPDoer
	loader     Loader
	maxPages   *int
}

// WithHTTPClient replaces the HTTP client used by the underlying REST
// client.
func WithHTTPClient(doer client.HTTPDoer) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = doer
	}
}

// WithLoader replaces the model loading capability.
func WithLoader(loader Loader) ClientOption {
	return func(o *clientOptions) {
		o.loader = loader
	}
}

// WithMaxPages overrides the configured page bound for all searches.
// Zero means unbounded.
func WithMaxPages(n int) ClientOption {
	return func(o *clientOptions) {
		o.maxPages = &n
	}
}

// New creates a Client for the configured tracking/registry server pair.
// The config is validated first: missing endpoint addresses fail here,
// before any network call. A nil logger falls back to zap's production
// logger.
func New(cfg *config.Config, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options clientOptions
	for _, opt := range opts {
		opt(&options)
	}

	var restOpts []client.Option
	if options.httpClient != nil {
		restOpts = append(restOpts, client.WithHTTPClient(options.httpClient))
	}
	raw := client.NewRestClient(cfg.TrackingURI, cfg.RegistryURI, logger, restOpts...)

	c := &Client{
		api:      raw,
		raw:      raw,
		logger:   logger,
		maxPages: cfg.MaxPages,
	}
	if options.maxPages != nil {
		c.maxPages = *options.maxPages
	}
	c.loader = options.loader
	if c.loader == nil {
		c.loader = &registryLoader{raw: raw, logger: logger}
	}
	return c, nil
}

// GetExperiments consumes the paged experiment search and returns the
// consolidated list. filter is a server-side filter expression; empty means
// all experiments.
func (c *Client) GetExperiments(ctx context.Context, filter string) ([]schema.Experiment, error) {
	logger := c.logger.With(zap.String("operation", "GetExperiments"))

	fetch := func(ctx context.Context, pageToken *string) (Page[schema.Experiment], error) {
		page, err := c.api.SearchExperiments(ctx, client.SearchExperimentsOptions{
			Filter:    filter,
			PageToken: pageToken,
		})
		if err != nil {
			return Page[schema.Experiment]{}, err
		}
		return Page[schema.Experiment]{Items: page.Experiments, NextPageToken: page.NextPageToken}, nil
	}

	experiments, err := CollectPages(ctx, fetch, HaltOnAbsentToken, c.maxPages)
	if err != nil {
		return nil, err
	}
	logger.Debug("Consolidated experiments", zap.Int("count", len(experiments)))
	return experiments, nil
}

// GetExperimentRuns consumes the paged run search for one experiment and
// returns the consolidated list. The experiment id scopes every page
// request, continuations included.
func (c *Client) GetExperimentRuns(ctx context.Context, experimentID, filter string) ([]schema.Run, error) {
	logger := c.logger.With(
		zap.String("operation", "GetExperimentRuns"),
		zap.String("experimentID", experimentID),
	)

	fetch := func(ctx context.Context, pageToken *string) (Page[schema.Run], error) {
		page, err := c.api.SearchRuns(ctx, client.SearchRunsOptions{
			ExperimentIDs: []string{experimentID},
			Filter:        filter,
			PageToken:     pageToken,
		})
		if err != nil {
			return Page[schema.Run]{}, err
		}
		return Page[schema.Run]{Items: page.Runs, NextPageToken: page.NextPageToken}, nil
	}

	runs, err := CollectPages(ctx, fetch, HaltOnAbsentToken, c.maxPages)
	if err != nil {
		return nil, err
	}
	logger.Debug("Consolidated runs", zap.Int("count", len(runs)))
	return runs, nil
}

// GetModelVersions consumes the paged model version search for one model
// name and returns the consolidated list.
func (c *Client) GetModelVersions(ctx context.Context, modelName string) ([]schema.ModelVersion, error) {
	logger := c.logger.With(
		zap.String("operation", "GetModelVersions"),
		zap.String("model", modelName),
	)

	fetch := func(ctx context.Context, pageToken *string) (Page[schema.ModelVersion], error) {
		page, err := c.api.SearchModelVersions(ctx, client.SearchModelVersionsOptions{
			Filter:    fmt.Sprintf("name='%s'", modelName),
			PageToken: pageToken,
		})
		if err != nil {
			return Page[schema.ModelVersion]{}, err
		}
		return Page[schema.ModelVersion]{Items: page.ModelVersions, NextPageToken: page.NextPageToken}, nil
	}

	versions, err := CollectPages(ctx, fetch, HaltOnAbsentToken, c.maxPages)
	if err != nil {
		return nil, err
	}
	logger.Debug("Consolidated model versions", zap.Int("count", len(versions)))
	return versions, nil
}

// GetRegisteredModels consumes the paged registered model search and returns
// the consolidated list. This endpoint signals end-of-pages with an absent
// OR empty token, so it pages under the absent-or-empty policy.
func (c *Client) GetRegisteredModels(ctx context.Context, filter string) ([]schema.RegisteredModel, error) {
	logger := c.logger.With(zap.String("operation", "GetRegisteredModels"))

	fetch := func(ctx context.Context, pageToken *string) (Page[schema.RegisteredModel], error) {
		page, err := c.api.SearchRegisteredModels(ctx, client.SearchRegisteredModelsOptions{
			Filter:    filter,
			PageToken: pageToken,
		})
		if err != nil {
			return Page[schema.RegisteredModel]{}, err
		}
		return Page[schema.RegisteredModel]{Items: page.RegisteredModels, NextPageToken: page.NextPageToken}, nil
	}

	models, err := CollectPages(ctx, fetch, HaltOnAbsentOrEmptyToken, c.maxPages)
	if err != nil {
		return nil, err
	}
	logger.Debug("Consolidated registered models", zap.Int("count", len(models)))
	return models, nil
}

// LoadModelByVersion resolves an exact model version through the registry.
func (c *Client) LoadModelByVersion(ctx context.Context, name string, version int) (*Model, error) {
	return c.loader.Load(ctx, ModelURIForVersion(name, version))
}

// LoadModelByStage resolves the latest model version in a stage through the
// registry.
func (c *Client) LoadModelByStage(ctx context.Context, name, stage string) (*Model, error) {
	return c.loader.Load(ctx, ModelURIForStage(name, stage))
}

// LoadModelByURI resolves a complete models:/ URI through the registry.
func (c *Client) LoadModelByURI(ctx context.Context, modelURI string) (*Model, error) {
	return c.loader.Load(ctx, modelURI)
}
