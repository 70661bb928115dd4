package client

import (
	"context"

	"github.com/gate4ai/mlflow-tracking/schema"
	"go.uber.org/zap"
)

// SearchModelVersionsOptions are the parameters of a single
// model-versions/search request.
type SearchModelVersionsOptions struct {
	// Filter is a server-side filter expression, e.g. "name='my-model'".
	// Empty means no filtering.
	Filter string

	// MaxResults caps the page size. Zero uses the server default.
	MaxResults int64

	// OrderBy lists ordering clauses.
	OrderBy []string

	// PageToken resumes a previous search. Nil requests the first page.
	PageToken *string
}

// ModelVersionsPage is one page of model version search results.
type ModelVersionsPage struct {
	ModelVersions []schema.ModelVersion

	// NextPageToken is nil when the server reports no further pages.
	NextPageToken *string
}

type searchModelVersionsResponse struct {
	ModelVersions []schema.ModelVersion `json:"model_versions"`
	NextPageToken *string               `json:"next_page_token"`
}

// SearchModelVersions fetches a single page of model versions from the
// registry server.
func (c *RestClient) SearchModelVersions(ctx context.Context, opts SearchModelVersionsOptions) (*ModelVersionsPage, error) {
	var resp searchModelVersionsResponse
	query := pageQuery(opts.Filter, opts.MaxResults, opts.OrderBy, opts.PageToken)
	if err := c.get(ctx, c.registryURL, "/model-versions/search", query, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched model versions page",
		zap.Int("count", len(resp.ModelVersions)),
		zap.Bool("hasNext", resp.NextPageToken != nil),
	)
	return &ModelVersionsPage{
		ModelVersions: resp.ModelVersions,
		NextPageToken: resp.NextPageToken,
	}, nil
}

// SearchRegisteredModelsOptions are the parameters of a single
// registered-models/search request.
type SearchRegisteredModelsOptions struct {
	// Filter is a server-side filter expression, e.g. "name LIKE 'prod-%'".
	// Empty means no filtering.
	Filter string

	// MaxResults caps the page size. Zero uses the server default.
	MaxResults int64

	// OrderBy lists ordering clauses.
	OrderBy []string

	// PageToken resumes a previous search. Nil requests the first page.
	PageToken *string
}

// RegisteredModelsPage is one page of registered model search results.
//
// This endpoint reports exhaustion inconsistently: the token may be absent
// or it may be a literal empty string. Callers consolidating pages must
// treat both as end-of-pages.
type RegisteredModelsPage struct {
	RegisteredModels []schema.RegisteredModel

	// NextPageToken is nil or empty when the server reports no further pages.
	NextPageToken *string
}

type searchRegisteredModelsResponse struct {
	RegisteredModels []schema.RegisteredModel `json:"registered_models"`
	NextPageToken    *string                  `json:"next_page_token"`
}

// SearchRegisteredModels fetches a single page of registered models from the
// registry server.
func (c *RestClient) SearchRegisteredModels(ctx context.Context, opts SearchRegisteredModelsOptions) (*RegisteredModelsPage, error) {
	var resp searchRegisteredModelsResponse
	query := pageQuery(opts.Filter, opts.MaxResults, opts.OrderBy, opts.PageToken)
	if err := c.get(ctx, c.registryURL, "/registered-models/search", query, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched registered models page",
		zap.Int("count", len(resp.RegisteredModels)),
		zap.Bool("hasNext", resp.NextPageToken != nil),
	)
	return &RegisteredModelsPage{
		RegisteredModels: resp.RegisteredModels,
		NextPageToken:    resp.NextPageToken,
	}, nil
}

// GetModelVersion fetches a single model version by name and version number
// from the registry server.
func (c *RestClient) GetModelVersion(ctx context.Context, name, version string) (*schema.ModelVersion, error) {
	var resp struct {
		ModelVersion schema.ModelVersion `json:"model_version"`
	}
	query := pageQuery("", 0, nil, nil)
	query.Set("name", name)
	query.Set("version", version)
	if err := c.get(ctx, c.registryURL, "/model-versions/get", query, &resp); err != nil {
		return nil, err
	}
	return &resp.ModelVersion, nil
}

type getLatestVersionsRequest struct {
	Name   string   `json:"name"`
	Stages []string `json:"stages,omitempty"`
}

// GetLatestVersions fetches the newest model version per requested stage
// from the registry server. With no stages it returns the newest version for
// every stage that has one.
func (c *RestClient) GetLatestVersions(ctx context.Context, name string, stages []string) ([]schema.ModelVersion, error) {
	var resp struct {
		ModelVersions []schema.ModelVersion `json:"model_versions"`
	}
	err := c.post(ctx, c.registryURL, "/registered-models/get-latest-versions", &getLatestVersionsRequest{
		Name:   name,
		Stages: stages,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ModelVersions, nil
}

// GetModelVersionDownloadURI resolves the artifact download URI for a model
// version.
func (c *RestClient) GetModelVersionDownloadURI(ctx context.Context, name, version string) (string, error) {
	var resp struct {
		ArtifactURI string `json:"artifact_uri"`
	}
	query := pageQuery("", 0, nil, nil)
	query.Set("name", name)
	query.Set("version", version)
	if err := c.get(ctx, c.registryURL, "/model-versions/get-download-uri", query, &resp); err != nil {
		return "", err
	}
	return resp.ArtifactURI, nil
}
