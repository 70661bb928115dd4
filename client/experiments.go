package client

import (
	"context"

	"github.com/gate4ai/mlflow-tracking/schema"
	"go.uber.org/zap"
)

// View types accepted by the search endpoints.
const (
	ViewActiveOnly  = "ACTIVE_ONLY"
	ViewDeletedOnly = "DELETED_ONLY"
	ViewAll         = "ALL"
)

// SearchExperimentsOptions are the parameters of a single experiments/search
// request.
type SearchExperimentsOptions struct {
	// Filter is a server-side filter expression, e.g. "name LIKE 'nlp-%'".
	// Empty means no filtering.
	Filter string

	// MaxResults caps the page size. Zero uses the server default.
	MaxResults int64

	// OrderBy lists ordering clauses, e.g. "creation_time DESC".
	OrderBy []string

	// ViewType selects active/deleted/all experiments. Empty uses the server
	// default.
	ViewType string

	// PageToken resumes a previous search. Nil requests the first page.
	PageToken *string
}

// ExperimentsPage is one page of experiment search results.
type ExperimentsPage struct {
	Experiments []schema.Experiment

	// NextPageToken is nil when the server reports no further pages.
	NextPageToken *string
}

type searchExperimentsRequest struct {
	MaxResults int64    `json:"max_results,omitempty"`
	PageToken  *string  `json:"page_token,omitempty"`
	Filter     string   `json:"filter,omitempty"`
	OrderBy    []string `json:"order_by,omitempty"`
	ViewType   string   `json:"view_type,omitempty"`
}

type searchExperimentsResponse struct {
	Experiments   []schema.Experiment `json:"experiments"`
	NextPageToken *string             `json:"next_page_token"`
}

// SearchExperiments fetches a single page of experiments from the tracking
// server.
func (c *RestClient) SearchExperiments(ctx context.Context, opts SearchExperimentsOptions) (*ExperimentsPage, error) {
	var resp searchExperimentsResponse
	err := c.post(ctx, c.trackingURL, "/experiments/search", &searchExperimentsRequest{
		MaxResults: opts.MaxResults,
		PageToken:  opts.PageToken,
		Filter:     opts.Filter,
		OrderBy:    opts.OrderBy,
		ViewType:   opts.ViewType,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched experiments page",
		zap.Int("count", len(resp.Experiments)),
		zap.Bool("hasNext", resp.NextPageToken != nil),
	)
	return &ExperimentsPage{
		Experiments:   resp.Experiments,
		NextPageToken: resp.NextPageToken,
	}, nil
}

// GetExperiment fetches a single experiment by id from the tracking server.
func (c *RestClient) GetExperiment(ctx context.Context, experimentID string) (*schema.Experiment, error) {
	var resp struct {
		Experiment schema.Experiment `json:"experiment"`
	}
	query := pageQuery("", 0, nil, nil)
	query.Set("experiment_id", experimentID)
	if err := c.get(ctx, c.trackingURL, "/experiments/get", query, &resp); err != nil {
		return nil, err
	}
	return &resp.Experiment, nil
}
