package client

import (
	"context"

	"github.com/gate4ai/mlflow-tracking/schema"
	"go.uber.org/zap"
)

// SearchRunsOptions are the parameters of a single runs/search request.
type SearchRunsOptions struct {
	// ExperimentIDs scopes the search. At least one id is required by the
	// server.
	ExperimentIDs []string

	// Filter is a server-side filter expression, e.g. "metrics.rmse < 1".
	// Empty means no filtering.
	Filter string

	// MaxResults caps the page size. Zero uses the server default.
	MaxResults int32

	// OrderBy lists ordering clauses, e.g. "metrics.rmse ASC".
	OrderBy []string

	// RunViewType selects active/deleted/all runs. Empty uses the server
	// default.
	RunViewType string

	// PageToken resumes a previous search. Nil requests the first page.
	PageToken *string
}

// RunsPage is one page of run search results.
type RunsPage struct {
	Runs []schema.Run

	// NextPageToken is nil when the server reports no further pages.
	NextPageToken *string
}

type searchRunsRequest struct {
	ExperimentIDs []string `json:"experiment_ids"`
	Filter        string   `json:"filter,omitempty"`
	RunViewType   string   `json:"run_view_type,omitempty"`
	MaxResults    int32    `json:"max_results,omitempty"`
	OrderBy       []string `json:"order_by,omitempty"`
	PageToken     *string  `json:"page_token,omitempty"`
}

type searchRunsResponse struct {
	Runs          []schema.Run `json:"runs"`
	NextPageToken *string      `json:"next_page_token"`
}

// SearchRuns fetches a single page of runs from the tracking server.
func (c *RestClient) SearchRuns(ctx context.Context, opts SearchRunsOptions) (*RunsPage, error) {
	var resp searchRunsResponse
	err := c.post(ctx, c.trackingURL, "/runs/search", &searchRunsRequest{
		ExperimentIDs: opts.ExperimentIDs,
		Filter:        opts.Filter,
		RunViewType:   opts.RunViewType,
		MaxResults:    opts.MaxResults,
		OrderBy:       opts.OrderBy,
		PageToken:     opts.PageToken,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched runs page",
		zap.Strings("experimentIDs", opts.ExperimentIDs),
		zap.Int("count", len(resp.Runs)),
		zap.Bool("hasNext", resp.NextPageToken != nil),
	)
	return &RunsPage{
		Runs:          resp.Runs,
		NextPageToken: resp.NextPageToken,
	}, nil
}

// GetRun fetches a single run by id from the tracking server.
func (c *RestClient) GetRun(ctx context.Context, runID string) (*schema.Run, error) {
	var resp struct {
		Run schema.Run `json:"run"`
	}
	query := pageQuery("", 0, nil, nil)
	query.Set("run_id", runID)
	if err := c.get(ctx, c.trackingURL, "/runs/get", query, &resp); err != nil {
		return nil, err
	}
	return &resp.Run, nil
}
