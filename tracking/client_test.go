package tracking_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gate4ai/mlflow-tracking/client"
	"github.com/gate4ai/mlflow-tracking/config"
	"github.com/gate4ai/mlflow-tracking/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *tracking.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{TrackingURI: srv.URL, RegistryURI: srv.URL}
	sdk, err := tracking.New(cfg, zap.NewNop())
	require.NoError(t, err)
	return sdk
}

func TestGetExperiments_ConsolidatesPages(t *testing.T) {
	var gotTokens []*string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/experiments/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req struct {
			PageToken *string `json:"page_token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTokens = append(gotTokens, req.PageToken)

		if req.PageToken == nil {
			fmt.Fprint(w, `{"experiments":[{"experiment_id":"1","name":"first"}],"next_page_token":"page-2"}`)
			return
		}
		fmt.Fprint(w, `{"experiments":[{"experiment_id":"2","name":"second"}]}`)
	})

	sdk := newTestClient(t, mux)
	experiments, err := sdk.GetExperiments(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, experiments, 2)
	assert.Equal(t, "first", experiments[0].Name)
	assert.Equal(t, "second", experiments[1].Name)

	require.Len(t, gotTokens, 2)
	assert.Nil(t, gotTokens[0])
	require.NotNil(t, gotTokens[1])
	assert.Equal(t, "page-2", *gotTokens[1])
}

func TestGetExperimentRuns_ScopesEveryPageRequest(t *testing.T) {
	var gotExperimentIDs [][]string
	var gotFilters []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/runs/search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExperimentIDs []string `json:"experiment_ids"`
			Filter        string   `json:"filter"`
			PageToken     *string  `json:"page_token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotExperimentIDs = append(gotExperimentIDs, req.ExperimentIDs)
		gotFilters = append(gotFilters, req.Filter)

		if req.PageToken == nil {
			fmt.Fprint(w, `{"runs":[{"info":{"run_id":"r1","experiment_id":"1"}}],"next_page_token":"more"}`)
			return
		}
		fmt.Fprint(w, `{"runs":[{"info":{"run_id":"r2","experiment_id":"1"}}]}`)
	})

	sdk := newTestClient(t, mux)
	runs, err := sdk.GetExperimentRuns(context.Background(), "1", "metrics.rmse < 1")
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, "r1", runs[0].Info.RunID)
	assert.Equal(t, "r2", runs[1].Info.RunID)

	// The scope id and filter must ride along on the continuation request too.
	require.Len(t, gotExperimentIDs, 2)
	for _, ids := range gotExperimentIDs {
		assert.Equal(t, []string{"1"}, ids)
	}
	for _, filter := range gotFilters {
		assert.Equal(t, "metrics.rmse < 1", filter)
	}
}

func TestGetModelVersions_FiltersByName(t *testing.T) {
	var gotFilters []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/model-versions/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		gotFilters = append(gotFilters, r.URL.Query().Get("filter"))

		if r.URL.Query().Get("page_token") == "" {
			fmt.Fprint(w, `{"model_versions":[{"name":"m","version":"1"}],"next_page_token":"next"}`)
			return
		}
		fmt.Fprint(w, `{"model_versions":[{"name":"m","version":"2"}]}`)
	})

	sdk := newTestClient(t, mux)
	versions, err := sdk.GetModelVersions(context.Background(), "m")
	require.NoError(t, err)

	require.Len(t, versions, 2)
	assert.Equal(t, "1", versions[0].Version)
	assert.Equal(t, "2", versions[1].Version)
	for _, filter := range gotFilters {
		assert.Equal(t, "name='m'", filter)
	}
}

func TestGetRegisteredModels_EmptyTokenEndsSearch(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/registered-models/search", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"registered_models":[{"name":"m1"}],"next_page_token":""}`)
	})

	sdk := newTestClient(t, mux)
	models, err := sdk.GetRegisteredModels(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, models, 1)
	assert.Equal(t, "m1", models[0].Name)
	assert.Equal(t, 1, calls, "an empty token from this endpoint means no more pages")
}

func TestGetExperiments_PropagatesServerError(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/experiments/search", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"experiments":[{"experiment_id":"1","name":"first"}],"next_page_token":"t"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error_code":"INTERNAL_ERROR","message":"boom"}`)
	})

	sdk := newTestClient(t, mux)
	experiments, err := sdk.GetExperiments(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, experiments, "a failed page must discard everything fetched before it")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestNew_FailsFastWithoutEndpoints(t *testing.T) {
	_, err := tracking.New(&config.Config{TrackingURI: "http://localhost:5000"}, zap.NewNop())
	require.ErrorIs(t, err, config.ErrMissingVariable)

	_, err = tracking.New(&config.Config{}, zap.NewNop())
	require.ErrorIs(t, err, config.ErrMissingVariable)
	assert.Contains(t, err.Error(), config.EnvTrackingURI)
	assert.Contains(t, err.Error(), config.EnvRegistryURI)
}

func TestGetExperiments_RespectsConfiguredPageBound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/experiments/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"experiments":[{"experiment_id":"1","name":"e"}],"next_page_token":"forever"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{TrackingURI: srv.URL, RegistryURI: srv.URL, MaxPages: 2}
	sdk, err := tracking.New(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = sdk.GetExperiments(context.Background(), "")
	require.ErrorIs(t, err, tracking.ErrTooManyPages)
}
