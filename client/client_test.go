package client_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gate4ai/mlflow-tracking/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServerAndClient(t *testing.T, handler http.Handler) *client.RestClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.NewRestClient(srv.URL, srv.URL, zap.NewNop())
}

func TestSearchExperiments_RequestShape(t *testing.T) {
	var gotPath, gotContentType, gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{"experiments":[]}`)
	})

	c := newServerAndClient(t, mux)
	token := "resume-here"
	_, err := c.SearchExperiments(context.Background(), client.SearchExperimentsOptions{
		Filter:    "name LIKE 'nlp-%'",
		PageToken: &token,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/2.0/mlflow/experiments/search", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"filter":"name LIKE 'nlp-%'","page_token":"resume-here"}`, gotBody)
}

func TestSearchModelVersions_QueryEncoding(t *testing.T) {
	var gotQuery map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/model-versions/search", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"model_versions":[]}`)
	})

	c := newServerAndClient(t, mux)
	token := "tok"
	_, err := c.SearchModelVersions(context.Background(), client.SearchModelVersionsOptions{
		Filter:     "name='m'",
		MaxResults: 100,
		OrderBy:    []string{"version DESC"},
		PageToken:  &token,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"name='m'"}, gotQuery["filter"])
	assert.Equal(t, []string{"100"}, gotQuery["max_results"])
	assert.Equal(t, []string{"version DESC"}, gotQuery["order_by"])
	assert.Equal(t, []string{"tok"}, gotQuery["page_token"])
}

func TestSearchRegisteredModels_DistinguishesAbsentAndEmptyToken(t *testing.T) {
	responses := []string{
		`{"registered_models":[{"name":"a"}],"next_page_token":""}`,
		`{"registered_models":[{"name":"b"}]}`,
	}
	call := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/registered-models/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, responses[call])
		call++
	})

	c := newServerAndClient(t, mux)

	page, err := c.SearchRegisteredModels(context.Background(), client.SearchRegisteredModelsOptions{})
	require.NoError(t, err)
	require.NotNil(t, page.NextPageToken, "an empty string token must survive decoding as non-nil")
	assert.Equal(t, "", *page.NextPageToken)

	page, err = c.SearchRegisteredModels(context.Background(), client.SearchRegisteredModelsOptions{})
	require.NoError(t, err)
	assert.Nil(t, page.NextPageToken, "an omitted token must decode as nil")
}

func TestSend_ErrorClassification(t *testing.T) {
	t.Run("network", func(t *testing.T) {
		srv := httptest.NewServer(http.NewServeMux())
		srv.Close() // Nothing listening anymore.
		c := client.NewRestClient(srv.URL, srv.URL, zap.NewNop())

		_, err := c.SearchExperiments(context.Background(), client.SearchExperimentsOptions{})
		require.ErrorIs(t, err, client.ErrNetwork)
	})

	t.Run("not found", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error_code":"RESOURCE_DOES_NOT_EXIST","message":"no such model"}`)
		})
		c := newServerAndClient(t, mux)

		_, err := c.GetModelVersion(context.Background(), "ghost", "1")
		require.ErrorIs(t, err, client.ErrNotFound)

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "RESOURCE_DOES_NOT_EXIST", apiErr.Code)
		assert.Equal(t, "no such model", apiErr.Message)
	})

	t.Run("server error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		c := newServerAndClient(t, mux)

		_, err := c.SearchRuns(context.Background(), client.SearchRunsOptions{ExperimentIDs: []string{"1"}})
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.NotErrorIs(t, err, client.ErrNotFound)
	})

	t.Run("bad body", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>definitely not json</html>`)
		})
		c := newServerAndClient(t, mux)

		_, err := c.SearchExperiments(context.Background(), client.SearchExperimentsOptions{})
		require.ErrorIs(t, err, client.ErrResponse)
	})
}

func TestGetLatestVersions_RequestBody(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/registered-models/get-latest-versions", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{"model_versions":[{"name":"m","version":"7","current_stage":"Production"}]}`)
	})

	c := newServerAndClient(t, mux)
	versions, err := c.GetLatestVersions(context.Background(), "m", []string{"Production"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"m","stages":["Production"]}`, gotBody)
	require.Len(t, versions, 1)
	assert.Equal(t, "7", versions[0].Version)
}

func TestGetModelVersionDownloadURI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2.0/mlflow/model-versions/get-download-uri", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "m", r.URL.Query().Get("name"))
		assert.Equal(t, "7", r.URL.Query().Get("version"))
		fmt.Fprint(w, `{"artifact_uri":"mlflow-artifacts:/models/m/7"}`)
	})

	c := newServerAndClient(t, mux)
	uri, err := c.GetModelVersionDownloadURI(context.Background(), "m", "7")
	require.NoError(t, err)
	assert.Equal(t, "mlflow-artifacts:/models/m/7", uri)
}
