package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// The proxied artifact API lives outside the regular REST prefix.
const artifactsPrefix = "/api/2.0/mlflow-artifacts/artifacts"

// ArtifactEntry is a single file or directory listed under an artifact root.
type ArtifactEntry struct {
	// Path is relative to the artifact root.
	Path string `json:"path"`

	// IsDir marks directory entries. Directories have no size.
	IsDir bool `json:"is_dir"`

	// FileSize in bytes for file entries.
	FileSize int64 `json:"file_size,omitempty"`
}

type listArtifactsResponse struct {
	Files []ArtifactEntry `json:"files"`
}

// ListArtifacts lists the artifacts stored under path on the tracking
// server's proxied artifact store. An empty path lists the root.
func (c *RestClient) ListArtifacts(ctx context.Context, path string) ([]ArtifactEntry, error) {
	endpoint := c.trackingURL + artifactsPrefix
	if path != "" {
		endpoint += "?" + url.Values{"path": {path}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating artifact list request: %w", err)
	}

	var resp listArtifactsResponse
	if err := c.send(req, "artifacts/list", &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// DownloadArtifact streams the artifact at path into w and returns the
// number of bytes written.
func (c *RestClient) DownloadArtifact(ctx context.Context, path string, w io.Writer) (int64, error) {
	endpoint := c.trackingURL + artifactsPrefix + "/" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("creating artifact download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading artifact %s: %v: %w", path, err, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body errorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code = body.ErrorCode
			apiErr.Message = body.Message
		}
		return 0, apiErr
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading artifact %s: %v: %w", path, err, ErrNetwork)
	}

	c.logger.Debug("Downloaded artifact",
		zap.String("path", path),
		zap.Int64("bytes", n),
	)
	return n, nil
}
