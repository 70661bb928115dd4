package tracking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// artifactsScheme prefixes download URIs served through the tracking
// server's proxied artifact store.
const artifactsScheme = "mlflow-artifacts:/"

// ErrUnsupportedArtifactScheme indicates a model's artifacts live in a store
// this client cannot reach directly (e.g. s3://). Such models can still be
// resolved, just not downloaded here.
var ErrUnsupportedArtifactScheme = errors.New("tracking: unsupported artifact scheme")

// DownloadModel fetches all artifacts of a resolved model into destDir,
// preserving the artifact directory layout. Only mlflow-artifacts:/ download
// URIs are supported: those are proxied by the tracking server itself.
func (c *Client) DownloadModel(ctx context.Context, model *Model, destDir string) error {
	logger := c.logger.With(
		zap.String("operation", "DownloadModel"),
		zap.String("model", model.Name),
		zap.String("version", model.Version),
	)

	root, ok := strings.CutPrefix(model.DownloadURI, artifactsScheme)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedArtifactScheme, model.DownloadURI)
	}
	root = strings.TrimLeft(root, "/")

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	var files int
	if err := c.downloadTree(ctx, root, root, destDir, &files); err != nil {
		return err
	}

	logger.Info("Downloaded model artifacts",
		zap.Int("files", files),
		zap.String("dest", destDir),
	)
	return nil
}

// downloadTree walks one artifact directory level and fetches every file
// under it. Entry paths are relative to the store root, so local paths are
// derived by stripping the model's root prefix.
func (c *Client) downloadTree(ctx context.Context, root, dir, destDir string, files *int) error {
	entries, err := c.raw.ListArtifacts(ctx, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir {
			if err := c.downloadTree(ctx, root, entry.Path, destDir, files); err != nil {
				return err
			}
			continue
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(entry.Path, root), "/")
		local := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", rel, err)
		}

		out, err := os.Create(local)
		if err != nil {
			return fmt.Errorf("creating %s: %w", local, err)
		}
		if _, err := c.raw.DownloadArtifact(ctx, entry.Path, out); err != nil {
			out.Close()
			os.Remove(local)
			return err
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", local, err)
		}
		*files++
	}
	return nil
}
