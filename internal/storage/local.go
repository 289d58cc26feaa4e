package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalRoute is the URL prefix the router serves local uploads under
const LocalRoute = "/uploads"

// LocalHost writes uploads to disk for development. Files are served by
// the HTTP server under LocalRoute.
type LocalHost struct {
	basePath string
	baseURL  string
	log      *zap.Logger
}

func NewLocalHost(basePath, publicBaseURL string, log *zap.Logger) (*LocalHost, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalHost{
		basePath: basePath,
		baseURL:  strings.TrimRight(publicBaseURL, "/") + LocalRoute + "/",
		log:      log,
	}, nil
}

func (h *LocalHost) BasePath() string {
	return h.basePath
}

func (h *LocalHost) Upload(_ context.Context, img Image, preset Preset, _ Quality) (string, error) {
	contentType, data, err := blobPayload(img)
	if err != nil {
		return "", err
	}

	key := objectKey(preset.Folder, contentType)
	fullPath := filepath.Join(h.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	h.log.Debug("file stored", zap.String("path", fullPath))
	return h.baseURL + key, nil
}

func (h *LocalHost) Delete(_ context.Context, imageURL string) error {
	key, ok := strings.CutPrefix(imageURL, h.baseURL)
	if !ok || key == "" {
		return ErrForeignURL
	}
	rel := filepath.Clean(filepath.FromSlash(key))
	if rel == "." || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return ErrForeignURL
	}

	err := os.Remove(filepath.Join(h.basePath, rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
