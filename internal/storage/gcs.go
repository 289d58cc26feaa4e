package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSHost stores originals in a Google Cloud Storage bucket. Transformations
// are not applied, so the degraded attempt is a plain retry.
type GCSHost struct {
	client     *storage.Client
	bucketName string
}

func NewGCSHost(ctx context.Context, bucketName, credentialsFile string) (*GCSHost, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSHost{client: client, bucketName: bucketName}, nil
}

func (h *GCSHost) Upload(ctx context.Context, img Image, preset Preset, _ Quality) (string, error) {
	contentType, data, err := blobPayload(img)
	if err != nil {
		return "", err
	}

	key := objectKey(preset.Folder, contentType)
	writer := h.client.Bucket(h.bucketName).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err = io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs object: %w", err)
	}
	return h.publicURL(key), nil
}

func (h *GCSHost) Delete(ctx context.Context, imageURL string) error {
	key, ok := strings.CutPrefix(imageURL, h.publicURL(""))
	if !ok || key == "" {
		return ErrForeignURL
	}
	err := h.client.Bucket(h.bucketName).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (h *GCSHost) Close() error {
	return h.client.Close()
}

func (h *GCSHost) publicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.bucketName, key)
}
