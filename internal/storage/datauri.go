package storage

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// DataURI encodes raw image bytes the way browsers do
func DataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI into its content type and bytes
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data uri must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	if len(data) == 0 {
		return "", nil, ErrEmptyImage
	}
	return contentType, data, nil
}

// blobPayload returns the bytes blob backends store. Remote URLs are
// rejected because blob stores cannot fetch them.
func blobPayload(img Image) (string, []byte, error) {
	if len(img.Data) > 0 {
		return img.ContentType, img.Data, nil
	}
	src := strings.TrimSpace(img.Source)
	if src == "" {
		return "", nil, ErrEmptyImage
	}
	if !strings.HasPrefix(src, "data:") {
		return "", nil, ErrUnsupportedSource
	}
	return ParseDataURI(src)
}

// objectKey names a new blob as <folder>/<uuid><ext>
func objectKey(folder, contentType string) string {
	return folder + "/" + uuid.NewString() + extensionFor(contentType)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
