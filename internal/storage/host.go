// Package storage uploads and deletes user media on an external image host.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrEmptyImage is returned when an upload carries neither bytes nor a source string
	ErrEmptyImage = errors.New("empty image")
	// ErrUnsupportedSource is returned by hosts that cannot fetch remote URLs
	ErrUnsupportedSource = errors.New("image source not supported by this media backend")
	// ErrForeignURL is returned by Delete when the URL was not issued by the host
	ErrForeignURL = errors.New("url does not belong to this media backend")
)

// Quality selects the transformation applied by an upload attempt
type Quality int

const (
	QualityFull Quality = iota
	QualityDegraded
)

func (q Quality) String() string {
	if q == QualityDegraded {
		return "degraded"
	}
	return "full"
}

// Preset is a destination folder with its bounding box
type Preset struct {
	Folder string
	Width  int
	Height int
}

var (
	PostImage      = Preset{Folder: "social_media_posts", Width: 800, Height: 600}
	BannerImage    = Preset{Folder: "user_banners", Width: 1500, Height: 500}
	ProfilePicture = Preset{Folder: "profile_pictures", Width: 400, Height: 400}
)

// Transformation renders the preset as a Cloudinary transformation string.
// Full quality fits the image inside the box with automatic quality and
// format; degraded quality only scales to the preset width.
func (p Preset) Transformation(q Quality) string {
	if q == QualityDegraded {
		return fmt.Sprintf("c_scale,w_%d", p.Width)
	}
	return fmt.Sprintf("c_limit,w_%d,h_%d/q_auto/f_auto", p.Width, p.Height)
}

// Image is either raw bytes from a multipart upload or a source string
// (data URI or remote URL) from a JSON body.
type Image struct {
	Data        []byte
	ContentType string
	Source      string
}

func (i Image) IsEmpty() bool {
	return len(i.Data) == 0 && strings.TrimSpace(i.Source) == ""
}

// Host is an external image host
type Host interface {
	Upload(ctx context.Context, img Image, preset Preset, quality Quality) (string, error)
	Delete(ctx context.Context, url string) error
}

// UploadWithFallback tries a full-quality upload and, when that fails, one
// degraded-quality upload. The error of the last attempt is returned.
func UploadWithFallback(ctx context.Context, host Host, img Image, preset Preset, log *zap.Logger) (string, error) {
	if img.IsEmpty() {
		return "", ErrEmptyImage
	}

	url, err := host.Upload(ctx, img, preset, QualityFull)
	if err == nil {
		return url, nil
	}
	log.Warn("full quality upload failed, retrying degraded",
		zap.String("folder", preset.Folder), zap.Error(err))

	url, err = host.Upload(ctx, img, preset, QualityDegraded)
	if err != nil {
		return "", fmt.Errorf("upload to %s: %w", preset.Folder, err)
	}
	return url, nil
}
