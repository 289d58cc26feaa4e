package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// CloudinaryHost uploads through the Cloudinary upload API. It is the only
// backend that applies the preset transformations and accepts remote URLs.
type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryHost(cloudName, apiKey, apiSecret string) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryHost{cld: cld}, nil
}

func (h *CloudinaryHost) Upload(ctx context.Context, img Image, preset Preset, quality Quality) (string, error) {
	var file string
	switch {
	case len(img.Data) > 0:
		file = DataURI(img.ContentType, img.Data)
	case strings.TrimSpace(img.Source) != "":
		file = strings.TrimSpace(img.Source)
	default:
		return "", ErrEmptyImage
	}

	res, err := h.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         preset.Folder,
		ResourceType:   "image",
		Transformation: preset.Transformation(quality),
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary returned no url")
	}
	return res.SecureURL, nil
}

func (h *CloudinaryHost) Delete(ctx context.Context, imageURL string) error {
	publicID, err := cloudinaryPublicID(imageURL)
	if err != nil {
		return err
	}
	res, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	return nil
}

// cloudinaryPublicID recovers "<folder>/<basename>" from a delivery URL such
// as https://res.cloudinary.com/demo/image/upload/v1712/user_banners/abc.jpg
func cloudinaryPublicID(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil || u.Path == "" {
		return "", ErrForeignURL
	}
	_, rest, ok := strings.Cut(u.Path, "/upload/")
	if !ok || rest == "" {
		return "", ErrForeignURL
	}

	segments := strings.Split(rest, "/")
	if len(segments) > 1 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	last := segments[len(segments)-1]
	segments[len(segments)-1] = strings.TrimSuffix(last, path.Ext(last))
	return strings.Join(segments, "/"), nil
}
