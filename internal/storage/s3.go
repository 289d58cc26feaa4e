package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Host stores originals in an Amazon S3 bucket. Like GCSHost it ignores
// the requested quality.
type S3Host struct {
	s3     s3iface.S3API
	bucket string
}

func NewS3Host(region, bucket string) (*S3Host, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &S3Host{s3: s3.New(sess), bucket: bucket}, nil
}

func (h *S3Host) Upload(ctx context.Context, img Image, preset Preset, _ Quality) (string, error) {
	contentType, data, err := blobPayload(img)
	if err != nil {
		return "", err
	}

	key := objectKey(preset.Folder, contentType)
	_, err = h.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return h.publicURL(key), nil
}

func (h *S3Host) Delete(ctx context.Context, imageURL string) error {
	key, ok := strings.CutPrefix(imageURL, h.publicURL(""))
	if !ok || key == "" {
		return ErrForeignURL
	}
	_, err := h.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (h *S3Host) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", h.bucket, key)
}
