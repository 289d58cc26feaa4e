package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedHost struct {
	results map[Quality]error
	calls   []Quality
}

func (h *scriptedHost) Upload(_ context.Context, _ Image, preset Preset, q Quality) (string, error) {
	h.calls = append(h.calls, q)
	if err := h.results[q]; err != nil {
		return "", err
	}
	return "https://img.test/" + preset.Folder + "/" + q.String(), nil
}

func (h *scriptedHost) Delete(context.Context, string) error { return nil }

func TestUploadWithFallback(t *testing.T) {
	img := Image{Data: []byte{1, 2, 3}, ContentType: "image/png"}
	log := zap.NewNop()

	t.Run("full quality succeeds", func(t *testing.T) {
		host := &scriptedHost{}
		url, err := UploadWithFallback(context.Background(), host, img, PostImage, log)
		require.NoError(t, err)
		assert.Equal(t, "https://img.test/social_media_posts/full", url)
		assert.Equal(t, []Quality{QualityFull}, host.calls)
	})

	t.Run("falls back to degraded", func(t *testing.T) {
		host := &scriptedHost{results: map[Quality]error{QualityFull: errors.New("timeout")}}
		url, err := UploadWithFallback(context.Background(), host, img, BannerImage, log)
		require.NoError(t, err)
		assert.Equal(t, "https://img.test/user_banners/degraded", url)
		assert.Equal(t, []Quality{QualityFull, QualityDegraded}, host.calls)
	})

	t.Run("both attempts fail", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		host := &scriptedHost{results: map[Quality]error{QualityFull: errors.New("timeout"), QualityDegraded: cause}}
		_, err := UploadWithFallback(context.Background(), host, img, PostImage, log)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty image never reaches the host", func(t *testing.T) {
		host := &scriptedHost{}
		_, err := UploadWithFallback(context.Background(), host, Image{Source: "  "}, PostImage, log)
		assert.ErrorIs(t, err, ErrEmptyImage)
		assert.Empty(t, host.calls)
	})
}

func TestPresetTransformation(t *testing.T) {
	assert.Equal(t, "c_limit,w_800,h_600/q_auto/f_auto", PostImage.Transformation(QualityFull))
	assert.Equal(t, "c_scale,w_1500", BannerImage.Transformation(QualityDegraded))
	assert.Equal(t, "c_limit,w_400,h_400/q_auto/f_auto", ProfilePicture.Transformation(QualityFull))
}

func TestDataURIRoundTrip(t *testing.T) {
	uri := DataURI("image/png", []byte("png-bytes"))
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	ct, data, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("png-bytes"), data)

	for _, bad := range []string{"https://example.com/a.png", "data:image/png,raw", "data:image/png;base64", "data:image/png;base64,@@@"} {
		_, _, err := ParseDataURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestCloudinaryPublicID(t *testing.T) {
	id, err := cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/v1712345/user_banners/abc123.jpg")
	require.NoError(t, err)
	assert.Equal(t, "user_banners/abc123", id)

	id, err = cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/social_media_posts/x.y.png")
	require.NoError(t, err)
	assert.Equal(t, "social_media_posts/x.y", id)

	_, err = cloudinaryPublicID("https://example.com/picture.png")
	assert.ErrorIs(t, err, ErrForeignURL)
}

func TestLocalHost(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "http://localhost:8080/", zap.NewNop())
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), Image{Source: DataURI("image/jpeg", []byte("jpeg"))}, ProfilePicture, QualityFull)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/profile_pictures/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	key := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), stored)

	require.NoError(t, host.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, host.Delete(context.Background(), url))
	assert.ErrorIs(t, host.Delete(context.Background(), "http://localhost:8080/uploads/../secret"), ErrForeignURL)
	assert.ErrorIs(t, host.Delete(context.Background(), "https://cdn.example.com/a.png"), ErrForeignURL)

	_, err = host.Upload(context.Background(), Image{Source: "https://example.com/a.png"}, PostImage, QualityFull)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

type fakeS3 struct {
	s3iface.S3API
	put    *s3.PutObjectInput
	body   []byte
	delKey string
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.delKey = aws.StringValue(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Host(t *testing.T) {
	fake := &fakeS3{}
	host := &S3Host{s3: fake, bucket: "media"}

	url, err := host.Upload(context.Background(), Image{Data: []byte("gif"), ContentType: "image/gif"}, PostImage, QualityDegraded)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://media.s3.amazonaws.com/social_media_posts/"))
	assert.Equal(t, "image/gif", aws.StringValue(fake.put.ContentType))
	assert.Equal(t, []byte("gif"), fake.body)

	require.NoError(t, host.Delete(context.Background(), url))
	assert.Equal(t, aws.StringValue(fake.put.Key), fake.delKey)
	assert.ErrorIs(t, host.Delete(context.Background(), "https://other.s3.amazonaws.com/x"), ErrForeignURL)
}
