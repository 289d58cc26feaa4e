package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var pngImage = storage.Image{Data: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png"}

func TestCreatePost_TextOnly(t *testing.T) {
	f := newFixture()
	alice := f.user("alice")

	post, err := f.postSvc.Create(context.Background(), alice, "hello", storage.Image{})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, "", post.Image)
	assert.Equal(t, []primitive.ObjectID{}, post.Likes)
	assert.Empty(t, post.Comments)
	require.NotNil(t, post.User)
	assert.Equal(t, "alice", post.User.Username)
	assert.Empty(t, f.media.uploads)
}

func TestCreatePost_RequiresContentOrImage(t *testing.T) {
	f := newFixture()
	_, err := f.postSvc.Create(context.Background(), f.user("alice"), "   ", storage.Image{})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	assert.Empty(t, f.store.posts)
}

func TestCreatePost_ImageFallsBackToDegraded(t *testing.T) {
	f := newFixture()
	f.media.failFull = errors.New("transformation timeout")

	post, err := f.postSvc.Create(context.Background(), f.user("alice"), "", pngImage)
	require.NoError(t, err)
	assert.Contains(t, post.Image, "social_media_posts/degraded")
	assert.Equal(t, []storage.Quality{storage.QualityFull, storage.QualityDegraded}, f.media.uploads)
}

func TestCreatePost_FailedUploadDropsImageWhenTextPresent(t *testing.T) {
	f := newFixture()
	f.media.failAll = errors.New("host down")

	post, err := f.postSvc.Create(context.Background(), f.user("alice"), "caption", pngImage)
	require.NoError(t, err)
	assert.Equal(t, "caption", post.Content)
	assert.Equal(t, "", post.Image)
	assert.Len(t, f.store.posts, 1)
}

func TestCreatePost_FailedUploadWithoutTextIsRejected(t *testing.T) {
	f := newFixture()
	f.media.failAll = errors.New("host down")

	_, err := f.postSvc.Create(context.Background(), f.user("alice"), "", pngImage)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "host down")
	assert.True(t, errors.Is(err, f.media.failAll))
	assert.Empty(t, f.store.posts)
}

func TestListPosts_NewestFirstAndPopulated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice, bob := f.user("alice"), f.user("bob")
	first := f.post(alice, "first", "")
	second := f.post(bob, "second", "")
	f.comment(bob, first, "reply")

	posts, err := f.postSvc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, "bob", posts[0].User.Username)

	require.Len(t, posts[1].Comments, 1)
	assert.Equal(t, "reply", posts[1].Comments[0].Content)
	assert.Equal(t, "bob", posts[1].Comments[0].User.Username)

	page, err := f.postSvc.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestGetPostAndListByUsername(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice, bob := f.user("alice"), f.user("bob")
	p := f.post(alice, "a1", "")
	f.post(alice, "a2", "")
	f.post(bob, "b1", "")

	got, err := f.postSvc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a1", got.Content)

	_, err = f.postSvc.Get(ctx, primitive.NewObjectID().Hex())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	posts, err := f.postSvc.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a2", posts[0].Content)

	_, err = f.postSvc.ListByUsername(ctx, "nobody")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestCreateComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice, bob := f.user("alice"), f.user("bob")
	post := f.post(alice, "post", "")

	comment, err := f.commentSvc.Create(ctx, bob, post.ID.Hex(), "  great  ")
	require.NoError(t, err)
	assert.Equal(t, "great", comment.Content)
	assert.Equal(t, "bob", comment.User.Username)

	stored, _ := f.posts.GetPostByID(ctx, post.ID)
	assert.Equal(t, []primitive.ObjectID{comment.ID}, stored.Comments)

	require.Len(t, f.store.notifications, 1)
	n := f.store.notifications[0]
	assert.Equal(t, "comment", string(n.Type))
	assert.Equal(t, alice.ID.Hex(), n.To)
	assert.Equal(t, comment.ID.Hex(), n.Comment)

	_, err = f.commentSvc.Create(ctx, alice, post.ID.Hex(), "own post")
	require.NoError(t, err)
	assert.Len(t, f.store.notifications, 1)

	comments, err := f.commentSvc.ListByPost(ctx, post.ID.Hex())
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "own post", comments[0].Content)
}

func TestCreateComment_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.user("alice")
	post := f.post(alice, "post", "")

	_, err := f.commentSvc.Create(ctx, alice, post.ID.Hex(), " ")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = f.commentSvc.Create(ctx, alice, primitive.NewObjectID().Hex(), "hi")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.Empty(t, f.store.comments)
}
