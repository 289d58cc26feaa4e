package services

import (
	"context"
	"strings"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostService creates posts and serves the populated read paths
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	media    storage.Host
	log      *zap.Logger
}

func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository,
	users repositories.UserRepository, media storage.Host, log *zap.Logger) *PostService {
	return &PostService{posts: posts, comments: comments, users: users, media: media, log: log}
}

// List returns posts newest first. A zero limit means no limit.
func (s *PostService) List(ctx context.Context, skip, limit int64) ([]models.PostView, error) {
	posts, err := s.posts.GetAllPosts(ctx, skip, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list posts", err)
	}
	return s.populate(ctx, posts)
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.PostView, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	views, err := s.populate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListByUsername returns the posts of one user, newest first
func (s *PostService) ListByUsername(ctx context.Context, username string) ([]models.PostView, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	posts, err := s.posts.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to list posts", err)
	}
	return s.populate(ctx, posts)
}

// Create stores a new post. The image goes through the upload fallback
// chain; when every attempt fails the image is dropped if there is text,
// otherwise the post is rejected.
func (s *PostService) Create(ctx context.Context, actor *models.User, content string, img storage.Image) (*models.PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" && img.IsEmpty() {
		return nil, apperrors.Validation("Please provide content or image")
	}

	var imageURL string
	if !img.IsEmpty() {
		url, err := storage.UploadWithFallback(ctx, s.media, img, storage.PostImage, s.log)
		switch {
		case err == nil:
			imageURL = url
		case content == "":
			upstream := apperrors.Wrap(apperrors.CodeUpstreamMedia, "Image upload failed", err)
			return nil, apperrors.Wrap(apperrors.CodeValidation,
				"Failed to upload image and no text content provided", upstream).WithDetails(err.Error())
		default:
			s.log.Warn("image upload failed, creating text-only post",
				zap.String("user_id", actor.ID.Hex()), zap.Error(err))
		}
	}

	post := &models.Post{
		User:    actor.ID,
		Content: content,
		Image:   imageURL,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Internal("failed to create post", err)
	}

	author := actor.Summary()
	view := models.NewPostView(post, &author, nil)
	return &view, nil
}

// populate attaches authors and comments (with their authors) to posts
func (s *PostService) populate(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	var commentIDs []primitive.ObjectID
	for _, p := range posts {
		commentIDs = append(commentIDs, p.Comments...)
	}
	comments, err := s.comments.GetCommentsByIDs(ctx, dedupe(commentIDs))
	if err != nil {
		return nil, apperrors.Internal("failed to load comments", err)
	}
	commentByID := make(map[primitive.ObjectID]*models.Comment, len(comments))
	userIDs := make([]primitive.ObjectID, 0, len(posts)+len(comments))
	for i := range comments {
		commentByID[comments[i].ID] = &comments[i]
		userIDs = append(userIDs, comments[i].User)
	}
	for _, p := range posts {
		userIDs = append(userIDs, p.User)
	}

	authors, err := userSummaries(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		p := &posts[i]
		commentViews := make([]models.CommentView, 0, len(p.Comments))
		for _, cid := range p.Comments {
			if c, ok := commentByID[cid]; ok {
				commentViews = append(commentViews, models.NewCommentView(c, authors[c.User]))
			}
		}
		views = append(views, models.NewPostView(p, authors[p.User], commentViews))
	}
	return views, nil
}
