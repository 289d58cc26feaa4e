package services

import (
	"context"
	"strings"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
	notifier *Notifier
	log      *zap.Logger
}

func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository,
	users repositories.UserRepository, notifier *Notifier, log *zap.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, notifier: notifier, log: log}
}

// ListByPost returns the comments of a post, newest first
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to list comments", err)
	}

	userIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.User)
	}
	authors, err := userSummaries(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, models.NewCommentView(&comments[i], authors[comments[i].User]))
	}
	return views, nil
}

// Create adds a comment to a post, links it from the post and notifies the
// post owner.
func (s *CommentService) Create(ctx context.Context, actor *models.User, postID, content string) (*models.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Comment content is required")
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}

	comment := &models.Comment{
		User:    actor.ID,
		Post:    post.ID,
		Content: content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, apperrors.Internal("failed to create comment", err)
	}
	if err := s.posts.AddComment(ctx, post.ID, comment.ID); err != nil {
		return nil, storeError(err, "Post not found")
	}

	if _, err := s.notifier.Emit(ctx, newNotification(models.NotificationComment, actor.ID, post.User, post.ID, comment.ID)); err != nil {
		return nil, err
	}

	author := actor.Summary()
	view := models.NewCommentView(comment, &author)
	return &view, nil
}
