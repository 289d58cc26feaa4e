package services

import (
	"context"
	"errors"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"go.uber.org/zap"
)

// CascadeService deletes posts together with their comments, and single
// comments together with their reference on the parent post.
type CascadeService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	media    storage.Host
	log      *zap.Logger
}

func NewCascadeService(posts repositories.PostRepository, comments repositories.CommentRepository,
	media storage.Host, log *zap.Logger) *CascadeService {
	return &CascadeService{posts: posts, comments: comments, media: media, log: log}
}

// DeletePost removes the hosted image (best effort), every comment on the
// post and then the post itself. Only the owner may delete.
func (s *CascadeService) DeletePost(ctx context.Context, actor *models.User, postID string) error {
	id, err := parseID(postID, "post")
	if err != nil {
		return err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return storeError(err, "Post not found")
	}
	if post.User != actor.ID {
		return apperrors.Forbidden("You can only delete your own posts")
	}

	if post.Image != "" {
		if err := s.media.Delete(ctx, post.Image); err != nil {
			s.log.Warn("failed to delete post image",
				zap.String("post_id", post.ID.Hex()), zap.String("image", post.Image), zap.Error(err))
		}
	}

	removed, err := s.comments.DeleteCommentsByPostID(ctx, post.ID)
	if err != nil {
		return apperrors.Internal("failed to delete comments", err)
	}
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return storeError(err, "Post not found")
	}

	s.log.Info("post deleted",
		zap.String("post_id", post.ID.Hex()), zap.Int64("comments_removed", removed))
	return nil
}

// DeleteComment removes a comment and its id from the parent post. A
// missing parent is tolerated.
func (s *CascadeService) DeleteComment(ctx context.Context, actor *models.User, commentID string) error {
	id, err := parseID(commentID, "comment")
	if err != nil {
		return err
	}
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if comment.User != actor.ID {
		return apperrors.Forbidden("You can only delete your own comments")
	}

	if err := s.posts.RemoveComment(ctx, comment.Post, comment.ID); err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return apperrors.Internal("failed to detach comment", err)
		}
		s.log.Debug("parent post already gone", zap.String("post_id", comment.Post.Hex()))
	}
	if err := s.comments.DeleteComment(ctx, comment.ID); err != nil {
		return storeError(err, "Comment not found")
	}
	return nil
}
