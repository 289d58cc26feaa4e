package services

import (
	"context"
	"errors"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// edge is one side of a relation: a single-document insert and its inverse
type edge struct {
	add    func(ctx context.Context) error
	remove func(ctx context.Context) error
}

// toggle flips membership. When present every edge is removed, otherwise
// every edge is added and onInsert runs. Edges are written one after the
// other without rollback, so a failure can leave a relation half applied.
func toggle(ctx context.Context, present bool, edges []edge, onInsert func(ctx context.Context) error) (bool, error) {
	for _, e := range edges {
		write := e.add
		if present {
			write = e.remove
		}
		if err := write(ctx); err != nil {
			return present, err
		}
	}
	if !present && onInsert != nil {
		if err := onInsert(ctx); err != nil {
			return true, err
		}
	}
	return !present, nil
}

// EngagementService toggles likes and follows
type EngagementService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	notifier *Notifier
	log      *zap.Logger
}

func NewEngagementService(users repositories.UserRepository, posts repositories.PostRepository,
	comments repositories.CommentRepository, notifier *Notifier, log *zap.Logger) *EngagementService {
	return &EngagementService{users: users, posts: posts, comments: comments, notifier: notifier, log: log}
}

// TogglePostLike likes or unlikes a post and reports the new state
func (s *EngagementService) TogglePostLike(ctx context.Context, actor *models.User, postID string) (bool, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return false, err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return false, storeError(err, "Post not found")
	}

	liked, err := toggle(ctx, post.IsLikedBy(actor.ID), []edge{{
		add:    func(ctx context.Context) error { return s.posts.AddLike(ctx, post.ID, actor.ID) },
		remove: func(ctx context.Context) error { return s.posts.RemoveLike(ctx, post.ID, actor.ID) },
	}}, func(ctx context.Context) error {
		_, err := s.notifier.Emit(ctx, newNotification(models.NotificationLike, actor.ID, post.User, post.ID, primitive.NilObjectID))
		return err
	})
	if err != nil {
		return liked, s.writeError(err, "Post not found")
	}
	return liked, nil
}

// ToggleCommentLike likes or unlikes a comment and reports the new state
func (s *EngagementService) ToggleCommentLike(ctx context.Context, actor *models.User, commentID string) (bool, error) {
	id, err := parseID(commentID, "comment")
	if err != nil {
		return false, err
	}
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return false, storeError(err, "Comment not found")
	}

	liked, err := toggle(ctx, comment.IsLikedBy(actor.ID), []edge{{
		add:    func(ctx context.Context) error { return s.comments.AddLike(ctx, comment.ID, actor.ID) },
		remove: func(ctx context.Context) error { return s.comments.RemoveLike(ctx, comment.ID, actor.ID) },
	}}, func(ctx context.Context) error {
		_, err := s.notifier.Emit(ctx, newNotification(models.NotificationLike, actor.ID, comment.User, comment.Post, comment.ID))
		return err
	})
	if err != nil {
		return liked, s.writeError(err, "Comment not found")
	}
	return liked, nil
}

// ToggleFollow follows or unfollows target. targetRef is an internal id or
// an identity provider id. Following oneself is rejected before anything
// is read or written.
func (s *EngagementService) ToggleFollow(ctx context.Context, actor *models.User, targetRef string) (bool, error) {
	if targetRef == "" {
		return false, apperrors.Validation("Target user is required")
	}
	if targetRef == actor.ID.Hex() || targetRef == actor.ExternalID {
		return false, apperrors.InvalidOperation("You cannot follow yourself")
	}

	target, err := s.resolveTarget(ctx, targetRef)
	if err != nil {
		return false, err
	}
	if target.ID == actor.ID {
		return false, apperrors.InvalidOperation("You cannot follow yourself")
	}

	followed, err := toggle(ctx, actor.IsFollowing(target.ID), []edge{
		{
			add:    func(ctx context.Context) error { return s.users.AddFollowing(ctx, actor.ID, target.ID) },
			remove: func(ctx context.Context) error { return s.users.RemoveFollowing(ctx, actor.ID, target.ID) },
		},
		{
			add:    func(ctx context.Context) error { return s.users.AddFollower(ctx, target.ID, actor.ID) },
			remove: func(ctx context.Context) error { return s.users.RemoveFollower(ctx, target.ID, actor.ID) },
		},
	}, func(ctx context.Context) error {
		_, err := s.notifier.Emit(ctx, newNotification(models.NotificationFollow, actor.ID, target.ID, primitive.NilObjectID, primitive.NilObjectID))
		return err
	})
	if err != nil {
		return followed, s.writeError(err, "User not found")
	}
	return followed, nil
}

func (s *EngagementService) resolveTarget(ctx context.Context, ref string) (*models.User, error) {
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		user, err := s.users.GetUserByID(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, storeError(err, "User not found")
		}
	}
	user, err := s.users.GetUserByExternalID(ctx, ref)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// writeError logs a failed toggle write. The relation may be half applied.
func (s *EngagementService) writeError(err error, notFound string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	s.log.Error("toggle write failed", zap.Error(err))
	return storeError(err, notFound)
}
