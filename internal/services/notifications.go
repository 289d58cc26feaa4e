package services

import (
	"context"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationService lists and deletes a recipient's notifications
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	log           *zap.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository,
	posts repositories.PostRepository, comments repositories.CommentRepository, log *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, posts: posts, comments: comments, log: log}
}

// List returns the actor's notifications newest first with the actor,
// post and comment references populated. References to deleted documents
// are left empty.
func (s *NotificationService) List(ctx context.Context, actor *models.User) ([]models.NotificationView, error) {
	records, err := s.notifications.GetByRecipient(ctx, actor.ID.Hex())
	if err != nil {
		return nil, apperrors.Internal("failed to list notifications", err)
	}

	var userIDs, postIDs, commentIDs []primitive.ObjectID
	for _, n := range records {
		userIDs = appendHex(userIDs, n.From)
		postIDs = appendHex(postIDs, n.Post)
		commentIDs = appendHex(commentIDs, n.Comment)
	}

	senders, err := userSummaries(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.GetPostsByIDs(ctx, dedupe(postIDs))
	if err != nil {
		return nil, apperrors.Internal("failed to load posts", err)
	}
	comments, err := s.comments.GetCommentsByIDs(ctx, dedupe(commentIDs))
	if err != nil {
		return nil, apperrors.Internal("failed to load comments", err)
	}

	postByHex := make(map[string]*models.PostPreview, len(posts))
	for _, p := range posts {
		postByHex[p.ID.Hex()] = &models.PostPreview{ID: p.ID.Hex(), Content: p.Content, Image: p.Image}
	}
	commentByHex := make(map[string]*models.CommentPreview, len(comments))
	for _, c := range comments {
		commentByHex[c.ID.Hex()] = &models.CommentPreview{ID: c.ID.Hex(), Content: c.Content}
	}

	views := make([]models.NotificationView, 0, len(records))
	for _, n := range records {
		view := models.NotificationView{
			ID:        n.ID,
			To:        n.To,
			Type:      n.Type,
			Post:      postByHex[n.Post],
			Comment:   commentByHex[n.Comment],
			CreatedAt: n.CreatedAt,
		}
		if id, err := primitive.ObjectIDFromHex(n.From); err == nil {
			view.From = senders[id]
		}
		views = append(views, view)
	}
	return views, nil
}

// Delete removes a notification addressed to the actor
func (s *NotificationService) Delete(ctx context.Context, actor *models.User, notificationID uint) error {
	n, err := s.notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return storeError(err, "Notification not found")
	}
	if n.To != actor.ID.Hex() {
		return apperrors.Forbidden("You can only delete your own notifications")
	}
	if err := s.notifications.DeleteNotification(ctx, notificationID); err != nil {
		return storeError(err, "Notification not found")
	}
	return nil
}

func appendHex(ids []primitive.ObjectID, hex string) []primitive.ObjectID {
	if hex == "" {
		return ids
	}
	if id, err := primitive.ObjectIDFromHex(hex); err == nil {
		ids = append(ids, id)
	}
	return ids
}
