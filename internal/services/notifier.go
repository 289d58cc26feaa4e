package services

import (
	"context"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier appends notification records for engagement actions
type Notifier struct {
	repo repositories.NotificationRepository
	log  *zap.Logger
}

func NewNotifier(repo repositories.NotificationRepository, log *zap.Logger) *Notifier {
	return &Notifier{repo: repo, log: log}
}

// Emit stores n unless the actor is also the recipient, in which case it
// returns nil without touching the store.
func (n *Notifier) Emit(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if notification.From == notification.To {
		return nil, nil
	}
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return nil, apperrors.Internal("failed to record notification", err)
	}
	n.log.Debug("notification emitted",
		zap.String("type", string(notification.Type)),
		zap.String("from", notification.From),
		zap.String("to", notification.To))
	return notification, nil
}

// newNotification builds a record; a nil post or comment id leaves the
// reference empty.
func newNotification(kind models.NotificationType, from, to, post, comment primitive.ObjectID) *models.Notification {
	n := &models.Notification{Type: kind, From: from.Hex(), To: to.Hex()}
	if !post.IsZero() {
		n.Post = post.Hex()
	}
	if !comment.IsZero() {
		n.Comment = comment.Hex()
	}
	return n
}
