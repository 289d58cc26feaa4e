package models

import "time"

// NotificationType is the engagement action that produced a notification
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification is an append-only record of an engagement action (SQL via
// GORM). User, post and comment references are MongoDB ObjectID hex strings.
type Notification struct {
	ID        uint             `json:"_id" gorm:"primaryKey"`
	From      string           `json:"from" gorm:"size:24;not null;index"`
	To        string           `json:"to" gorm:"size:24;not null;index:idx_notifications_to_created"`
	Type      NotificationType `json:"type" gorm:"size:20;not null"`
	Post      string           `json:"post,omitempty" gorm:"size:24;index"`
	Comment   string           `json:"comment,omitempty" gorm:"size:24"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index:idx_notifications_to_created"`
}

// PostPreview is the part of a post shown next to a notification
type PostPreview struct {
	ID      string `json:"_id"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// CommentPreview is the part of a comment shown next to a notification
type CommentPreview struct {
	ID      string `json:"_id"`
	Content string `json:"content"`
}

// NotificationView is a notification with its references populated. Post
// and Comment stay nil when the referenced documents are gone.
type NotificationView struct {
	ID        uint             `json:"_id"`
	From      *UserSummary     `json:"from"`
	To        string           `json:"to"`
	Type      NotificationType `json:"type"`
	Post      *PostPreview     `json:"post,omitempty"`
	Comment   *CommentPreview  `json:"comment,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
