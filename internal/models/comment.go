package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post
type Comment struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Post      primitive.ObjectID   `json:"post" bson:"post"`
	Content   string               `json:"content" bson:"content"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsLikedBy reports whether the given user has liked the comment
func (c *Comment) IsLikedBy(id primitive.ObjectID) bool {
	return containsID(c.Likes, id)
}

// CommentView is a comment with its author populated
type CommentView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *UserSummary         `json:"user"`
	Post      primitive.ObjectID   `json:"post"`
	Content   string               `json:"content"`
	Likes     []primitive.ObjectID `json:"likes"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func NewCommentView(c *Comment, author *UserSummary) CommentView {
	return CommentView{
		ID:        c.ID,
		User:      author,
		Post:      c.Post,
		Content:   c.Content,
		Likes:     nonNilIDs(c.Likes),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateCommentRequest defines the request body for creating a new comment.
// Blank content is rejected by the comment service after trimming.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"max=500"`
}
