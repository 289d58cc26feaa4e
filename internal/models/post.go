package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Content   string               `json:"content" bson:"content"`
	Image     string               `json:"image" bson:"image"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`         // insertion ordered, no duplicates
	Comments  []primitive.ObjectID `json:"comments" bson:"comments"`   // ids of comments on this post
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsLikedBy reports whether the given user has liked the post
func (p *Post) IsLikedBy(id primitive.ObjectID) bool {
	return containsID(p.Likes, id)
}

// PostView is a post with its author and comments populated
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *UserSummary         `json:"user"`
	Content   string               `json:"content"`
	Image     string               `json:"image"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewPostView builds a view of p. author may be nil when the owner no
// longer resolves.
func NewPostView(p *Post, author *UserSummary, comments []CommentView) PostView {
	if comments == nil {
		comments = []CommentView{}
	}
	return PostView{
		ID:        p.ID,
		User:      author,
		Content:   p.Content,
		Image:     p.Image,
		Likes:     nonNilIDs(p.Likes),
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreatePostRequest is the JSON or form body for creating a post. Image may
// be a data URI or a remote URL; a multipart file takes precedence.
type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"max=280"`
	Image   string `json:"image" form:"image"`
}
