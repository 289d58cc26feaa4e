package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// CommentService is the comment use-case surface the handler needs
type CommentService interface {
	ListByPost(ctx context.Context, postID string) ([]models.CommentView, error)
	Create(ctx context.Context, actor *models.User, postID, content string) (*models.CommentView, error)
}

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments   CommentService
	engagement Engagement
	cascade    Cascade
	actors     ActorResolver
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments CommentService, engagement Engagement, cascade Cascade, actors ActorResolver) *CommentHandler {
	return &CommentHandler{comments: comments, engagement: engagement, cascade: cascade, actors: actors}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g, auth *echo.Group) {
	g.GET("/comments/post/:postId", h.GetComments)

	auth.POST("/comments/post/:postId", h.CreateComment)
	auth.POST("/comments/:commentId/like", h.LikeComment)
	auth.DELETE("/comments/:commentId", h.DeleteComment)
}

// GetComments retrieves all comments for a specific post
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.comments.ListByPost(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"comments": comments})
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.Request().Context(), actor, c.Param("postId"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"comment": comment})
}

func (h *CommentHandler) LikeComment(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	liked, err := h.engagement.ToggleCommentLike(c.Request().Context(), actor, c.Param("commentId"))
	if err != nil {
		return err
	}

	msg := "Comment unliked successfully"
	if liked {
		msg = "Comment liked successfully"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": msg, "liked": liked})
}

// DeleteComment deletes a comment (owner only)
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}
	if err := h.cascade.DeleteComment(c.Request().Context(), actor, c.Param("commentId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Comment deleted successfully"))
}
