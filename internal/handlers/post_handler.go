package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// PostService is the post use-case surface the handler needs
type PostService interface {
	List(ctx context.Context, skip, limit int64) ([]models.PostView, error)
	Get(ctx context.Context, postID string) (*models.PostView, error)
	ListByUsername(ctx context.Context, username string) ([]models.PostView, error)
	Create(ctx context.Context, actor *models.User, content string, img storage.Image) (*models.PostView, error)
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts      PostService
	engagement Engagement
	cascade    Cascade
	actors     ActorResolver
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts PostService, engagement Engagement, cascade Cascade, actors ActorResolver) *PostHandler {
	return &PostHandler{posts: posts, engagement: engagement, cascade: cascade, actors: actors}
}

// RegisterPostRoutes registers the public routes on g and the mutating
// routes on auth
func (h *PostHandler) RegisterPostRoutes(g, auth *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:postId", h.GetPost)
	g.GET("/posts/user/:username", h.GetUserPosts)

	auth.POST("/posts", h.CreatePost)
	auth.POST("/posts/:postId/like", h.LikePost)
	auth.DELETE("/posts/:postId", h.DeletePost)
}

// GetPosts lists posts newest first; skip and limit are optional
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, err := queryInt(c, "skip")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	posts, err := h.posts.List(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"posts": posts})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"post": post})
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.posts.ListByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"posts": posts})
}

// CreatePost accepts JSON (content, image as data URI or URL) or a
// multipart form with an "image" file.
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	img, err := formImage(c, "image")
	if err != nil {
		return err
	}
	if img.IsEmpty() {
		img.Source = req.Image
	}

	post, err := h.posts.Create(c.Request().Context(), actor, req.Content, img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"post": post})
}

func (h *PostHandler) LikePost(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	liked, err := h.engagement.TogglePostLike(c.Request().Context(), actor, c.Param("postId"))
	if err != nil {
		return err
	}

	msg := "Post unliked successfully"
	if liked {
		msg = "Post liked successfully"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": msg, "liked": liked})
}

// DeletePost deletes a post and its comments (owner only)
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}
	if err := h.cascade.DeletePost(c.Request().Context(), actor, c.Param("postId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Post deleted successfully"))
}

func queryInt(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, apperrors.Validation("Invalid " + name + " parameter")
	}
	return n, nil
}
