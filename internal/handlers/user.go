package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/middleware"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// ProfileService is the profile use-case surface the handler needs
type ProfileService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Me(ctx context.Context, actor *models.User) (*models.UserView, error)
	Update(ctx context.Context, actor *models.User, req *models.UpdateProfileRequest) (*models.User, error)
	ReplaceBanner(ctx context.Context, actor *models.User, img storage.Image) (*models.User, error)
	ReplacePicture(ctx context.Context, actor *models.User, img storage.Image) (*models.User, error)
}

// UserHandler handles user profile, sync and follow requests
type UserHandler struct {
	profiles   ProfileService
	engagement Engagement
	actors     ActorResolver
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles ProfileService, engagement Engagement, actors ActorResolver) *UserHandler {
	return &UserHandler{profiles: profiles, engagement: engagement, actors: actors}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g, auth *echo.Group) {
	g.GET("/users/profile/:username", h.GetProfile)
	g.GET("/users/profile/id/:userId", h.GetProfileByID)

	auth.POST("/users/sync", h.SyncUser)
	auth.GET("/users/me", h.GetCurrentUser)
	auth.PUT("/users/profile", h.UpdateProfile)
	auth.PUT("/users/profile/banner", h.UpdateBanner)
	auth.PUT("/users/profile/picture", h.UpdatePicture)
	auth.POST("/users/follow/:targetUserId", h.FollowUser)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.profiles.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) GetProfileByID(c echo.Context) error {
	user, err := h.profiles.GetByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

// SyncUser resolves the caller to a local user, creating it on first call
func (h *UserHandler) SyncUser(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return apperrors.New(apperrors.CodeUnauthorized, "Unauthorized")
	}

	user, created, err := h.actors.ResolveOrCreate(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	if !created {
		return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "message": "User already exists"})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user, "message": "User created successfully"})
}

func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}
	view, err := h.profiles.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": view})
}

// UpdateProfile changes the editable profile fields. Fields outside the
// allow-list are ignored.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Request().Context(), actor, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) UpdateBanner(c echo.Context) error {
	return h.replaceImage(c, "bannerImage", "Banner image is required", h.profiles.ReplaceBanner, "Banner updated successfully")
}

func (h *UserHandler) UpdatePicture(c echo.Context) error {
	return h.replaceImage(c, "profileImage", "Profile image is required", h.profiles.ReplacePicture, "Profile picture updated successfully")
}

func (h *UserHandler) replaceImage(c echo.Context, field, missing string,
	replace func(context.Context, *models.User, storage.Image) (*models.User, error), done string) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	img, err := formImage(c, field)
	if err != nil {
		return err
	}
	if img.IsEmpty() {
		return apperrors.Validation(missing)
	}

	user, err := replace(c.Request().Context(), actor, img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "message": done})
}

// FollowUser toggles the caller's follow of the target user
func (h *UserHandler) FollowUser(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	followed, err := h.engagement.ToggleFollow(c.Request().Context(), actor, c.Param("targetUserId"))
	if err != nil {
		return err
	}

	msg := "User unfollowed successfully"
	if followed {
		msg = "User followed successfully"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": msg, "followed": followed})
}
