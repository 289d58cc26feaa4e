package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/identity"
	"github.com/anonto42/social-graph/backend/internal/middleware"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// maxImageBytes caps multipart image uploads at 5 MiB
const maxImageBytes = 5 << 20

// ActorResolver maps the authenticated principal onto a local user
type ActorResolver interface {
	ResolveOrCreate(ctx context.Context, principal *identity.Principal) (*models.User, bool, error)
	Lookup(ctx context.Context, externalID string) (*models.User, error)
}

// Engagement toggles likes and follows
type Engagement interface {
	TogglePostLike(ctx context.Context, actor *models.User, postID string) (bool, error)
	ToggleCommentLike(ctx context.Context, actor *models.User, commentID string) (bool, error)
	ToggleFollow(ctx context.Context, actor *models.User, targetRef string) (bool, error)
}

// Cascade deletes posts and comments
type Cascade interface {
	DeletePost(ctx context.Context, actor *models.User, postID string) error
	DeleteComment(ctx context.Context, actor *models.User, commentID string) error
}

// currentActor returns the synced user behind the request's principal
func currentActor(c echo.Context, actors ActorResolver) (*models.User, error) {
	principal, ok := middleware.Principal(c)
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Unauthorized")
	}
	return actors.Lookup(c.Request().Context(), principal.UID)
}

// formImage reads an optional image file from a multipart form. A request
// without the field yields an empty image.
func formImage(c echo.Context, field string) (storage.Image, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return storage.Image{}, nil
		}
		return storage.Image{}, apperrors.Validation("Invalid multipart form")
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return storage.Image{}, apperrors.Validation("Only image files are allowed")
	}
	if fh.Size > maxImageBytes {
		return storage.Image{}, apperrors.Validation(fmt.Sprintf("Image must be at most %d MB", maxImageBytes>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return storage.Image{}, apperrors.Internal("failed to open upload", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		return storage.Image{}, apperrors.Internal("failed to read upload", err)
	}
	if len(data) > maxImageBytes {
		return storage.Image{}, apperrors.Validation(fmt.Sprintf("Image must be at most %d MB", maxImageBytes>>20))
	}
	return storage.Image{Data: data, ContentType: contentType}, nil
}

// bindAndValidate binds the request body and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	return c.Validate(req)
}

func message(text string) map[string]interface{} {
	return map[string]interface{}{"message": text}
}
