package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProfileService reads and edits user profiles
type ProfileService struct {
	users repositories.UserRepository
	media storage.Host
	log   *zap.Logger
}

func NewProfileService(users repositories.UserRepository, media storage.Host, log *zap.Logger) *ProfileService {
	return &ProfileService{users: users, media: media, log: log}
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

func (s *ProfileService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// Me returns the actor with followers and following populated
func (s *ProfileService) Me(ctx context.Context, actor *models.User) (*models.UserView, error) {
	var followers, following []models.UserSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followers, err = orderedSummaries(gctx, s.users, actor.Followers)
		return err
	})
	g.Go(func() error {
		var err error
		following, err = orderedSummaries(gctx, s.users, actor.Following)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models.NewUserView(actor, followers, following), nil
}

// Update applies the allow-listed fields of req to the actor's profile
func (s *ProfileService) Update(ctx context.Context, actor *models.User, req *models.UpdateProfileRequest) (*models.User, error) {
	trim(req.FirstName)
	trim(req.LastName)
	trim(req.Bio)
	trim(req.Location)
	if req.Username != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Username))
		req.Username = &normalized
		if normalized == actor.Username {
			req.Username = nil
		}
	}
	if req.IsEmpty() {
		return actor, nil
	}

	if req.Username != nil {
		taken, err := s.users.UsernameExists(ctx, *req.Username)
		if err != nil {
			return nil, apperrors.Internal("failed to check username", err)
		}
		if taken {
			return nil, apperrors.New(apperrors.CodeDuplicateUsername, "Username is already taken")
		}
	}

	user, err := s.users.UpdateProfile(ctx, actor.ID, req)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.New(apperrors.CodeDuplicateUsername, "Username is already taken")
		}
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// ReplaceBanner uploads a new banner, stores its URL and then deletes the
// previous banner.
func (s *ProfileService) ReplaceBanner(ctx context.Context, actor *models.User, img storage.Image) (*models.User, error) {
	return s.replaceImage(ctx, actor, img, storage.BannerImage, actor.BannerImage, s.users.SetBannerImage)
}

// ReplacePicture uploads a new profile picture, stores its URL and then
// deletes the previous picture.
func (s *ProfileService) ReplacePicture(ctx context.Context, actor *models.User, img storage.Image) (*models.User, error) {
	return s.replaceImage(ctx, actor, img, storage.ProfilePicture, actor.ProfilePicture, s.users.SetProfilePicture)
}

func (s *ProfileService) replaceImage(ctx context.Context, actor *models.User, img storage.Image, preset storage.Preset,
	previous string, persist func(context.Context, primitive.ObjectID, string) (*models.User, error)) (*models.User, error) {
	if img.IsEmpty() {
		return nil, apperrors.Validation("Image file is required")
	}

	url, err := storage.UploadWithFallback(ctx, s.media, img, preset, s.log)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamMedia, "Failed to upload image", err).WithDetails(err.Error())
	}

	user, err := persist(ctx, actor.ID, url)
	if err != nil {
		if delErr := s.media.Delete(ctx, url); delErr != nil {
			s.log.Warn("failed to clean up unused upload", zap.String("image", url), zap.Error(delErr))
		}
		return nil, storeError(err, "User not found")
	}

	if previous != "" && previous != url {
		if err := s.media.Delete(ctx, previous); err != nil && !errors.Is(err, storage.ErrForeignURL) {
			s.log.Warn("failed to delete previous image",
				zap.String("user_id", actor.ID.Hex()), zap.String("image", previous), zap.Error(err))
		}
	}
	return user, nil
}

func trim(field *string) {
	if field != nil {
		*field = strings.TrimSpace(*field)
	}
}
