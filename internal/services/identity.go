package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/identity"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"go.uber.org/zap"
)

const maxUsernameAttempts = 5

// IdentityResolver maps provider identities onto local users
type IdentityResolver struct {
	users    repositories.UserRepository
	provider identity.Provider
	log      *zap.Logger
	suffix   func() string
}

func NewIdentityResolver(users repositories.UserRepository, provider identity.Provider, log *zap.Logger) *IdentityResolver {
	return &IdentityResolver{
		users:    users,
		provider: provider,
		log:      log,
		suffix:   randomSuffix,
	}
}

// ResolveOrCreate returns the user bound to the principal, creating it from
// the provider profile on first sight. created reports whether this call
// inserted the record.
func (r *IdentityResolver) ResolveOrCreate(ctx context.Context, principal *identity.Principal) (*models.User, bool, error) {
	user, err := r.users.GetUserByExternalID(ctx, principal.UID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, apperrors.Internal("failed to load user", err)
	}

	profile, err := r.provider.LookupProfile(ctx, principal)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeUpstreamIdentity, "Failed to fetch identity profile", err)
	}

	base := BaseUsername(profile.Email)
	if base == "" {
		base = "user" + r.suffix()
	}

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = base + r.suffix()
		}

		user = &models.User{
			ExternalID:     principal.UID,
			Email:          profile.Email,
			Username:       candidate,
			FirstName:      profile.FirstName,
			LastName:       profile.LastName,
			ProfilePicture: profile.PhotoURL,
		}
		err = r.users.CreateUser(ctx, user)
		if err == nil {
			r.log.Info("user created",
				zap.String("user_id", user.ID.Hex()), zap.String("username", user.Username))
			return user, true, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, false, apperrors.Internal("failed to create user", err)
		}

		// a concurrent sync of the same identity may have won the insert
		if existing, lookupErr := r.users.GetUserByExternalID(ctx, principal.UID); lookupErr == nil {
			return existing, false, nil
		}
	}

	return nil, false, apperrors.New(apperrors.CodeDuplicateUsername,
		fmt.Sprintf("Could not find a free username for %q", base))
}

// Lookup returns the local user for an already synced identity
func (r *IdentityResolver) Lookup(ctx context.Context, externalID string) (*models.User, error) {
	user, err := r.users.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// BaseUsername derives a username from the local part of an email address,
// keeping only lowercase letters, digits, dots and underscores.
func BaseUsername(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomSuffix() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}
