// Package services holds the use cases behind the HTTP handlers: identity
// resolution, the engagement toggles, cascading deletes, notifications and
// the read paths that populate references for responses.
package services

import (
	"context"
	"errors"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID turns a hex path parameter into an ObjectID
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid " + what + " id")
	}
	return id, nil
}

// storeError maps a repository error onto the application taxonomy
func storeError(err error, notFound string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Internal("storage failure", err)
}

// userSummaries loads the users behind ids, keyed by id. Missing users are
// simply absent from the map.
func userSummaries(ctx context.Context, users repositories.UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	unique := dedupe(ids)
	found, err := users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, apperrors.Internal("failed to load users", err)
	}

	out := make(map[primitive.ObjectID]*models.UserSummary, len(found))
	for i := range found {
		summary := found[i].Summary()
		out[found[i].ID] = &summary
	}
	return out, nil
}

// orderedSummaries returns the summaries of ids in the order given
func orderedSummaries(ctx context.Context, users repositories.UserRepository, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	byID, err := userSummaries(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
