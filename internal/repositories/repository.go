package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the addressed document or row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update violates a unique index
	ErrDuplicate = errors.New("record already exists")
)

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// addToSet inserts ref into the list-valued field of one document. The
// update is a single-document write; $addToSet keeps the list free of
// duplicates and appends in insertion order.
func addToSet(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{field: ref},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// pull removes every occurrence of ref from the list-valued field of one document
func pull(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{field: ref},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func emptyIfNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
