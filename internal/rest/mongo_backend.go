package rest

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// documentValidationCode is the server error code for a write rejected by
// the collection's JSON-schema validator.
const documentValidationCode = 121

// MongoBackend serves resources persisted as documents. Callers assign
// document IDs up front; Create does not write the generated ID back.
type MongoBackend[T any] struct {
	coll *mongo.Collection
}

func NewMongoBackend[T any](coll *mongo.Collection) *MongoBackend[T] {
	return &MongoBackend[T]{coll: coll}
}

func (b *MongoBackend[T]) FetchOne(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var obj T
	err = b.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&obj)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &obj, nil
}

func (b *MongoBackend[T]) FetchMany(ctx context.Context, filters Filters, page PageParams) ([]T, int64, error) {
	filter := bson.M{}
	for k, v := range filters {
		filter[k] = v
	}

	total, err := b.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	paging := ComputePaging(total, page)

	opts := options.Find().
		SetSkip(int64(paging.Offset)).
		SetLimit(int64(paging.PageSize))

	cursor, err := b.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []T
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (b *MongoBackend[T]) Create(ctx context.Context, obj *T) error {
	if _, err := b.coll.InsertOne(ctx, obj); err != nil {
		if isValidationFailure(err) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, err.Error())
		}
		return err
	}
	return nil
}

func (b *MongoBackend[T]) Update(ctx context.Context, id string, obj *T) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := b.coll.ReplaceOne(ctx, bson.M{"_id": oid}, obj)
	if err != nil {
		if isValidationFailure(err) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, err.Error())
		}
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *MongoBackend[T]) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := b.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func isValidationFailure(err error) bool {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == documentValidationCode {
				return true
			}
		}
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == documentValidationCode {
		return true
	}
	return false
}
