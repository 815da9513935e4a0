// Package repo provides a small generic repository over a MongoDB
// collection. Every entity in this app is a single document owned by one
// user, so a handful of operations cover all of them, each taking a plain
// bson filter.
package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no document matches the filter.
var ErrNotFound = errors.New("document not found")

type Repo[T any] struct {
	coll *mongo.Collection
}

func New[T any](db *mongo.Database, collection string) *Repo[T] {
	return &Repo[T]{coll: db.Collection(collection)}
}

func (r *Repo[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *Repo[T]) Find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	findOptions := options.Find()
	if sort != nil {
		findOptions.SetSort(sort)
	}

	cursor, err := r.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Upsert creates the document matching filter if absent, otherwise merges
// set over it, and returns the persisted document. The whole operation is a
// single FindOneAndUpdate, so concurrent upserts for the same key resolve to
// one of the submitted payloads, never a mix. Calling it twice with the same
// set yields the same stored state.
func (r *Repo[T]) Upsert(ctx context.Context, filter bson.M, set bson.M) (*T, error) {
	now := time.Now()
	update := bson.M{
		"$set":         mergeSet(set, bson.M{"updatedAt": now}),
		"$setOnInsert": bson.M{"createdAt": now},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc T
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update merges set over an existing document matching filter and returns
// the result; ErrNotFound if nothing matches. Unlike Upsert it never
// inserts, which is what id-scoped updates need.
func (r *Repo[T]) Update(ctx context.Context, filter bson.M, set bson.M) (*T, error) {
	update := bson.M{"$set": mergeSet(set, bson.M{"updatedAt": time.Now()})}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Insert creates a new document from set with a generated id.
func (r *Repo[T]) Insert(ctx context.Context, set bson.M) (*T, error) {
	return r.Upsert(ctx, bson.M{"_id": primitive.NewObjectID()}, set)
}

// Delete removes the document matching filter and returns it, so callers
// can clean up attachments the document referenced. ErrNotFound when nothing
// matched.
func (r *Repo[T]) Delete(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func mergeSet(set bson.M, extra bson.M) bson.M {
	merged := bson.M{}
	for k, v := range set {
		merged[k] = v
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}
