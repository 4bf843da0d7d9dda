package repositories

import (
	"context"
	"errors"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
baseRepo holds one collection and knows how to decode documents of type T.
Concrete repositories embed it and get:

	• getByID(ctx, id)          (nil, nil when absent)
	• find(ctx, filter, opts)   (undecodable documents are skipped)
	• deleteByID(ctx, id)
*/
type baseRepo[T any] struct {
	coll *mongo.Collection
}

func newBaseRepo[T any](db *mongo.Database, collection string) baseRepo[T] {
	return baseRepo[T]{coll: db.Collection(collection)}
}

func (b baseRepo[T]) getByID(ctx context.Context, id string) (*T, error) {
	var out T
	err := b.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (b baseRepo[T]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := b.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](ctx, cur, b.coll.Name())
}

func (b baseRepo[T]) deleteByID(ctx context.Context, id string) (bool, error) {
	res, err := b.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// decodeAll drains cur one document at a time. A document that does not
// fit T is logged and skipped so one corrupt record never fails a listing.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, collection string) ([]*T, error) {
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			id, _ := cur.Current.Lookup("_id").StringValueOK()
			utils.Logger.WithError(err).
				WithField("collection", collection).
				WithField("id", id).
				Warn("Skipping undecodable document")
			continue
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// capped returns find options limited to n documents.
func capped(n int64) *options.FindOptions {
	return options.Find().SetLimit(n)
}
