package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FavoriteRepository keeps favorites and the property_watchers index in
// step: every write touches both inside one transaction.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, propertyID string) error
	Remove(ctx context.Context, userID, propertyID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error)
	WatchersOf(ctx context.Context, propertyID string) ([]string, error)
	RemoveProperty(ctx context.Context, propertyID string) error
}

type favoriteRepo struct {
	baseRepo[models.Favorite]
	watchers *mongo.Collection
	client   *mongo.Client
}

func NewFavoriteRepository(db *mongo.Database) FavoriteRepository {
	return &favoriteRepo{
		baseRepo: newBaseRepo[models.Favorite](db, CollFavorites),
		watchers: db.Collection(CollPropertyWatchers),
		client:   db.Client(),
	}
}

func (r *favoriteRepo) Add(ctx context.Context, userID, propertyID string) error {
	id := models.FavoriteID(userID, propertyID)
	return RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		_, err := r.coll.UpdateOne(sc,
			bson.M{"_id": id},
			bson.M{"$setOnInsert": bson.M{
				"user_id":     userID,
				"property_id": propertyID,
				"added_at":    time.Now().UTC(),
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
		_, err = r.watchers.UpdateOne(sc,
			bson.M{"_id": propertyID},
			bson.M{"$addToSet": bson.M{"user_ids": userID}},
			options.Update().SetUpsert(true),
		)
		return err
	})
}

func (r *favoriteRepo) Remove(ctx context.Context, userID, propertyID string) (bool, error) {
	var removed bool
	err := RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.coll.DeleteOne(sc, bson.M{"_id": models.FavoriteID(userID, propertyID)})
		if err != nil {
			return err
		}
		removed = res.DeletedCount > 0
		_, err = r.watchers.UpdateOne(sc,
			bson.M{"_id": propertyID},
			bson.M{"$pull": bson.M{"user_ids": userID}},
		)
		return err
	})
	return removed, err
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error) {
	return r.find(ctx, bson.M{"user_id": userID}, newestFirst("added_at", utils.MaxListScan))
}

func (r *favoriteRepo) WatchersOf(ctx context.Context, propertyID string) ([]string, error) {
	var w models.PropertyWatchers
	err := r.watchers.FindOne(ctx, bson.M{"_id": propertyID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return w.UserIDs, nil
}

// RemoveProperty drops every favorite of a deleted listing and its index
// entry.
func (r *favoriteRepo) RemoveProperty(ctx context.Context, propertyID string) error {
	return RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.coll.DeleteMany(sc, bson.M{"property_id": propertyID}); err != nil {
			return err
		}
		_, err := r.watchers.DeleteOne(sc, bson.M{"_id": propertyID})
		return err
	})
}
