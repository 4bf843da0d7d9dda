package repositories

import (
	"context"
	"time"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) (bool, error)

	// ExpiredBatch returns raw _id values so malformed ids are still deletable.
	ExpiredBatch(ctx context.Context, cutoff time.Time, limit int64) ([]any, error)
	// DeleteBatch removes ids in one commit, failing with
	// utils.ErrBatchChanged if any of them had already gone.
	DeleteBatch(ctx context.Context, ids []any) error
}

type notificationRepo struct {
	baseRepo[models.Notification]
	client *mongo.Client
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepo{
		baseRepo: newBaseRepo[models.Notification](db, CollNotifications),
		client:   db.Client(),
	}
}

func (r *notificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]*models.Notification, error) {
	return r.find(ctx, bson.M{"user_id": userID}, newestFirst("created_at", limit))
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *notificationRepo) ExpiredBatch(ctx context.Context, cutoff time.Time, limit int64) ([]any, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	cur, err := r.coll.Find(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make([]any, 0, limit)
	for cur.Next(ctx) {
		ids = append(ids, cur.Current.Lookup("_id"))
	}
	return ids, cur.Err()
}

func (r *notificationRepo) DeleteBatch(ctx context.Context, ids []any) error {
	return RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.coll.DeleteMany(sc, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return err
		}
		if res.DeletedCount != int64(len(ids)) {
			return utils.ErrBatchChanged
		}
		return nil
	})
}
