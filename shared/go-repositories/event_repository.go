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

// ExpiredEvent is the minimal view of an event selected for deletion. Type
// and Month are empty when the stored document lacks a usable value.
type ExpiredEvent struct {
	// ID is the raw _id, whatever its BSON type.
	ID    any
	Type  string
	Month string
}

type EventRepository interface {
	Insert(ctx context.Context, e *models.Event) error
	Recent(ctx context.Context, n int64) ([]*models.Event, error)
	RecentByType(ctx context.Context, t models.EventType, n int64) ([]*models.Event, error)

	// IncrementGeneral atomically bumps one stats/general counter.
	IncrementGeneral(ctx context.Context, field string) error
	GeneralStats(ctx context.Context) (*models.GeneralStats, error)
	MonthlyStats(ctx context.Context) ([]*models.MonthlyStats, error)

	// ExpiredBatch returns up to limit events older than cutoff.
	ExpiredBatch(ctx context.Context, cutoff time.Time, limit int64) ([]ExpiredEvent, error)
	// DeleteAndRollUp deletes ids and applies the per-month counters in a
	// single commit. It aborts with utils.ErrBatchChanged when another
	// writer removed part of the batch first.
	DeleteAndRollUp(ctx context.Context, ids []any, rollup map[string]map[string]int64) error
}

type eventRepo struct {
	baseRepo[models.Event]
	stats   *mongo.Collection
	monthly *mongo.Collection
	client  *mongo.Client
}

func NewEventRepository(db *mongo.Database) EventRepository {
	return &eventRepo{
		baseRepo: newBaseRepo[models.Event](db, CollEvents),
		stats:    db.Collection(CollStats),
		monthly:  db.Collection(CollMonthlyStats),
		client:   db.Client(),
	}
}

func (r *eventRepo) Insert(ctx context.Context, e *models.Event) error {
	_, err := r.coll.InsertOne(ctx, e)
	return err
}

func (r *eventRepo) Recent(ctx context.Context, n int64) ([]*models.Event, error) {
	return r.find(ctx, bson.M{}, newestFirst("timestamp", n))
}

func (r *eventRepo) RecentByType(ctx context.Context, t models.EventType, n int64) ([]*models.Event, error) {
	return r.find(ctx, bson.M{"type": t}, newestFirst("timestamp", n))
}

func (r *eventRepo) IncrementGeneral(ctx context.Context, field string) error {
	_, err := r.stats.UpdateOne(ctx,
		bson.M{"_id": models.GeneralStatsID},
		bson.M{"$inc": bson.M{field: 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *eventRepo) GeneralStats(ctx context.Context) (*models.GeneralStats, error) {
	var s models.GeneralStats
	err := r.stats.FindOne(ctx, bson.M{"_id": models.GeneralStatsID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.GeneralStats{ID: models.GeneralStatsID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *eventRepo) MonthlyStats(ctx context.Context) ([]*models.MonthlyStats, error) {
	cur, err := r.monthly.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.MonthlyStats](ctx, cur, CollMonthlyStats)
}

func (r *eventRepo) ExpiredBatch(ctx context.Context, cutoff time.Time, limit int64) ([]ExpiredEvent, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "type": 1, "timestamp": 1})
	cur, err := r.coll.Find(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	// Read raw fields so a malformed document is still deletable.
	out := make([]ExpiredEvent, 0, limit)
	for cur.Next(ctx) {
		raw := cur.Current
		ev := ExpiredEvent{ID: raw.Lookup("_id")}
		ev.Type, _ = raw.Lookup("type").StringValueOK()
		if ms, ok := raw.Lookup("timestamp").DateTimeOK(); ok {
			ev.Month = models.MonthKey(time.UnixMilli(ms))
		}
		out = append(out, ev)
	}
	return out, cur.Err()
}

func (r *eventRepo) DeleteAndRollUp(ctx context.Context, ids []any, rollup map[string]map[string]int64) error {
	return RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.coll.DeleteMany(sc, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return err
		}
		if res.DeletedCount != int64(len(ids)) {
			return utils.ErrBatchChanged
		}
		for month, counts := range rollup {
			inc := bson.M{}
			for t, n := range counts {
				if safeKey(t) {
					inc[t] = n
				}
			}
			if len(inc) == 0 {
				continue
			}
			if _, err := r.monthly.UpdateOne(sc,
				bson.M{"_id": month},
				bson.M{"$inc": inc},
				options.Update().SetUpsert(true),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
