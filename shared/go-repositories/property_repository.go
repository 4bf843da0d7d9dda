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

// PropertyQuery holds the filters the store can apply itself. Price and
// free-text filters run in the service because prices are display strings.
type PropertyQuery struct {
	Type        string
	MinBedrooms int
}

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id string) (*models.Property, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Property, error)
	List(ctx context.Context, q PropertyQuery) ([]*models.Property, error)
	TopByViews(ctx context.Context, n int64) ([]*models.Property, error)
	Count(ctx context.Context) (int64, error)

	// Update applies set and appends entry to the history ledger in one
	// write. Returns utils.ErrNotFound when id does not exist.
	Update(ctx context.Context, id string, set bson.M, entry models.HistoryEntry) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) (bool, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	baseRepo[models.Property]
}

func NewPropertyRepository(db *mongo.Database) PropertyRepository {
	return &propertyRepo{baseRepo: newBaseRepo[models.Property](db, CollProperties)}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	return r.getByID(ctx, id)
}

func (r *propertyRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Property, error) {
	if len(ids) == 0 {
		return []*models.Property{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, capped(int64(len(ids))))
}

func (r *propertyRepo) List(ctx context.Context, q PropertyQuery) ([]*models.Property, error) {
	filter := bson.M{}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.MinBedrooms > 0 {
		filter["bedrooms"] = bson.M{"$gte": q.MinBedrooms}
	}
	opts := capped(utils.MaxListScan).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *propertyRepo) TopByViews(ctx context.Context, n int64) ([]*models.Property, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(n).
		SetProjection(bson.M{"history": 0})
	return r.find(ctx, bson.M{}, opts)
}

func (r *propertyRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *propertyRepo) Update(ctx context.Context, id string, set bson.M, entry models.HistoryEntry) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":  set,
		"$push": bson.M{"history": entry},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *propertyRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *propertyRepo) Delete(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, id)
}
