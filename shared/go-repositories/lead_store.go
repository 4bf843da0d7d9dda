package repositories

import (
	"context"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeadPatch is the partial update accepted on a lead. Nil fields are left
// untouched.
type LeadPatch struct {
	Status *models.LeadStatus
	Source *string
}

// LeadStore is implemented by both collections that back the lead view.
type LeadStore interface {
	UpdateLead(ctx context.Context, id string, patch LeadPatch) error
	AppendNote(ctx context.Context, id string, note models.LeadNote) error
	CountByLeadStatus(ctx context.Context) (map[string]int64, error)
}

func applyLeadPatch(ctx context.Context, coll *mongo.Collection, id string, set bson.M) error {
	if len(set) == 0 {
		// Nothing to write, but a missing lead must still be reported.
		n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return utils.ErrNotFound
		}
		return nil
	}
	return updateOne(ctx, coll, id, bson.M{"$set": set})
}

// appendNote adds note with set-union semantics: existing notes are never
// rewritten and an identical note is stored once.
func appendNote(ctx context.Context, coll *mongo.Collection, id string, note models.LeadNote) error {
	return updateOne(ctx, coll, id, bson.M{"$addToSet": bson.M{"notes": note}})
}

func updateOne(ctx context.Context, coll *mongo.Collection, id string, update bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// countByField groups the whole collection by field. Documents lacking the
// field are reported under "".
func countByField(ctx context.Context, coll *mongo.Collection, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, ""}}}},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			Key any   `bson:"_id"`
			N   int64 `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		key, _ := row.Key.(string) // non-string statuses fall into ""
		out[key] += row.N
	}
	return out, cur.Err()
}

func newestFirst(field string, limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
}
