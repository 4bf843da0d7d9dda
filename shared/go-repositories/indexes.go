package repositories

import (
	"context"
	"fmt"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func asc(fields ...string) bson.D {
	d := bson.D{}
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: 1})
	}
	return d
}

// EnsureIndexes creates every index the repositories rely on. It is
// idempotent and runs at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollProperties: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "views", Value: -1}}},
			{Keys: asc("type", "bedrooms")},
		},
		CollPropertyRequests: {
			{Keys: asc("status")},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollInquiries: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		CollAppointments: {
			{Keys: asc("user_id", "status")},
			{
				Keys: asc("user_id", "property_id"),
				Options: options.Index().
					SetName("uniq_pending_user_property").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": models.AppointmentStatusPending}),
			},
		},
		// Creating the index also creates the collection, which must exist
		// before the admission transaction writes to it.
		CollAdmissionGuards: {
			{Keys: asc("updated_at")},
		},
		CollFavorites: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "added_at", Value: -1}}},
			{Keys: asc("property_id")},
		},
		CollEvents: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		CollNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: asc("created_at")},
		},
		CollBlogs: {
			{Keys: asc("slug"), Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "published", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollBlogCategories: {
			{Keys: asc("name")},
		},
		CollConversations: {
			{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
		CollMessages: {
			{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
		utils.Logger.Debugf("Indexes ensured on %s", coll)
	}
	return nil
}
