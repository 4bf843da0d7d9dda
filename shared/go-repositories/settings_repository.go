package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrInvalidSettingsKey = errors.New("invalid settings key")

type SettingsRepository interface {
	// Get returns an empty map for a section that was never written.
	Get(ctx context.Context, section string) (models.Settings, error)
	// Merge overwrites the given top-level keys and keeps the rest.
	Merge(ctx context.Context, section string, values models.Settings) error
}

type settingsRepo struct {
	coll *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) SettingsRepository {
	return &settingsRepo{coll: db.Collection(CollSettings)}
}

func (r *settingsRepo) Get(ctx context.Context, section string) (models.Settings, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": section}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	delete(doc, "_id")
	return models.Settings(doc), nil
}

func (r *settingsRepo) Merge(ctx context.Context, section string, values models.Settings) error {
	set := bson.M{}
	for k, v := range values {
		if k == "_id" || !safeKey(k) || strings.TrimSpace(k) == "" {
			return ErrInvalidSettingsKey
		}
		set[k] = v
	}
	if len(set) == 0 {
		return nil
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": section},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}
