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

// UserLogin carries the profile fields refreshed on every sync. A nil
// Phone leaves the stored number untouched.
type UserLogin struct {
	Email   string
	Name    string
	Picture string
	Phone   *string
	At      time.Time
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)

	RecordLogin(ctx context.Context, id string, login UserLogin) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	SetPreferences(ctx context.Context, id string, prefs models.NotificationPreferences) error
}

type userRepo struct {
	baseRepo[models.User]
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepo{baseRepo: newBaseRepo[models.User](db, CollUsers)}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getByID(ctx, id)
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, capped(int64(len(ids))))
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	return r.find(ctx, bson.M{}, newestFirst("created_at", utils.MaxListScan))
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *userRepo) RecordLogin(ctx context.Context, id string, login UserLogin) (*models.User, error) {
	set := bson.M{"last_login": login.At}
	if login.Email != "" {
		set["email"] = login.Email
	}
	if login.Name != "" {
		set["name"] = login.Name
	}
	if login.Picture != "" {
		set["picture"] = login.Picture
	}
	if login.Phone != nil {
		set["phone"] = *login.Phone
	}

	var out models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id, role string) error {
	return updateOne(ctx, r.coll, id, bson.M{"$set": bson.M{"role": role}})
}

// SetPreferences stores the full preference set, creating a bare user
// record for callers who have never synced.
func (r *userRepo) SetPreferences(ctx context.Context, id string, prefs models.NotificationPreferences) error {
	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{"notification_preferences": prefs},
			"$setOnInsert": bson.M{
				"role":       "user",
				"created_at": now,
				"last_login": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
