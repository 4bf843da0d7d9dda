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

type AppointmentRepository interface {
	// CreatePending admits a pending appointment. It returns
	// utils.ErrDuplicatePending when (user, property) already has one and
	// utils.ErrPendingLimit when the user is at MaxPendingAppointments.
	CreatePending(ctx context.Context, a *models.Appointment) error

	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Appointment, error)
	ListAll(ctx context.Context) ([]*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
}

type appointmentRepo struct {
	baseRepo[models.Appointment]
	guards *mongo.Collection
	client *mongo.Client
}

func NewAppointmentRepository(db *mongo.Database) AppointmentRepository {
	return &appointmentRepo{
		baseRepo: newBaseRepo[models.Appointment](db, CollAppointments),
		guards:   db.Collection(CollAdmissionGuards),
		client:   db.Client(),
	}
}

func (r *appointmentRepo) CreatePending(ctx context.Context, a *models.Appointment) error {
	a.Status = models.AppointmentStatusPending

	err := RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		// Every admission for a user writes the same guard document, so two
		// concurrent admissions conflict and the later one re-runs against
		// the committed counts.
		_, err := r.guards.UpdateOne(sc,
			bson.M{"_id": a.UserID},
			bson.M{"$inc": bson.M{"admissions": 1}, "$set": bson.M{"updated_at": time.Now().UTC()}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}

		dup, err := r.coll.CountDocuments(sc, bson.M{
			"user_id":     a.UserID,
			"property_id": a.PropertyID,
			"status":      models.AppointmentStatusPending,
		})
		if err != nil {
			return err
		}
		if dup > 0 {
			return utils.ErrDuplicatePending
		}

		pending, err := r.coll.CountDocuments(sc, bson.M{
			"user_id": a.UserID,
			"status":  models.AppointmentStatusPending,
		})
		if err != nil {
			return err
		}
		if pending >= models.MaxPendingAppointments {
			return utils.ErrPendingLimit
		}

		_, err = r.coll.InsertOne(sc, a)
		return err
	})
	// The partial unique index closes the window between two concurrent
	// transactions on the same pair.
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrDuplicatePending
	}
	return err
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	return r.getByID(ctx, id)
}

func (r *appointmentRepo) ListByUser(ctx context.Context, userID string) ([]*models.Appointment, error) {
	return r.find(ctx, bson.M{"user_id": userID}, newestFirst("created_at", utils.MaxListScan))
}

func (r *appointmentRepo) ListAll(ctx context.Context) ([]*models.Appointment, error) {
	return r.find(ctx, bson.M{}, newestFirst("created_at", utils.MaxListScan))
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	return updateOne(ctx, r.coll, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
}
