package repositories

import (
	"context"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type PropertyRequestRepository interface {
	Create(ctx context.Context, pr *models.PropertyRequest) error
	GetByID(ctx context.Context, id string) (*models.PropertyRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*models.PropertyRequest, error)
	ListAll(ctx context.Context) ([]*models.PropertyRequest, error)
	ListActive(ctx context.Context) ([]*models.PropertyRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error

	LeadStore
}

type propertyRequestRepo struct {
	baseRepo[models.PropertyRequest]
}

func NewPropertyRequestRepository(db *mongo.Database) PropertyRequestRepository {
	return &propertyRequestRepo{baseRepo: newBaseRepo[models.PropertyRequest](db, CollPropertyRequests)}
}

func (r *propertyRequestRepo) Create(ctx context.Context, pr *models.PropertyRequest) error {
	_, err := r.coll.InsertOne(ctx, pr)
	return err
}

func (r *propertyRequestRepo) GetByID(ctx context.Context, id string) (*models.PropertyRequest, error) {
	return r.getByID(ctx, id)
}

func (r *propertyRequestRepo) ListByUser(ctx context.Context, userID string) ([]*models.PropertyRequest, error) {
	return r.find(ctx, bson.M{"user_id": userID}, newestFirst("created_at", utils.MaxListScan))
}

func (r *propertyRequestRepo) ListAll(ctx context.Context) ([]*models.PropertyRequest, error) {
	return r.find(ctx, bson.M{}, newestFirst("created_at", utils.MaxListScan))
}

func (r *propertyRequestRepo) ListActive(ctx context.Context) ([]*models.PropertyRequest, error) {
	return r.find(ctx, bson.M{"status": models.RequestStatusActive}, capped(utils.MaxListScan))
}

func (r *propertyRequestRepo) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	return updateOne(ctx, r.coll, id, bson.M{"$set": bson.M{"status": status}})
}

func (r *propertyRequestRepo) UpdateLead(ctx context.Context, id string, patch LeadPatch) error {
	set := bson.M{}
	if patch.Status != nil {
		set["lead_status"] = *patch.Status
	}
	if patch.Source != nil {
		set["source"] = *patch.Source
	}
	return applyLeadPatch(ctx, r.coll, id, set)
}

func (r *propertyRequestRepo) AppendNote(ctx context.Context, id string, note models.LeadNote) error {
	return appendNote(ctx, r.coll, id, note)
}

func (r *propertyRequestRepo) CountByLeadStatus(ctx context.Context) (map[string]int64, error) {
	return countByField(ctx, r.coll, "lead_status")
}
