package repositories

import (
	"context"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type InquiryRepository interface {
	Create(ctx context.Context, inq *models.Inquiry) error
	GetByID(ctx context.Context, id string) (*models.Inquiry, error)
	ListAll(ctx context.Context) ([]*models.Inquiry, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Inquiry, error)

	LeadStore
}

type inquiryRepo struct {
	baseRepo[models.Inquiry]
}

func NewInquiryRepository(db *mongo.Database) InquiryRepository {
	return &inquiryRepo{baseRepo: newBaseRepo[models.Inquiry](db, CollInquiries)}
}

func (r *inquiryRepo) Create(ctx context.Context, inq *models.Inquiry) error {
	_, err := r.coll.InsertOne(ctx, inq)
	return err
}

func (r *inquiryRepo) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	return r.getByID(ctx, id)
}

func (r *inquiryRepo) ListAll(ctx context.Context) ([]*models.Inquiry, error) {
	return r.find(ctx, bson.M{}, newestFirst("timestamp", utils.MaxListScan))
}

func (r *inquiryRepo) ListByUser(ctx context.Context, userID string) ([]*models.Inquiry, error) {
	return r.find(ctx, bson.M{"user_id": userID}, newestFirst("timestamp", utils.MaxListScan))
}

func (r *inquiryRepo) UpdateLead(ctx context.Context, id string, patch LeadPatch) error {
	set := bson.M{}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Source != nil {
		set["source"] = *patch.Source
	}
	return applyLeadPatch(ctx, r.coll, id, set)
}

func (r *inquiryRepo) AppendNote(ctx context.Context, id string, note models.LeadNote) error {
	return appendNote(ctx, r.coll, id, note)
}

func (r *inquiryRepo) CountByLeadStatus(ctx context.Context) (map[string]int64, error) {
	return countByField(ctx, r.coll, "status")
}
