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

type BlogRepository interface {
	Create(ctx context.Context, b *models.Blog) error
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListPublished(ctx context.Context, category string, limit int64) ([]*models.Blog, error)
	ListAll(ctx context.Context) ([]*models.Blog, error)
	Update(ctx context.Context, id string, set bson.M) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) (bool, error)
}

type blogRepo struct {
	baseRepo[models.Blog]
}

func NewBlogRepository(db *mongo.Database) BlogRepository {
	return &blogRepo{baseRepo: newBaseRepo[models.Blog](db, CollBlogs)}
}

func (r *blogRepo) Create(ctx context.Context, b *models.Blog) error {
	_, err := r.coll.InsertOne(ctx, b)
	return err
}

func (r *blogRepo) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	return r.getByID(ctx, id)
}

func (r *blogRepo) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	found, err := r.find(ctx, bson.M{"slug": slug}, capped(1))
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *blogRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *blogRepo) ListPublished(ctx context.Context, category string, limit int64) ([]*models.Blog, error) {
	filter := bson.M{"published": true}
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, filter, newestFirst("created_at", limit))
}

func (r *blogRepo) ListAll(ctx context.Context) ([]*models.Blog, error) {
	return r.find(ctx, bson.M{}, newestFirst("created_at", utils.MaxListScan))
}

func (r *blogRepo) Update(ctx context.Context, id string, set bson.M) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()
	return updateOne(ctx, r.coll, id, bson.M{"$set": set})
}

func (r *blogRepo) IncrementViews(ctx context.Context, id string) error {
	return updateOne(ctx, r.coll, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *blogRepo) Delete(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, id)
}

type BlogCategoryRepository interface {
	List(ctx context.Context) ([]*models.BlogCategory, error)
	Create(ctx context.Context, c *models.BlogCategory) error
}

type blogCategoryRepo struct {
	baseRepo[models.BlogCategory]
}

func NewBlogCategoryRepository(db *mongo.Database) BlogCategoryRepository {
	return &blogCategoryRepo{baseRepo: newBaseRepo[models.BlogCategory](db, CollBlogCategories)}
}

func (r *blogCategoryRepo) List(ctx context.Context) ([]*models.BlogCategory, error) {
	return r.find(ctx, bson.M{}, capped(utils.MaxListScan).SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *blogCategoryRepo) Create(ctx context.Context, c *models.BlogCategory) error {
	_, err := r.coll.InsertOne(ctx, c)
	return err
}
