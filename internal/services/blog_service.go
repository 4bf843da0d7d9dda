package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// Paging bounds for GET /api/blogs.
const (
	DefaultBlogPageSize = 10
	MaxBlogPageSize     = 50
)

type BlogService interface {
	ListPublished(ctx context.Context, category string, limit int) ([]*models.Blog, error)
	// ViewBySlug returns a published post and counts the view.
	ViewBySlug(ctx context.Context, slug string) (*models.Blog, error)
	ListAll(ctx context.Context) ([]*models.Blog, error)
	CreateBlog(ctx context.Context, req dtos.CreateBlogRequest) (*models.Blog, error)
	UpdateBlog(ctx context.Context, id string, req dtos.UpdateBlogRequest) error
	DeleteBlog(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]*models.BlogCategory, error)
	CreateCategory(ctx context.Context, name string) (*models.BlogCategory, error)
}

type blogService struct {
	repo         repositories.BlogRepository
	categoryRepo repositories.BlogCategoryRepository
	now          func() time.Time
}

func NewBlogService(repo repositories.BlogRepository, categoryRepo repositories.BlogCategoryRepository) BlogService {
	return &blogService{repo: repo, categoryRepo: categoryRepo, now: time.Now}
}

func (s *blogService) ListPublished(ctx context.Context, category string, limit int) ([]*models.Blog, error) {
	limit = utils.ClampInt(limit, DefaultBlogPageSize, 1, MaxBlogPageSize)
	list, err := s.repo.ListPublished(ctx, category, int64(limit))
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *blogService) ViewBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	b, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if b == nil || !b.Published {
		return nil, utils.NewNotFoundError("Blog not found")
	}
	if err := s.repo.IncrementViews(ctx, b.ID); err != nil {
		utils.Logger.WithError(err).WithField("blog_id", b.ID).Warn("Failed to count blog view")
	} else {
		b.Views++
	}
	return b, nil
}

func (s *blogService) ListAll(ctx context.Context) ([]*models.Blog, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *blogService) CreateBlog(ctx context.Context, req dtos.CreateBlogRequest) (*models.Blog, error) {
	title := utils.SanitizeText(req.Title)
	content := utils.SanitizeHTML(req.Content)
	if title == "" || content == "" {
		return nil, utils.NewValidationError("Title and Content are required", nil)
	}

	slug := utils.Slugify(title)
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	taken, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	now := s.now().UTC()
	if taken {
		slug = fmt.Sprintf("%s-%d", slug, now.Unix())
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = utils.SanitizeText(t); t != "" {
			tags = append(tags, t)
		}
	}

	b := &models.Blog{
		ID:        uuid.NewString(),
		Title:     title,
		Slug:      slug,
		Content:   content,
		Excerpt:   utils.SanitizeText(req.Excerpt),
		Image:     req.Image,
		Category:  utils.SanitizeText(req.Category),
		Author:    utils.SanitizeText(req.Author),
		Tags:      tags,
		Published: utils.Val(req.Published),
		Featured:  req.Featured,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &utils.AppError{
				StatusCode: http.StatusConflict,
				Code:       utils.ErrCodeConflict,
				Message:    "A blog with this slug already exists",
				Err:        err,
			}
		}
		return nil, utils.NewInternalError(err)
	}
	return b, nil
}

// UpdateBlog never touches the slug.
func (s *blogService) UpdateBlog(ctx context.Context, id string, req dtos.UpdateBlogRequest) error {
	set := bson.M{}
	if req.Title != nil {
		if t := utils.SanitizeText(*req.Title); t != "" {
			set["title"] = t
		}
	}
	if req.Content != nil {
		if c := utils.SanitizeHTML(*req.Content); c != "" {
			set["content"] = c
		}
	}
	if req.Excerpt != nil {
		set["excerpt"] = utils.SanitizeText(*req.Excerpt)
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.Category != nil {
		set["category"] = utils.SanitizeText(*req.Category)
	}
	if req.Published != nil {
		set["published"] = *req.Published
	}
	if req.Featured != nil {
		set["featured"] = *req.Featured
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("Blog not found")
		}
		return utils.NewInternalError(err)
	}
	return nil
}

func (s *blogService) DeleteBlog(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if !deleted {
		return utils.NewNotFoundError("Blog not found")
	}
	return nil
}

func (s *blogService) ListCategories(ctx context.Context) ([]*models.BlogCategory, error) {
	list, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *blogService) CreateCategory(ctx context.Context, name string) (*models.BlogCategory, error) {
	name = utils.SanitizeText(name)
	if name == "" {
		return nil, utils.NewValidationError("Name is required", nil)
	}
	c := &models.BlogCategory{
		ID:   uuid.NewString(),
		Name: name,
		Slug: utils.Slugify(name),
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, utils.NewInternalError(err)
	}
	return c, nil
}
