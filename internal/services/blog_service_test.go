package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type fakeBlogRepo struct {
	repositories.BlogRepository
	posts  map[string]*models.Blog
	viewed []string
	sets   []bson.M
}

func newFakeBlogRepo(posts ...*models.Blog) *fakeBlogRepo {
	r := &fakeBlogRepo{posts: map[string]*models.Blog{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakeBlogRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, p := range r.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBlogRepo) Create(_ context.Context, b *models.Blog) error {
	r.posts[b.ID] = b
	return nil
}

func (r *fakeBlogRepo) GetBySlug(_ context.Context, slug string) (*models.Blog, error) {
	for _, p := range r.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBlogRepo) IncrementViews(_ context.Context, id string) error {
	r.viewed = append(r.viewed, id)
	return nil
}

func (r *fakeBlogRepo) Update(_ context.Context, id string, set bson.M) error {
	if _, ok := r.posts[id]; !ok {
		return utils.ErrNotFound
	}
	r.sets = append(r.sets, set)
	return nil
}

func (r *fakeBlogRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := r.posts[id]
	delete(r.posts, id)
	return ok, nil
}

func TestCreateBlogSlugs(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeBlogRepo()
	svc := &blogService{repo: repo, now: func() time.Time { return fixed }}
	ctx := context.Background()

	first, err := svc.CreateBlog(ctx, dtos.CreateBlogRequest{Title: "Buying a Plot in Noida", Content: "<p>Read this</p>"})
	require.NoError(t, err)
	assert.Equal(t, "buying-a-plot-in-noida", first.Slug)
	assert.False(t, first.Published)

	second, err := svc.CreateBlog(ctx, dtos.CreateBlogRequest{Title: "Buying a plot in Noida!", Content: "again"})
	require.NoError(t, err)
	assert.Equal(t, "buying-a-plot-in-noida-1740823200", second.Slug)
}

func TestCreateBlogSanitizes(t *testing.T) {
	svc := NewBlogService(newFakeBlogRepo(), nil)

	b, err := svc.CreateBlog(context.Background(), dtos.CreateBlogRequest{
		Title:     "Market <b>update</b>",
		Content:   `<p onclick="x()">Prices rose</p><script>alert(1)</script>`,
		Tags:      []string{" noida ", "<i></i>"},
		Published: utils.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Market update", b.Title)
	assert.Equal(t, "<p>Prices rose</p>", b.Content)
	assert.Equal(t, []string{"noida"}, b.Tags)
	assert.True(t, b.Published)

	_, err = svc.CreateBlog(context.Background(), dtos.CreateBlogRequest{Title: "Only a title", Content: "<script></script>"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestViewBySlug(t *testing.T) {
	repo := newFakeBlogRepo(
		&models.Blog{ID: "b1", Slug: "live", Published: true, Views: 2},
		&models.Blog{ID: "b2", Slug: "draft"},
	)
	svc := NewBlogService(repo, nil)

	b, err := svc.ViewBySlug(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.Views)
	assert.Equal(t, []string{"b1"}, repo.viewed)

	_, err = svc.ViewBySlug(context.Background(), "draft")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	_, err = svc.ViewBySlug(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdateAndDeleteBlog(t *testing.T) {
	repo := newFakeBlogRepo(&models.Blog{ID: "b1", Slug: "live"})
	svc := NewBlogService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateBlog(ctx, "b1", dtos.UpdateBlogRequest{Title: utils.Ptr("New title"), Featured: utils.Ptr(true)}))
	require.Len(t, repo.sets, 1)
	assert.Equal(t, bson.M{"title": "New title", "featured": true}, repo.sets[0])
	assert.NotContains(t, repo.sets[0], "slug")

	err := svc.UpdateBlog(ctx, "nope", dtos.UpdateBlogRequest{})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	require.NoError(t, svc.DeleteBlog(ctx, "b1"))
	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.DeleteBlog(ctx, "b1")))
}
