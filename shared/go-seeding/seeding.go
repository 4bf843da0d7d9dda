// Package seeding loads the demo catalogue into a fresh database.
package seeding

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v3"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

//go:embed catalog.yaml
var catalogYAML []byte

// SeedAuthor signs every demo blog post.
const SeedAuthor = "Krishna Properties Team"

type Catalog struct {
	Location    string             `yaml:"location"`
	Coordinates models.Coordinates `yaml:"coordinates"`
	Categories  []string           `yaml:"categories"`
	Properties  []CatalogProperty  `yaml:"properties"`
	Blogs       []CatalogBlog      `yaml:"blogs"`
}

type CatalogProperty struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Bedrooms    int      `yaml:"bedrooms"`
	Bathrooms   int      `yaml:"bathrooms"`
	Area        float64  `yaml:"area"`
	Type        string   `yaml:"type"`
	Images      []string `yaml:"images"`
}

type CatalogBlog struct {
	Title    string   `yaml:"title"`
	Excerpt  string   `yaml:"excerpt"`
	Content  string   `yaml:"content"`
	Image    string   `yaml:"image"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// LoadCatalog parses the embedded catalogue and checks that every listing
// carries a parseable price and a known type.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	known := make(map[string]bool, len(models.PropertyTypes))
	for _, t := range models.PropertyTypes {
		known[t] = true
	}
	for _, p := range c.Properties {
		if _, err := utils.ParsePrice(p.Price); err != nil {
			return nil, fmt.Errorf("seed property %s: price %q: %w", p.ID, p.Price, err)
		}
		if !known[p.Type] {
			return nil, fmt.Errorf("seed property %s: unknown type %q", p.ID, p.Type)
		}
	}
	return &c, nil
}

// SeedAll inserts the catalogue. Records that already exist are skipped, so
// it is safe to run on every start.
func SeedAll(
	ctx context.Context,
	propRepo repositories.PropertyRepository,
	blogRepo repositories.BlogRepository,
	categoryRepo repositories.BlogCategoryRepository,
) error {
	c, err := LoadCatalog()
	if err != nil {
		return err
	}
	if err := seedCategories(ctx, categoryRepo, c); err != nil {
		return err
	}
	if err := seedProperties(ctx, propRepo, c); err != nil {
		return err
	}
	return seedBlogs(ctx, blogRepo, c)
}

func seedCategories(ctx context.Context, repo repositories.BlogCategoryRepository, c *Catalog) error {
	for _, name := range c.Categories {
		slug := utils.Slugify(name)
		err := repo.Create(ctx, &models.BlogCategory{ID: "seed-category-" + slug, Name: name, Slug: slug})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

func seedProperties(ctx context.Context, repo repositories.PropertyRepository, c *Catalog) error {
	created := 0
	for i, sp := range c.Properties {
		// Stagger creation times so "newest" ordering is stable.
		at := time.Now().UTC().Add(-time.Duration(len(c.Properties)-i) * time.Hour)
		coords := c.Coordinates
		p := &models.Property{
			ID:          sp.ID,
			Title:       sp.Title,
			Description: sp.Description,
			Location:    c.Location,
			Price:       sp.Price,
			Bedrooms:    sp.Bedrooms,
			Bathrooms:   sp.Bathrooms,
			Area:        sp.Area,
			Type:        sp.Type,
			Status:      models.PropertyStatusAvailable,
			Images:      sp.Images,
			Coordinates: &coords,
			CreatedAt:   at,
			UpdatedAt:   at,
			History: []models.HistoryEntry{
				{Action: "created", Actor: "seed", Timestamp: at},
			},
		}
		if len(sp.Images) > 0 {
			p.ImageURL = sp.Images[0]
		}
		if err := repo.Create(ctx, p); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("seed property %s: %w", sp.ID, err)
		}
		created++
	}
	utils.Logger.Infof("Seeded %d properties (%d already present)", created, len(c.Properties)-created)
	return nil
}

func seedBlogs(ctx context.Context, repo repositories.BlogRepository, c *Catalog) error {
	for i, sb := range c.Blogs {
		slug := utils.Slugify(sb.Title)
		exists, err := repo.SlugExists(ctx, slug)
		if err != nil {
			return fmt.Errorf("check blog slug %q: %w", slug, err)
		}
		if exists {
			utils.Logger.Debugf("Skipped (exists): %s", sb.Title)
			continue
		}
		at := time.Now().UTC().Add(-time.Duration(len(c.Blogs)-i) * 24 * time.Hour)
		b := &models.Blog{
			ID:        "seed-blog-" + slug,
			Title:     sb.Title,
			Slug:      slug,
			Content:   sb.Content,
			Excerpt:   sb.Excerpt,
			Image:     sb.Image,
			Category:  sb.Category,
			Author:    SeedAuthor,
			Tags:      sb.Tags,
			Published: true,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := repo.Create(ctx, b); err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("seed blog %q: %w", sb.Title, err)
		}
	}
	return nil
}
