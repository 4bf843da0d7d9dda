package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/umahmood/haversine"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type PropertyService interface {
	ListProperties(ctx context.Context, q dtos.PropertyListQuery) (*dtos.PropertyListResponse, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	CreateProperty(ctx context.Context, actor string, req dtos.CreatePropertyRequest) (*models.Property, error)
	UpdateProperty(ctx context.Context, actor, id string, req dtos.UpdatePropertyRequest) (*models.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	GetHistory(ctx context.Context, id string) ([]models.HistoryEntry, error)
	PropertyTypes() []string
}

type propertyService struct {
	repo         repositories.PropertyRepository
	favoriteRepo repositories.FavoriteRepository
	matcher      MatchService
}

func NewPropertyService(
	repo repositories.PropertyRepository,
	favoriteRepo repositories.FavoriteRepository,
	matcher MatchService,
) PropertyService {
	return &propertyService{repo: repo, favoriteRepo: favoriteRepo, matcher: matcher}
}

// ----------------------------------------------------------------------
// Listing
// ----------------------------------------------------------------------

type pricedProperty struct {
	p       *models.Property
	price   int64
	priceOK bool
}

func (s *propertyService) ListProperties(ctx context.Context, q dtos.PropertyListQuery) (*dtos.PropertyListResponse, error) {
	q.Limit = utils.ClampInt(q.Limit, dtos.DefaultPropertyPageSize, 1, dtos.MaxPropertyPageSize)
	if q.Page < 1 {
		q.Page = 1
	}

	all, err := s.repo.List(ctx, repositories.PropertyQuery{Type: q.Type, MinBedrooms: q.Bedrooms})
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	near := q.Lat != nil && q.Lng != nil && q.RadiusKm > 0
	var origin haversine.Coord
	if near {
		origin = haversine.Coord{Lat: *q.Lat, Lon: *q.Lng}
	}

	kept := make([]pricedProperty, 0, len(all))
	for _, p := range all {
		price, perr := utils.ParsePrice(p.Price)
		pp := pricedProperty{p: p, price: price, priceOK: perr == nil}

		// A price that does not parse cannot satisfy a price bound.
		if q.MinPrice != nil && (!pp.priceOK || pp.price < *q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && (!pp.priceOK || pp.price > *q.MaxPrice) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Location), search) {
			continue
		}
		if near {
			if p.Coordinates == nil {
				continue
			}
			_, km := haversine.Distance(origin, haversine.Coord{Lat: p.Coordinates.Lat, Lon: p.Coordinates.Lng})
			if km > q.RadiusKm {
				continue
			}
		}
		p.History = nil
		kept = append(kept, pp)
	}

	sortProperties(kept, q.Sort)

	total := len(kept)
	totalPages := (total + q.Limit - 1) / q.Limit
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	page := make([]*models.Property, 0, end-start)
	for _, pp := range kept[start:end] {
		page = append(page, pp.p)
	}
	return &dtos.PropertyListResponse{
		Properties: page,
		Total:      total,
		Page:       q.Page,
		TotalPages: totalPages,
	}, nil
}

// sortProperties keeps the repository's newest-first order unless told
// otherwise. Listings with an unparseable price go last on price sorts.
func sortProperties(ps []pricedProperty, order string) {
	switch order {
	case dtos.SortPriceAsc, dtos.SortPriceDesc:
		desc := order == dtos.SortPriceDesc
		sort.SliceStable(ps, func(i, j int) bool {
			a, b := ps[i], ps[j]
			if a.priceOK != b.priceOK {
				return a.priceOK
			}
			if desc {
				return a.price > b.price
			}
			return a.price < b.price
		})
	case dtos.SortPopular:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].p.Views > ps[j].p.Views })
	}
}

func (s *propertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if p == nil {
		return nil, utils.NewNotFoundError("Property not found")
	}
	return p, nil
}

func (s *propertyService) GetHistory(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.History == nil {
		return []models.HistoryEntry{}, nil
	}
	return p.History, nil
}

func (s *propertyService) PropertyTypes() []string {
	return models.PropertyTypes
}

// ----------------------------------------------------------------------
// Admin writes
// ----------------------------------------------------------------------

func (s *propertyService) CreateProperty(ctx context.Context, actor string, req dtos.CreatePropertyRequest) (*models.Property, error) {
	title := utils.SanitizeText(req.Title)
	price := strings.TrimSpace(req.Price)
	ptype := strings.TrimSpace(req.Type)
	for _, f := range []struct{ name, val string }{{"title", title}, {"price", price}, {"type", ptype}} {
		if f.val == "" {
			return nil, utils.NewValidationError("Missing required field: "+f.name, nil)
		}
	}
	if _, err := utils.ParsePrice(price); err != nil {
		return nil, utils.NewValidationError("Invalid price format", err)
	}
	if err := validateCoordinates(req.Coordinates); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Property{
		ID:          uuid.NewString(),
		Title:       title,
		Description: utils.SanitizeText(req.Description),
		Location:    utils.SanitizeText(req.Location),
		Price:       price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Type:        ptype,
		Status:      firstNonEmpty(strings.TrimSpace(req.Status), models.PropertyStatusAvailable),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Images:      req.Images,
		Coordinates: req.Coordinates,
		CreatedAt:   now,
		UpdatedAt:   now,
		History: []models.HistoryEntry{{
			Action:    "created",
			Actor:     actor,
			Timestamp: now,
		}},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, utils.NewInternalError(err)
	}

	s.matcher.OnListingCreated(ctx, p)
	return p, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, actor, id string, req dtos.UpdatePropertyRequest) (*models.Property, error) {
	existing, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	var changed []string
	put := func(field string, v any) {
		set[field] = v
		changed = append(changed, field)
	}

	if req.Title != nil {
		put("title", utils.SanitizeText(*req.Title))
	}
	if req.Description != nil {
		put("description", utils.SanitizeText(*req.Description))
	}
	if req.Location != nil {
		put("location", utils.SanitizeText(*req.Location))
	}
	if req.Bedrooms != nil {
		put("bedrooms", *req.Bedrooms)
	}
	if req.Bathrooms != nil {
		put("bathrooms", *req.Bathrooms)
	}
	if req.Area != nil {
		put("area", *req.Area)
	}
	if req.Type != nil {
		put("type", strings.TrimSpace(*req.Type))
	}
	if req.Status != nil {
		put("status", strings.TrimSpace(*req.Status))
	}
	if req.ImageURL != nil {
		put("image_url", strings.TrimSpace(*req.ImageURL))
	}
	if req.Images != nil {
		put("images", *req.Images)
	}
	if req.Coordinates != nil {
		if err := validateCoordinates(req.Coordinates); err != nil {
			return nil, err
		}
		put("coordinates", req.Coordinates)
	}

	oldPrice, newPrice := existing.Price, existing.Price
	if req.Price != nil {
		newPrice = strings.TrimSpace(*req.Price)
		if _, err := utils.ParsePrice(newPrice); err != nil {
			return nil, utils.NewValidationError("Invalid price format", err)
		}
		if newPrice != oldPrice {
			put("price", newPrice)
		}
	}

	entry := models.HistoryEntry{
		Action:    "updated",
		Details:   "Updated fields: " + strings.Join(changed, ", "),
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
	if newPrice != oldPrice {
		entry.Action = "price_changed"
		entry.Details = fmt.Sprintf("Price changed from %s to %s; %s", oldPrice, newPrice, entry.Details)
	}

	if err := s.repo.Update(ctx, id, set, entry); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Property not found")
		}
		return nil, utils.NewInternalError(err)
	}

	updated, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if newPrice != oldPrice {
		s.matcher.OnPriceChanged(ctx, updated, oldPrice, newPrice)
	}
	return updated, nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if !deleted {
		return utils.NewNotFoundError("Property not found")
	}
	if err := s.favoriteRepo.RemoveProperty(ctx, id); err != nil {
		utils.Logger.WithError(err).WithField("property_id", id).Warn("Failed to drop favorites of deleted property")
	}
	return nil
}

func validateCoordinates(c *models.Coordinates) error {
	if c == nil {
		return nil
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return utils.NewValidationError("Invalid coordinates", nil)
	}
	return nil
}
