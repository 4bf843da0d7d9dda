package services

import (
	"context"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, propertyID string) error
	RemoveFavorite(ctx context.Context, userID, propertyID string) error
	// ListFavorites returns the saved properties, newest save first.
	// Properties deleted since are left out.
	ListFavorites(ctx context.Context, userID string) ([]*models.Property, error)
}

type favoriteService struct {
	repo         repositories.FavoriteRepository
	propertyRepo repositories.PropertyRepository
}

func NewFavoriteService(repo repositories.FavoriteRepository, propertyRepo repositories.PropertyRepository) FavoriteService {
	return &favoriteService{repo: repo, propertyRepo: propertyRepo}
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID, propertyID string) error {
	p, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if p == nil {
		return utils.NewNotFoundError("Property not found")
	}
	if err := s.repo.Add(ctx, userID, propertyID); err != nil {
		return utils.NewInternalError(err)
	}
	return nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	removed, err := s.repo.Remove(ctx, userID, propertyID)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if !removed {
		return utils.NewNotFoundError("Favorite not found")
	}
	return nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID string) ([]*models.Property, error) {
	favs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if len(favs) == 0 {
		return []*models.Property{}, nil
	}

	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.PropertyID)
	}
	props, err := s.propertyRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	byID := make(map[string]*models.Property, len(props))
	for _, p := range props {
		p.History = nil
		byID[p.ID] = p
	}

	out := make([]*models.Property, 0, len(favs))
	for _, f := range favs {
		if p, ok := byID[f.PropertyID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
