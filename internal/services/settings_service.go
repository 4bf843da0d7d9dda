package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

var sectionName = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,49}$`)

type SettingsService interface {
	// PublicSettings returns every public section; missing ones are empty.
	PublicSettings(ctx context.Context) (map[string]models.Settings, error)
	GetSection(ctx context.Context, section string) (models.Settings, error)
	UpdateSection(ctx context.Context, section string, values models.Settings) error
}

type settingsService struct {
	repo repositories.SettingsRepository
}

func NewSettingsService(repo repositories.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) PublicSettings(ctx context.Context) (map[string]models.Settings, error) {
	out := make(map[string]models.Settings, len(models.PublicSettingsSections))
	for _, section := range models.PublicSettingsSections {
		v, err := s.repo.Get(ctx, section)
		if err != nil {
			return nil, utils.NewInternalError(err)
		}
		out[section] = v
	}
	return out, nil
}

func (s *settingsService) GetSection(ctx context.Context, section string) (models.Settings, error) {
	if !sectionName.MatchString(section) {
		return nil, utils.NewValidationError("Invalid settings type", nil)
	}
	v, err := s.repo.Get(ctx, section)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return v, nil
}

func (s *settingsService) UpdateSection(ctx context.Context, section string, values models.Settings) error {
	if !sectionName.MatchString(section) {
		return utils.NewValidationError("Invalid settings type", nil)
	}
	if err := s.repo.Merge(ctx, section, values); err != nil {
		if errors.Is(err, repositories.ErrInvalidSettingsKey) {
			return utils.NewValidationError("Invalid settings key", err)
		}
		return utils.NewInternalError(err)
	}
	return nil
}
