package services

import (
	"context"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// NotificationService serves the caller's own bell menu and channel
// preferences. Every operation is scoped to userID.
type NotificationService interface {
	List(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	GetPreferences(ctx context.Context, userID string) (models.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, req dtos.UpdatePreferencesRequest) (models.NotificationPreferences, error)
}

type notificationService struct {
	repo     repositories.NotificationRepository
	userRepo repositories.UserRepository
}

func NewNotificationService(repo repositories.NotificationRepository, userRepo repositories.UserRepository) NotificationService {
	return &notificationService{repo: repo, userRepo: userRepo}
}

func (s *notificationService) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID, models.MaxNotificationsListed)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	found, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if !found {
		return utils.NewNotFoundError("Notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError(err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if !found {
		return utils.NewNotFoundError("Notification not found")
	}
	return nil
}

func (s *notificationService) GetPreferences(ctx context.Context, userID string) (models.NotificationPreferences, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.NotificationPreferences{}, utils.NewInternalError(err)
	}
	return u.EffectivePreferences(), nil
}

// UpdatePreferences merges the supplied switches onto the stored set.
func (s *notificationService) UpdatePreferences(ctx context.Context, userID string, req dtos.UpdatePreferencesRequest) (models.NotificationPreferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return prefs, err
	}
	if req.Email != nil {
		prefs.Email = *req.Email
	}
	if req.Push != nil {
		prefs.Push = *req.Push
	}
	if req.Marketing != nil {
		prefs.Marketing = *req.Marketing
	}
	if req.Security != nil {
		prefs.Security = *req.Security
	}
	if err := s.userRepo.SetPreferences(ctx, userID, prefs); err != nil {
		return prefs, utils.NewInternalError(err)
	}
	return prefs, nil
}
