package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// RequestService manages buyers' standing searches.
type RequestService interface {
	CreateRequest(ctx context.Context, userID string, req dtos.CreatePropertyRequestRequest) (*models.PropertyRequest, error)
	ListForUser(ctx context.Context, userID string) ([]*models.PropertyRequest, error)
	ListAll(ctx context.Context) ([]*models.PropertyRequest, error)
	UpdateStatus(ctx context.Context, caller *middleware.Identity, id string, status models.RequestStatus) error
}

type requestService struct {
	repo     repositories.PropertyRequestRepository
	userRepo repositories.UserRepository
	notifier NotificationDispatcher
}

func NewRequestService(
	repo repositories.PropertyRequestRepository,
	userRepo repositories.UserRepository,
	notifier NotificationDispatcher,
) RequestService {
	return &requestService{repo: repo, userRepo: userRepo, notifier: notifier}
}

func (s *requestService) CreateRequest(ctx context.Context, userID string, req dtos.CreatePropertyRequestRequest) (*models.PropertyRequest, error) {
	c := *req.Criteria
	if c.MinPrice != nil && *c.MinPrice < 0 || c.MaxPrice != nil && *c.MaxPrice < 0 {
		return nil, utils.NewValidationError("Price bounds must not be negative", nil)
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return nil, utils.NewValidationError("minPrice must not exceed maxPrice", nil)
	}
	if c.Bedrooms < 0 {
		return nil, utils.NewValidationError("bedrooms must not be negative", nil)
	}
	c.Location = utils.SanitizeText(c.Location)
	c.Type = utils.SanitizeText(c.Type)

	name, email := utils.SanitizeText(req.Name), req.Email
	if name == "" || email == "" {
		// Fill contact details from the account for the CRM view.
		if u, err := s.userRepo.GetByID(ctx, userID); err == nil && u != nil {
			name = firstNonEmpty(name, u.Name)
			email = firstNonEmpty(email, u.Email)
		}
	}

	now := time.Now().UTC()
	pr := &models.PropertyRequest{
		ID:         uuid.NewString(),
		UserID:     userID,
		Email:      email,
		Phone:      utils.SanitizeText(req.Phone),
		Name:       name,
		Criteria:   c,
		Status:     models.RequestStatusActive,
		LeadStatus: models.LeadStatusNew,
		Source:     models.DefaultLeadSource,
		CreatedAt:  &now,
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return nil, utils.NewInternalError(err)
	}

	s.notifier.AlertAdmins(ctx, map[string]string{
		"kind":     "property request",
		"name":     pr.Name,
		"email":    pr.Email,
		"phone":    pr.Phone,
		"property": SearchName(&pr.Criteria),
	})
	return pr, nil
}

func (s *requestService) ListForUser(ctx context.Context, userID string) ([]*models.PropertyRequest, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *requestService) ListAll(ctx context.Context) ([]*models.PropertyRequest, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *requestService) UpdateStatus(ctx context.Context, caller *middleware.Identity, id string, status models.RequestStatus) error {
	if !status.Valid() {
		return utils.NewValidationError("Invalid status", nil)
	}
	pr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return utils.NewInternalError(err)
	}
	if pr == nil {
		return utils.NewNotFoundError("Request not found")
	}
	if pr.UserID != caller.UserID && !caller.IsAdmin() {
		return utils.NewForbiddenError("Insufficient permissions")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("Request not found")
		}
		return utils.NewInternalError(err)
	}
	return nil
}
