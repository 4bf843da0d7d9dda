package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type InquiryService interface {
	// CreateInquiry stores a contact-form or property enquiry. userID is
	// empty for anonymous visitors.
	CreateInquiry(ctx context.Context, userID string, req dtos.CreateInquiryRequest) (*models.Inquiry, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Inquiry, error)
	ListAll(ctx context.Context) ([]*models.Inquiry, error)
}

type inquiryService struct {
	repo     repositories.InquiryRepository
	notifier NotificationDispatcher
}

func NewInquiryService(repo repositories.InquiryRepository, notifier NotificationDispatcher) InquiryService {
	return &inquiryService{repo: repo, notifier: notifier}
}

func (s *inquiryService) CreateInquiry(ctx context.Context, userID string, req dtos.CreateInquiryRequest) (*models.Inquiry, error) {
	message := utils.SanitizeText(req.Message)
	if message == "" {
		return nil, utils.NewValidationError("Email and message are required", nil)
	}

	kind := req.Type
	if kind == "" {
		kind = models.InquiryKindGeneral
	}
	source := utils.SanitizeText(req.Source)
	if source == "" {
		source = models.DefaultLeadSource
	}

	now := time.Now().UTC()
	inq := &models.Inquiry{
		ID:            uuid.NewString(),
		Kind:          kind,
		Name:          utils.SanitizeText(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         utils.SanitizeText(req.Phone),
		Message:       message,
		Subject:       utils.SanitizeText(req.Subject),
		PropertyID:    strings.TrimSpace(req.PropertyID),
		PropertyTitle: utils.SanitizeText(req.PropertyTitle),
		UserID:        userID,
		Source:        source,
		Status:        models.LeadStatusNew,
		Timestamp:     &now,
	}
	if err := s.repo.Create(ctx, inq); err != nil {
		return nil, utils.NewInternalError(err)
	}

	s.notifier.AlertAdmins(ctx, map[string]string{
		"kind":     "inquiry",
		"name":     inq.Name,
		"email":    inq.Email,
		"phone":    inq.Phone,
		"property": inq.PropertyTitle,
		"message":  inq.Message,
	})
	if inq.Email != "" && inq.Name != "" {
		s.notifier.SendEmail(ctx, inq.Email, TemplateInquiryAutoReply, map[string]string{
			"name":    inq.Name,
			"message": inq.Message,
		})
	}
	return inq, nil
}

func (s *inquiryService) ListForUser(ctx context.Context, userID string) ([]*models.Inquiry, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *inquiryService) ListAll(ctx context.Context) ([]*models.Inquiry, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}
