package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const (
	msgDuplicatePending = "You already have a pending request for this property."
	msgPendingLimit     = "You have reached the limit of 3 active appointment requests. Please wait for a response or cancel one."
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, userID string, req dtos.CreateAppointmentRequest) (*models.Appointment, error)
	// ListForUser decorates each appointment with its property's title and
	// primary image.
	ListForUser(ctx context.Context, userID string) ([]*models.Appointment, error)
	ListAll(ctx context.Context) ([]*models.Appointment, error)
	Cancel(ctx context.Context, caller *middleware.Identity, id string) error
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
}

type appointmentService struct {
	repo         repositories.AppointmentRepository
	propertyRepo repositories.PropertyRepository
	userRepo     repositories.UserRepository
	notifier     NotificationDispatcher
	cfg          *config.Config
}

func NewAppointmentService(
	repo repositories.AppointmentRepository,
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	notifier NotificationDispatcher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:         repo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		cfg:          cfg,
	}
}

func (s *appointmentService) CreateAppointment(ctx context.Context, userID string, req dtos.CreateAppointmentRequest) (*models.Appointment, error) {
	p, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if p == nil {
		return nil, utils.NewNotFoundError("Property not found")
	}

	now := time.Now().UTC()
	a := &models.Appointment{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: req.PropertyID,
		Date:       req.Date,
		Time:       req.Time,
		Message:    utils.SanitizeText(req.Message),
		Status:     models.AppointmentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch err := s.repo.CreatePending(ctx, a); {
	case errors.Is(err, utils.ErrDuplicatePending):
		return nil, utils.NewValidationError(msgDuplicatePending, err)
	case errors.Is(err, utils.ErrPendingLimit):
		return nil, utils.NewValidationError(msgPendingLimit, err)
	case err != nil:
		return nil, utils.NewInternalError(err)
	}

	utils.Logger.WithField("appointment_id", a.ID).WithField("property_id", p.ID).Info("Appointment requested")

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		utils.Logger.WithError(err).WithField("user_id", userID).Warn("Appointment email skipped; user lookup failed")
		return a, nil
	}
	if u != nil && u.EffectivePreferences().Email {
		s.notifier.SendEmail(ctx, u.Email, TemplateAppointmentReceived, map[string]string{
			"name":  u.Name,
			"title": p.Title,
			"date":  a.Date,
			"time":  a.Time,
		})
	}
	s.notifier.AlertAdmins(ctx, map[string]string{
		"kind":     "appointment request",
		"name":     nameOf(u),
		"email":    emailOf(u),
		"property": p.Title,
		"message":  a.Date + " " + a.Time,
	})
	return a, nil
}

func (s *appointmentService) ListForUser(ctx context.Context, userID string) ([]*models.Appointment, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	s.decorate(ctx, list)
	return list, nil
}

func (s *appointmentService) ListAll(ctx context.Context) ([]*models.Appointment, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	s.decorate(ctx, list)
	return list, nil
}

func (s *appointmentService) decorate(ctx context.Context, list []*models.Appointment) {
	if len(list) == 0 {
		return
	}
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.PropertyID)
	}
	props, err := s.propertyRepo.GetByIDs(ctx, ids)
	if err != nil {
		utils.Logger.WithError(err).Warn("Appointment property details unavailable")
		return
	}
	byID := make(map[string]*models.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}
	for _, a := range list {
		if p, ok := byID[a.PropertyID]; ok {
			a.PropertyTitle = p.Title
			a.PropertyImage = p.PrimaryImage()
		} else {
			a.PropertyTitle = "Unknown Property"
		}
	}
}

func (s *appointmentService) Cancel(ctx context.Context, caller *middleware.Identity, id string) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != caller.UserID && !caller.IsAdmin() {
		return utils.NewForbiddenError("Insufficient permissions")
	}
	if a.Status == models.AppointmentStatusCancelled || a.Status == models.AppointmentStatusCompleted {
		return utils.NewValidationError("Appointment can no longer be cancelled", nil)
	}
	if err := s.repo.UpdateStatus(ctx, id, models.AppointmentStatusCancelled); err != nil {
		return s.mapUpdateErr(err)
	}
	return nil
}

// UpdateStatus is the admin transition. Confirmations and cancellations
// reach the user in-app and, if allowed, by email.
func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError("Invalid status", nil)
	}
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Re-opening would bypass the pending admission checks.
	if status == models.AppointmentStatusPending && a.Status != models.AppointmentStatusPending {
		return nil, utils.NewValidationError("Appointment cannot return to pending", nil)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.mapUpdateErr(err)
	}
	a.Status = status

	if status == models.AppointmentStatusConfirmed || status == models.AppointmentStatusCancelled {
		s.notifyStatus(ctx, a)
	}
	return a, nil
}

func (s *appointmentService) notifyStatus(ctx context.Context, a *models.Appointment) {
	title := "your selected property"
	if p, err := s.propertyRepo.GetByID(ctx, a.PropertyID); err == nil && p != nil {
		title = p.Title
	}

	s.notifier.NotifyUser(ctx, models.Notification{
		UserID:  a.UserID,
		Kind:    models.NotificationKindAppointment,
		Title:   "Appointment " + titleCase(string(a.Status)),
		Message: "Your visit to " + title + " on " + a.Date + " at " + a.Time + " is " + string(a.Status) + ".",
		Link:    s.cfg.PublicSiteURL + "/dashboard",
	})

	u, err := s.userRepo.GetByID(ctx, a.UserID)
	if err != nil || u == nil {
		return
	}
	if !u.EffectivePreferences().Email {
		return
	}
	s.notifier.SendEmail(ctx, u.Email, TemplateAppointmentStatus, map[string]string{
		"name":   u.Name,
		"title":  title,
		"status": string(a.Status),
		"date":   a.Date,
		"time":   a.Time,
	})
}

func (s *appointmentService) get(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if a == nil {
		return nil, utils.NewNotFoundError("Appointment not found")
	}
	return a, nil
}

func (s *appointmentService) mapUpdateErr(err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.NewNotFoundError("Appointment not found")
	}
	return utils.NewInternalError(err)
}

func emailOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}
