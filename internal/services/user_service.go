package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	twilio "github.com/twilio/twilio-go"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const msgRateLimited = "Rate limit exceeded. Please wait a moment."

type UserService interface {
	// SyncUser records a sign-in of the token holder. An unknown account
	// must supply a phone number to be created.
	SyncUser(ctx context.Context, caller *middleware.Identity, req dtos.SyncUserRequest) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, caller *middleware.Identity, userID string, role middleware.Role) error
}

type userService struct {
	repo    repositories.UserRepository
	limiter RateLimiterService
	twilio  *twilio.RestClient
	cfg     *config.Config
}

func NewUserService(
	repo repositories.UserRepository,
	limiter RateLimiterService,
	cfg *config.Config,
) UserService {
	var tw *twilio.RestClient
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		tw = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return &userService{repo: repo, limiter: limiter, twilio: tw, cfg: cfg}
}

func (s *userService) SyncUser(ctx context.Context, caller *middleware.Identity, req dtos.SyncUserRequest) (*models.User, error) {
	if err := s.limiter.CheckUserSync(ctx, caller.UserID); err != nil {
		return nil, utils.NewRateLimitError(msgRateLimited)
	}

	existing, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if existing == nil && phone == "" {
		return nil, utils.NewNotFoundError("Account not found. Please sign up first.")
	}
	if phone != "" {
		if err := s.validatePhone(ctx, phone); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	name := firstNonEmpty(caller.Name, utils.SanitizeText(req.Name))

	if existing == nil {
		u := &models.User{
			ID:        caller.UserID,
			Email:     caller.Email,
			Name:      name,
			Picture:   caller.Picture,
			Phone:     phone,
			Role:      string(middleware.RoleUser),
			CreatedAt: now,
			LastLogin: now,
		}
		err := s.repo.Create(ctx, u)
		if err == nil {
			utils.Logger.WithField("user_id", u.ID).Info("New user account created")
			return u, nil
		}
		// A concurrent sync created it first; fall through to an update.
		if !mongo.IsDuplicateKeyError(err) {
			return nil, utils.NewInternalError(err)
		}
	}

	login := repositories.UserLogin{
		Email:   caller.Email,
		Name:    name,
		Picture: caller.Picture,
		At:      now,
	}
	if phone != "" {
		login.Phone = &phone
	}
	u, err := s.repo.RecordLogin(ctx, caller.UserID, login)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Account not found. Please sign up first.")
	}
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return u, nil
}

func (s *userService) validatePhone(ctx context.Context, phone string) error {
	ok, err := utils.ValidatePhoneNumber(ctx, phone, s.cfg.LDFlag_ValidatePhoneWithTwilio, s.twilio)
	if err != nil {
		return &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Phone validation is temporarily unavailable",
			Err:        err,
		}
	}
	if !ok {
		return utils.NewValidationError("Invalid phone number", utils.ErrInvalidPhone)
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if u == nil {
		return nil, utils.NewNotFoundError("User not found")
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return users, nil
}

// UpdateRole lets admins promote and demote users. Only a superadmin may
// grant superadmin or change another superadmin.
func (s *userService) UpdateRole(ctx context.Context, caller *middleware.Identity, userID string, role middleware.Role) error {
	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	touchesSuper := role == middleware.RoleSuperAdmin || middleware.Role(target.Role) == middleware.RoleSuperAdmin
	if touchesSuper && caller.Role != middleware.RoleSuperAdmin {
		return utils.NewForbiddenError("Insufficient permissions")
	}
	if err := s.repo.UpdateRole(ctx, userID, string(role)); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.NewInternalError(err)
	}
	utils.Logger.WithField("user_id", userID).WithField("by", caller.UserID).Infof("Role changed to %s", role)
	return nil
}
