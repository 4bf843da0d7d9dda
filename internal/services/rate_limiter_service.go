package services

import (
	"context"
	"time"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/internal/repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// Limiter scopes, also used as key prefixes.
const (
	scopeChat = "chat"
	scopeSync = "sync"
)

// RateLimiterService provides a high-level interface for checking the
// per-user rate limits.
type RateLimiterService interface {
	CheckChatSend(ctx context.Context, userID string) error
	CheckUserSync(ctx context.Context, userID string) error
}

type rateLimiterService struct {
	repo    repositories.RateLimitRepository
	cfg     *config.Config
	metrics *Metrics
}

func NewRateLimiterService(repo repositories.RateLimitRepository, cfg *config.Config, metrics *Metrics) RateLimiterService {
	return &rateLimiterService{repo: repo, cfg: cfg, metrics: metrics}
}

// CheckChatSend allows ChatRateLimit messages per sender per window.
func (s *rateLimiterService) CheckChatSend(ctx context.Context, userID string) error {
	return s.check(ctx, scopeChat, userID, s.cfg.ChatRateLimit, s.cfg.ChatRateWindow)
}

// CheckUserSync allows SyncRateLimit profile syncs per user per window.
func (s *rateLimiterService) CheckUserSync(ctx context.Context, userID string) error {
	return s.check(ctx, scopeSync, userID, s.cfg.SyncRateLimit, s.cfg.SyncRateWindow)
}

func (s *rateLimiterService) check(ctx context.Context, scope, subject string, limit int, window time.Duration) error {
	key := scope + ":" + subject
	allowed, err := s.repo.Allow(ctx, key, limit, window)
	if err != nil {
		// An unavailable limiter must not take the endpoint down with it.
		utils.Logger.WithError(err).WithField("key", key).Warn("Rate limiter unavailable; allowing request")
		return nil
	}
	if !allowed {
		utils.Logger.Warnf("%s rate limit exceeded (key: %s)", scope, key)
		s.metrics.rateLimited(scope)
		return utils.ErrRateLimitExceeded
	}
	return nil
}

// RateLimitCleanupService drops idle limiter windows. Only the in-memory
// backend keeps state that needs pruning.
type RateLimitCleanupService interface {
	CleanupHourly(ctx context.Context) error
}

type rateLimitCleanupService struct {
	repo repositories.RateLimitRepository
}

func NewRateLimitCleanupService(repo repositories.RateLimitRepository) RateLimitCleanupService {
	return &rateLimitCleanupService{repo: repo}
}

func (s *rateLimitCleanupService) CleanupHourly(ctx context.Context) error {
	if err := s.repo.Prune(ctx); err != nil {
		utils.Logger.WithError(err).Error("Failed to prune rate limit windows")
		return err
	}
	utils.Logger.Debug("Rate limit windows pruned.")
	return nil
}
