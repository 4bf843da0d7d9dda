package config

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// Config holds all application configuration, including secrets, flags, etc.
type Config struct {
	OrganizationName       string
	AppName                string
	Env                    string
	AppPort                string
	AllowedOrigins         []string
	PublicSiteURL          string
	MongoURI               string
	MongoDatabase          string
	RedisURL               string
	RabbitMQURL            string
	JWTPublicKey           *rsa.PublicKey
	JWTIssuer              string
	SendGridAPIKey         string
	SendGridFromEmail      string
	AdminNotificationEmail string
	TwilioAccountSID       string
	TwilioAuthToken        string
	TelegramBotToken       string
	TelegramAdminChatID    int64
	SentryDSN              string
	ChatRateLimit          int
	ChatRateWindow         time.Duration
	SyncRateLimit          int
	SyncRateWindow         time.Duration
	NotifyWorkers          int
	NotifyMaxAttempts      int
	NotifyQueueSize        int
	CleanupSchedule        string
	EventRetention         time.Duration
	DashboardCacheTTL      time.Duration

	// Static flags resolved once at startup
	LDFlag_ForceHTTPS              bool
	LDFlag_CORSHighSecurity        bool
	LDFlag_SendgridSandboxMode     bool
	LDFlag_ValidatePhoneWithTwilio bool
	LDFlag_SeedDbWithTestData      bool
}

// Constants for configuration defaults.
const (
	OrganizationName         = utils.OrganizationName
	DefaultAppPort           = "8080"
	DefaultMongoDatabase     = "estate"
	DefaultChatRateLimit     = 10
	DefaultChatRateWindow    = 60 * time.Second
	DefaultSyncRateLimit     = 5
	DefaultSyncRateWindow    = 60 * time.Second
	DefaultNotifyWorkers     = 4
	DefaultNotifyMaxAttempts = 3
	DefaultNotifyQueueSize   = 1024
	DefaultCleanupSchedule   = "0 3 * * *"
	DefaultRetentionDays     = 30
	DefaultDashboardCacheTTL = 30 * time.Second
	LDConnectionTimeout      = 5 * time.Second
)

// Global compile-time overrides.
var (
	AppName             = "estate-service"
	LDServerContextKey  = "estate-service"
	LDServerContextKind = "service"
)

// Lookup resolves one configuration key, reporting whether it was set.
type Lookup func(key string) (string, bool)

// LoadConfig assembles configuration from Bitwarden, the process
// environment and an optional .env file, then resolves feature flags. Any
// failure is fatal.
func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName was overridden with an empty ldflag")
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// .env never overrides variables already present in the environment.
	//----------------------------------------------------------------------
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.Logger.WithError(err).Warn("Failed to parse .env file")
	}

	lookup := Lookup(os.LookupEnv)

	//----------------------------------------------------------------------
	// Bitwarden project secrets take precedence over the environment.
	//----------------------------------------------------------------------
	if token, project := os.Getenv("BWS_ACCESS_TOKEN"), os.Getenv("BWS_PROJECT"); token != "" && project != "" {
		client, err := utils.NewBWSSecretsClient(token, os.Getenv("BWS_ORGANIZATION_ID"))
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to initialize BWSSecretsClient")
		}
		secrets, err := client.GetBWSSecrets(project)
		client.Close()
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to fetch secrets from Bitwarden")
		}
		utils.Logger.Debugf("Loaded %d secrets from Bitwarden project %s", len(secrets), project)
		lookup = Overlay(secrets, lookup)
	}

	flags, closeFlags, err := NewFlagSource(lookup)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize feature flags")
	}
	defer closeFlags()

	cfg, err := Load(lookup, flags)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}
	return cfg
}

// Overlay resolves keys from secrets first and falls back to next.
func Overlay(secrets map[string]string, next Lookup) Lookup {
	return func(key string) (string, bool) {
		if v, ok := secrets[key]; ok && v != "" {
			return v, true
		}
		return next(key)
	}
}

// Load builds a Config from lookup and flags without touching the process
// environment.
func Load(lookup Lookup, flags FlagSource) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		OrganizationName:       OrganizationName,
		AppName:                AppName,
		Env:                    r.str("ENV", "dev"),
		AppPort:                r.str("APP_PORT", DefaultAppPort),
		AllowedOrigins:         r.list("ALLOWED_ORIGINS"),
		PublicSiteURL:          strings.TrimRight(r.str("PUBLIC_SITE_URL", utils.DefaultPublicSiteURL), "/"),
		MongoURI:               r.required("MONGODB_URI"),
		MongoDatabase:          r.str("MONGODB_DATABASE", DefaultMongoDatabase),
		RedisURL:               r.str("REDIS_URL", ""),
		RabbitMQURL:            r.str("RABBITMQ_URL", ""),
		JWTIssuer:              r.str("JWT_ISSUER", ""),
		SendGridAPIKey:         r.str("SENDGRID_API_KEY", ""),
		SendGridFromEmail:      r.str("SENDGRID_FROM_EMAIL", "no-reply@krishnaproperties.in"),
		AdminNotificationEmail: r.str("ADMIN_NOTIFICATION_EMAIL", ""),
		TwilioAccountSID:       r.str("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:        r.str("TWILIO_AUTH_TOKEN", ""),
		TelegramBotToken:       r.str("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID:    r.int64("TELEGRAM_ADMIN_CHAT_ID", 0),
		SentryDSN:              r.str("SENTRY_DSN", ""),
		ChatRateLimit:          r.int("CHAT_RATE_LIMIT", DefaultChatRateLimit),
		ChatRateWindow:         r.duration("CHAT_RATE_WINDOW", DefaultChatRateWindow),
		SyncRateLimit:          r.int("SYNC_RATE_LIMIT", DefaultSyncRateLimit),
		SyncRateWindow:         r.duration("SYNC_RATE_WINDOW", DefaultSyncRateWindow),
		NotifyWorkers:          r.int("NOTIFY_WORKERS", DefaultNotifyWorkers),
		NotifyMaxAttempts:      r.int("NOTIFY_MAX_ATTEMPTS", DefaultNotifyMaxAttempts),
		NotifyQueueSize:        r.int("NOTIFY_QUEUE_SIZE", DefaultNotifyQueueSize),
		CleanupSchedule:        r.str("CLEANUP_SCHEDULE", DefaultCleanupSchedule),
		EventRetention:         time.Duration(r.int("EVENT_RETENTION_DAYS", DefaultRetentionDays)) * 24 * time.Hour,
		DashboardCacheTTL:      r.duration("DASHBOARD_CACHE_TTL", DefaultDashboardCacheTTL),
	}

	if pemB64 := r.required("JWT_PUBLIC_KEY_BASE64"); pemB64 != "" {
		key, err := parsePublicKey(pemB64)
		if err != nil {
			r.fail(fmt.Errorf("JWT_PUBLIC_KEY_BASE64: %w", err))
		}
		cfg.JWTPublicKey = key
	}

	if cfg.ChatRateLimit < 1 || cfg.SyncRateLimit < 1 {
		r.fail(errors.New("rate limits must be positive"))
	}
	if cfg.NotifyWorkers < 1 || cfg.NotifyMaxAttempts < 1 || cfg.NotifyQueueSize < 1 {
		r.fail(errors.New("NOTIFY_WORKERS, NOTIFY_MAX_ATTEMPTS and NOTIFY_QUEUE_SIZE must be positive"))
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}

	//----------------------------------------------------------------------
	// Feature flags.
	//----------------------------------------------------------------------
	cfg.LDFlag_ForceHTTPS = flags.Bool("force_https", false)
	cfg.LDFlag_CORSHighSecurity = flags.Bool("cors_high_security", false)
	cfg.LDFlag_SendgridSandboxMode = flags.Bool("sendgrid_sandbox_mode", false)
	cfg.LDFlag_ValidatePhoneWithTwilio = flags.Bool("validate_phone_with_twilio", false)
	cfg.LDFlag_SeedDbWithTestData = flags.Bool("seed_db_with_test_data", false)

	utils.Logger.Debugf("force_https=%t cors_high_security=%t sendgrid_sandbox_mode=%t validate_phone_with_twilio=%t seed_db_with_test_data=%t",
		cfg.LDFlag_ForceHTTPS, cfg.LDFlag_CORSHighSecurity, cfg.LDFlag_SendgridSandboxMode,
		cfg.LDFlag_ValidatePhoneWithTwilio, cfg.LDFlag_SeedDbWithTestData)

	return cfg, nil
}

func parsePublicKey(b64 string) (*rsa.PublicKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
}

// reader collects every problem instead of stopping at the first, so a
// misconfigured deploy reports all of them at once.
type reader struct {
	lookup Lookup
	errs   []error
}

func (r *reader) fail(err error) { r.errs = append(r.errs, err) }

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) required(key string) string {
	v := r.str(key, "")
	if v == "" {
		r.fail(fmt.Errorf("%s is required", key))
	}
	return v
}

func (r *reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *reader) int(key string, def int) int {
	s := r.str(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) int64(key string, def int64) int64 {
	s := r.str(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (r *reader) duration(key string, def time.Duration) time.Duration {
	s := r.str(key, "")
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
