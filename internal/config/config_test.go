package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapFlags map[string]bool

func (m mapFlags) Bool(key string, fallback bool) bool {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

func mapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func publicKeyB64(t *testing.T) (string, *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return base64.StdEncoding.EncodeToString(pemBytes), &key.PublicKey
}

func TestLoadDefaults(t *testing.T) {
	b64, pub := publicKeyB64(t)
	cfg, err := Load(mapLookup(map[string]string{
		"MONGODB_URI":           "mongodb://localhost:27017",
		"JWT_PUBLIC_KEY_BASE64": b64,
	}), mapFlags{})
	require.NoError(t, err)

	assert.Equal(t, DefaultAppPort, cfg.AppPort)
	assert.Equal(t, DefaultMongoDatabase, cfg.MongoDatabase)
	assert.Equal(t, DefaultChatRateLimit, cfg.ChatRateLimit)
	assert.Equal(t, time.Minute, cfg.ChatRateWindow)
	assert.Equal(t, DefaultSyncRateLimit, cfg.SyncRateLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.EventRetention)
	assert.Equal(t, DefaultCleanupSchedule, cfg.CleanupSchedule)
	assert.True(t, pub.Equal(cfg.JWTPublicKey))
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.LDFlag_ForceHTTPS)
}

func TestLoadOverrides(t *testing.T) {
	b64, _ := publicKeyB64(t)
	cfg, err := Load(mapLookup(map[string]string{
		"MONGODB_URI":            "mongodb://db",
		"JWT_PUBLIC_KEY_BASE64":  b64,
		"ALLOWED_ORIGINS":        " https://a.example , ,https://b.example",
		"PUBLIC_SITE_URL":        "https://krishna.example/",
		"CHAT_RATE_WINDOW":       "90",
		"SYNC_RATE_WINDOW":       "2m",
		"TELEGRAM_ADMIN_CHAT_ID": "-100123",
		"EVENT_RETENTION_DAYS":   "7",
	}), mapFlags{"force_https": true, "seed_db_with_test_data": true})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://krishna.example", cfg.PublicSiteURL)
	assert.Equal(t, 90*time.Second, cfg.ChatRateWindow)
	assert.Equal(t, 2*time.Minute, cfg.SyncRateWindow)
	assert.Equal(t, int64(-100123), cfg.TelegramAdminChatID)
	assert.Equal(t, 7*24*time.Hour, cfg.EventRetention)
	assert.True(t, cfg.LDFlag_ForceHTTPS)
	assert.True(t, cfg.LDFlag_SeedDbWithTestData)
	assert.False(t, cfg.LDFlag_CORSHighSecurity)
}

func TestLoadReportsEveryProblem(t *testing.T) {
	_, err := Load(mapLookup(map[string]string{
		"CHAT_RATE_LIMIT":  "0",
		"NOTIFY_WORKERS":   "many",
		"SYNC_RATE_WINDOW": "soon",
	}), mapFlags{})
	require.Error(t, err)
	for _, want := range []string{
		"MONGODB_URI is required",
		"JWT_PUBLIC_KEY_BASE64 is required",
		"NOTIFY_WORKERS",
		"SYNC_RATE_WINDOW",
		"rate limits must be positive",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadRejectsBadKey(t *testing.T) {
	_, err := Load(mapLookup(map[string]string{
		"MONGODB_URI":           "mongodb://db",
		"JWT_PUBLIC_KEY_BASE64": base64.StdEncoding.EncodeToString([]byte("not a pem")),
	}), mapFlags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_PUBLIC_KEY_BASE64")
}

func TestOverlayAndEnvFlags(t *testing.T) {
	lookup := Overlay(map[string]string{"A": "secret", "B": ""}, mapLookup(map[string]string{"A": "env", "B": "env-b", "FORCE_HTTPS": "true", "CORS_HIGH_SECURITY": "nope"}))

	v, _ := lookup("A")
	assert.Equal(t, "secret", v)
	v, _ = lookup("B")
	assert.Equal(t, "env-b", v)

	flags := EnvFlags{Lookup: lookup}
	assert.True(t, flags.Bool("force_https", false))
	assert.True(t, flags.Bool("cors_high_security", true))
	assert.False(t, flags.Bool("missing", false))
}
