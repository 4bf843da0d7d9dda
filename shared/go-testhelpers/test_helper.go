package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/krishnaproperties/estate-service/shared/go-repositories"
)

// TestHelper bundles what the integration suites need to drive a running
// estate-service: its URL, a signing key trusted by it and direct database
// access for fixtures.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	DB         *mongo.Database
	PrivateKey *rsa.PrivateKey
	Issuer     string

	// From ldflags
	AppName string

	// Repositories
	PropertyRepo    repositories.PropertyRepository
	UserRepo        repositories.UserRepository
	AppointmentRepo repositories.AppointmentRepository
	RequestRepo     repositories.PropertyRequestRepository
	InquiryRepo     repositories.InquiryRepository
	BlogRepo        repositories.BlogRepository
	ChatRepo        repositories.ChatRepository
	NotifRepo       repositories.NotificationRepository
}

// NewTestHelper reads APP_URL_FROM_ANYWHERE, MONGODB_URI, MONGODB_DATABASE,
// JWT_PRIVATE_KEY_BASE64 and JWT_ISSUER. It is meant to be called once
// from TestMain.
func NewTestHelper(t *testing.T, appName string) *TestHelper {
	baseURL := strings.TrimRight(os.Getenv("APP_URL_FROM_ANYWHERE"), "/")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI env var is missing")
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "estate"
	}

	keyB64 := os.Getenv("JWT_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, keyB64, "JWT_PRIVATE_KEY_BASE64 not set")
	keyPEM, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyB64))
	require.NoError(t, err)
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	require.NoError(t, err)

	ctx := context.Background()
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoURI))
	require.NoError(t, err)
	require.NoError(t, client.Ping(connectCtx, nil))
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(dbName)
	return &TestHelper{
		T:               t,
		Ctx:             ctx,
		BaseURL:         baseURL,
		DB:              db,
		PrivateKey:      privateKey,
		Issuer:          os.Getenv("JWT_ISSUER"),
		AppName:         appName,
		PropertyRepo:    repositories.NewPropertyRepository(db),
		UserRepo:        repositories.NewUserRepository(db),
		AppointmentRepo: repositories.NewAppointmentRepository(db),
		RequestRepo:     repositories.NewPropertyRequestRepository(db),
		InquiryRepo:     repositories.NewInquiryRepository(db),
		BlogRepo:        repositories.NewBlogRepository(db),
		ChatRepo:        repositories.NewChatRepository(db),
		NotifRepo:       repositories.NewNotificationRepository(db),
	}
}
