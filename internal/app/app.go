package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config *config.Config
	Mongo  *mongo.Client
	DB     *mongo.Database
	// Redis is nil when REDIS_URL is unset.
	Redis *redis.Client
}

func NewApp(cfg *config.Config) (*App, error) {
	var (
		client  *mongo.Client
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		client, err = connectMongo(cfg.MongoURI)
		if err == nil {
			utils.Logger.Infof("%s connected to MongoDB on attempt %d", cfg.AppName, i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed MongoDB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	a := &App{
		Config: cfg,
		Mongo:  client,
		DB:     client.Database(cfg.MongoDatabase),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repositories.EnsureIndexes(ctx, a.DB); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.Redis = redis.NewClient(opts)
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		utils.Logger.Info("Connected to Redis")
	} else {
		utils.Logger.Warn("REDIS_URL not set; using in-process rate limiting and no dashboard cache")
	}

	return a, nil
}

func connectMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Ping checks every backing store; a nil value means healthy.
func (a *App) Ping(ctx context.Context) map[string]error {
	out := map[string]error{"mongodb": a.Mongo.Ping(ctx, readpref.Primary())}
	if a.Redis != nil {
		out["redis"] = a.Redis.Ping(ctx).Err()
	}
	return out
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Redis close failed")
		}
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			utils.Logger.WithError(err).Warn("MongoDB disconnect failed")
			return
		}
		utils.Logger.Infof("%s MongoDB connection closed.", a.Config.AppName)
	}
}
