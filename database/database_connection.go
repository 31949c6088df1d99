package database

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/config"
)

var (
	mu       sync.Mutex
	dbClient *mongo.Client
)

// Connect returns the process-wide client, dialing on first use. A failed
// attempt is not cached so the next call dials again.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	mu.Lock()
	defer mu.Unlock()

	if dbClient != nil {
		return dbClient, nil
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(cfg.ConnTimeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "connect database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "ping database")
	}

	dbClient = client
	return dbClient, nil
}

// Database returns the configured database on the cached client.
func Database(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// Ping reports whether the cached client can still reach the primary.
func Ping(ctx context.Context) error {
	mu.Lock()
	client := dbClient
	mu.Unlock()
	if client == nil {
		return apperrors.New(apperrors.CodeDependency, "database not connected")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "ping database")
	}
	return nil
}

func Disconnect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if dbClient == nil {
		return nil
	}
	err := dbClient.Disconnect(ctx)
	dbClient = nil
	return err
}
