package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sellaro/sellaro-backend/config"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var client *mongo.Client
var database *mongo.Database

// Init establishes the document-store connection
func Init(cfg *config.MongoConfig) error {
	logger.Info("Initializing document store connection", map[string]interface{}{
		"uri":      cfg.URI,
		"database": cfg.DBName,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("Failed to ping document store", err, map[string]interface{}{
			"uri": cfg.URI,
		})
		return fmt.Errorf("failed to ping document store: %w", err)
	}

	database = client.Database(cfg.DBName)

	logger.Info("Document store connection established successfully", nil)
	return nil
}

// Collection returns a handle to the named collection
func Collection(name string) *mongo.Collection {
	return database.Collection(name)
}

// Close terminates the document-store connection
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing document store connection", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
