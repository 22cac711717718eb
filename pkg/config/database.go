package config

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DB holds the document store and the connection behind it
type DB struct {
	Store     docstore.Store
	firestore *firestore.Client
	mongo     *mongo.Client
	log       *zap.Logger
}

// InitDB opens the document store selected by STORE_DRIVER
func InitDB(ctx context.Context, cfg *Config, app *firebase.App, log *zap.Logger) (*DB, error) {
	db := &DB{log: log}

	switch cfg.StoreDriver {
	case DriverFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		db.firestore = client
		db.Store = docstore.NewFirestore(client)
		log.Info("connected to firestore")

	case DriverMongo:
		client, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.mongo = client
		db.Store = docstore.NewMongo(client.Database(cfg.MongoDatabase))
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))

	case DriverMemory:
		db.Store = docstore.NewMemory()
		log.Warn("using in-memory document store; data is lost on exit")

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// CloseDB closes the store connection, if any
func (db *DB) CloseDB() {
	if db.firestore != nil {
		if err := db.firestore.Close(); err != nil {
			db.log.Error("error closing firestore client", zap.Error(err))
		} else {
			db.log.Info("firestore client closed")
		}
	}

	if db.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.mongo.Disconnect(ctx); err != nil {
			db.log.Error("error closing mongodb connection", zap.Error(err))
		} else {
			db.log.Info("mongodb connection closed")
		}
	}
}
