package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
	// Documents is the Mongo database holding post documents
	Documents *mongo.Database

	log zerolog.Logger
}

// InitDB opens the relational store and MongoDB and verifies both are reachable
func InitDB(ctx context.Context, cfg *Config, log zerolog.Logger) (*DB, error) {
	sqlDB, err := initSQL(cfg.Database, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Database.Driver, err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("relational database connected")

	mongoClient, err := initMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		closeSQL(sqlDB, log)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("MongoDB connected")

	return &DB{
		SQL:       sqlDB,
		Mongo:     mongoClient,
		Documents: mongoClient.Database(cfg.Mongo.Database),
		log:       log,
	}, nil
}

func initSQL(cfg DatabaseConfig, quiet bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresURL)
	}

	gormCfg := &gorm.Config{}
	if quiet {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func closeSQL(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Err(err).Msg("getting sql.DB from gorm")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("closing relational database")
	}
}

// Close closes the database connections
func (db *DB) Close() {
	if db.SQL != nil {
		closeSQL(db.SQL, db.log)
	}
	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error().Err(err).Msg("closing MongoDB connection")
		}
	}
	db.log.Info().Msg("database connections closed")
}
