package config

import (
	"context"
	"fmt"
	"time"

	"mfs-service/internal/adapters/persistence/models"
	"mfs-service/internal/adapters/persistence/repositories"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenUserStore connects the configured user store.
// The caller owns the returned repository and must Close it at shutdown.
func OpenUserStore(ctx context.Context, cfg *Config, log *zap.Logger) (repositories.UserRepository, error) {
	switch cfg.Database.Driver {
	case DriverMongo:
		return connectMongo(ctx, cfg, log)
	case DriverMySQL:
		return connectMySQL(ctx, cfg, log)
	case DriverMemory:
		log.Warn("Using in-memory user store, data is lost on restart")
		return repositories.NewMemoryUserRepository(), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
}

// connectMongo establishes connection to MongoDB
func connectMongo(ctx context.Context, cfg *Config, log *zap.Logger) (repositories.UserRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if err := repositories.EnsureUserIndexes(ctx, client, cfg.Database.MongoDatabase, cfg.Database.MongoCollection); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("MongoDB connected",
		zap.String("database", cfg.Database.MongoDatabase),
		zap.String("collection", cfg.Database.MongoCollection),
	)

	return repositories.NewMongoUserRepository(client, cfg.Database.MongoDatabase, cfg.Database.MongoCollection), nil
}

// connectMySQL establishes connection to MySQL and migrates the users table
func connectMySQL(ctx context.Context, cfg *Config, log *zap.Logger) (repositories.UserRepository, error) {
	gormLogger := logger.Default.LogMode(logger.Error)
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(mysql.Open(buildDSN(cfg.Database)), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	log.Info("MySQL connected",
		zap.String("host", cfg.Database.Host),
		zap.String("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	return repositories.NewUserRepository(db), nil
}

// buildDSN returns the MySQL connection string
func buildDSN(d DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}
