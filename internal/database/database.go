package database

import (
	"fmt"

	"github.com/yukikurage/sponsorship-backoffice/internal/config"
	"github.com/yukikurage/sponsorship-backoffice/internal/logger"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector picks the GORM driver for the configured database
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		// Dates are parsed as UTC midnight; any other loc shifts DATE columns by a day
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
		)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Connect opens the database and applies the pool settings
func Connect(cfg config.DatabaseConfig, zl *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(zl, logger.MapGormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	zl.Info("Database connection established",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)
	return db, nil
}

// Migrate creates or updates every table the back office owns
func Migrate(db *gorm.DB, zl *zap.Logger) error {
	zl.Info("Running database migrations")
	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Beneficiary{},
		&models.Sponsor{},
		&models.Referent{},
		&models.TaskObjectType{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskComment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, zl); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	zl.Info("Database migrations completed")
	return nil
}
