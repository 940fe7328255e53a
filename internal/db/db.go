package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/types"
	"github.com/greenstem/plantcare-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects using DB_DRIVER (postgres by default; sqlite for local runs).
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "plantcare.db", log)
		return openSQLite(path, serviceLog)
	case "postgres":
		postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "plantcare", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

		serviceLog.Info("Connecting to Postgres...")
		gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			serviceLog.Error("Failed to connect to Postgres", "error", err)
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return &Service{db: gdb, log: serviceLog}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func openSQLite(path string, serviceLog *logger.Logger) (*Service, error) {
	serviceLog.Info("Opening sqlite database...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		serviceLog.Error("Failed to open sqlite database", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite ships with FK enforcement off; cascades depend on it.
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(
		&types.User{},
		&types.Plant{},
		&types.EnvironmentReading{},
		&types.CareTask{},
		&types.Recommendation{},
		&types.CareHistory{},
		&types.PlantHealthMetric{},
		&types.SpeciesProfile{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
