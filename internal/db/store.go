package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
	"github.com/medlabel/medlabel-backend/internal/utils"
)

// StoreService opens the shared relational store. The same schema and claim
// semantics run on either backend: a client/server Postgres or an embedded
// SQLite file, selected by DB_DRIVER.
type StoreService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreService(log *logger.Logger) (*StoreService, error) {
	serviceLog := log.With("service", "StoreService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "medlabel.db", log)
		dialector = sqlite.Open("file:" + path + "?_busy_timeout=5000")
	case "postgres":
		postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "medlabel", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	serviceLog.Info("Connecting to store...", "driver", driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to store", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; funnel everything through one
		// connection so concurrent sessions queue instead of failing.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &StoreService{db: db, log: serviceLog}, nil
}

// AutoMigrateAll creates the tables this service owns. The external corpus
// tables (documents, structured_candidates) are migrated too so the embedded
// variant works out of the box; in the client/server deployment the ingestion
// pipeline has already created them and AutoMigrate is a no-op.
func (s *StoreService) AutoMigrateAll() error {
	s.log.Info("Auto migrating store tables...")
	err := s.db.AutoMigrate(
		&types.Document{},
		&types.StructuredCandidate{},
		&types.Claim{},
		&types.Correction{},
		&types.VocabularyTerm{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for store tables", "error", err)
		return err
	}
	return nil
}

func (s *StoreService) DB() *gorm.DB {
	return s.db
}
