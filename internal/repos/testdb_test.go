package repos

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/types"
)

func newTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "repos_test.db")
	db, err := gorm.Open(sqlite.Open("file:"+path+"?_busy_timeout=5000"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&types.Document{},
		&types.StructuredCandidate{},
		&types.Claim{},
		&types.Correction{},
		&types.VocabularyTerm{},
	); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init test logger: %v", err)
	}
	return log
}

func seedDocuments(tb testing.TB, db *gorm.DB, ids ...int64) {
	tb.Helper()
	for _, id := range ids {
		doc := &types.Document{ID: id, RawText: "aspirin 100 mg once daily"}
		if err := db.Create(doc).Error; err != nil {
			tb.Fatalf("seed document %d: %v", id, err)
		}
	}
}
