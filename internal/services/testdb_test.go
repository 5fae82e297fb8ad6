package services

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/repos"
	"github.com/medlabel/medlabel-backend/internal/types"
)

func newTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "services_test.db")
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

type testEnv struct {
	db             *gorm.DB
	claimRepo      repos.ClaimRepo
	correctionRepo repos.CorrectionRepo
	annotation     AnnotationService
	vocabulary     VocabularyService
}

func newTestEnv(tb testing.TB, claimExpiry time.Duration) *testEnv {
	tb.Helper()
	db := newTestDB(tb)
	log := newTestLogger(tb)

	claimRepo := repos.NewClaimRepo(db, log)
	documentRepo := repos.NewDocumentRepo(db, log)
	candidateRepo := repos.NewCandidateRepo(db, log)
	correctionRepo := repos.NewCorrectionRepo(db, log)
	vocabularyRepo := repos.NewVocabularyRepo(db, log)

	vocabulary := NewVocabularyService(db, log, vocabularyRepo)
	annotation := NewAnnotationService(db, log, claimRepo, documentRepo, candidateRepo, correctionRepo, vocabulary, claimExpiry)

	return &testEnv{
		db:             db,
		claimRepo:      claimRepo,
		correctionRepo: correctionRepo,
		annotation:     annotation,
		vocabulary:     vocabulary,
	}
}

func (e *testEnv) seedDocument(tb testing.TB, id int64, rawText string, candidates ...*types.StructuredCandidate) {
	tb.Helper()
	if err := e.db.Create(&types.Document{ID: id, RawText: rawText}).Error; err != nil {
		tb.Fatalf("seed document %d: %v", id, err)
	}
	for _, c := range candidates {
		c.DocID = id
		if err := e.db.Create(c).Error; err != nil {
			tb.Fatalf("seed candidate for %d: %v", id, err)
		}
	}
}

func (e *testEnv) backdateClaim(tb testing.TB, docID int64, age time.Duration) {
	tb.Helper()
	if err := e.db.Model(&types.Claim{}).
		Where("doc_id = ?", docID).
		Update("claimed_at", time.Now().Add(-age)).Error; err != nil {
		tb.Fatalf("backdate claim %d: %v", docID, err)
	}
}
