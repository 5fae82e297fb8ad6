package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm/clause"

	"github.com/medlabel/medlabel-backend/internal/db"
	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/repos"
	"github.com/medlabel/medlabel-backend/internal/types"
)

// seedFile mirrors the fixture layout:
//
//	documents:
//	  - id: 1
//	    raw_text: "..."
//	    candidates:
//	      - {name: Aspirin, form: tablet, dosage: 100 mg, ...}
//	vocabulary:
//	  form_options: [tablet, capsule]
//
// Development tooling only; production corpora are ingested out of band.
type seedFile struct {
	Documents []struct {
		ID         int64  `yaml:"id"`
		RawText    string `yaml:"raw_text"`
		Candidates []struct {
			Name          string `yaml:"name"`
			Form          string `yaml:"form"`
			Dosage        string `yaml:"dosage"`
			Concentration string `yaml:"concentration"`
			Frequency     string `yaml:"frequency"`
			Duration      string `yaml:"duration"`
			Route         string `yaml:"route"`
		} `yaml:"candidates"`
	} `yaml:"documents"`
	Vocabulary map[string][]string `yaml:"vocabulary"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "seed.yaml", "seed fixture to load")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read seed file", "path", path, "error", err)
		os.Exit(1)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Error("Failed to parse seed file", "path", path, "error", err)
		os.Exit(1)
	}

	storeService, err := db.NewStoreService(log)
	if err != nil {
		log.Error("Store init failed", "error", err)
		os.Exit(1)
	}
	if err := storeService.AutoMigrateAll(); err != nil {
		log.Error("Store auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := storeService.DB()

	ctx := context.Background()
	vocabularyRepo := repos.NewVocabularyRepo(theDB, log)

	for _, d := range seed.Documents {
		doc := &types.Document{ID: d.ID, RawText: d.RawText}
		if err := theDB.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(doc).Error; err != nil {
			log.Error("Failed to seed document", "doc_id", d.ID, "error", err)
			os.Exit(1)
		}
		for _, c := range d.Candidates {
			candidate := &types.StructuredCandidate{
				DocID:         d.ID,
				Name:          c.Name,
				Form:          c.Form,
				Dosage:        c.Dosage,
				Concentration: c.Concentration,
				Frequency:     c.Frequency,
				Duration:      c.Duration,
				Route:         c.Route,
			}
			if err := theDB.WithContext(ctx).Create(candidate).Error; err != nil {
				log.Error("Failed to seed candidate", "doc_id", d.ID, "error", err)
				os.Exit(1)
			}
		}
	}

	for category, values := range seed.Vocabulary {
		if !types.KnownVocabCategory(category) {
			log.Warn("Skipping unknown vocabulary category", "category", category)
			continue
		}
		existing, err := vocabularyRepo.ListByCategory(ctx, nil, category)
		if err != nil {
			log.Error("Failed to read vocabulary", "category", category, "error", err)
			os.Exit(1)
		}
		seen := make(map[string]bool, len(existing))
		for _, t := range existing {
			seen[t.Value] = true
		}
		for _, v := range values {
			if seen[v] {
				continue
			}
			if _, err := vocabularyRepo.Append(ctx, nil, category, v); err != nil {
				log.Error("Failed to seed vocabulary value", "category", category, "value", v, "error", err)
				os.Exit(1)
			}
			seen[v] = true
		}
	}

	log.Info("Seed complete", "documents", len(seed.Documents), "vocab_categories", len(seed.Vocabulary))
}
