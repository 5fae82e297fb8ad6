package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/repos"
	"github.com/medlabel/medlabel-backend/internal/types"
)

// CandidateRow is one machine-extracted field set prepared for the correction
// form: form/route are case-folded for dropdown matching and the free-text
// dosage is pre-split into amount and unit.
type CandidateRow struct {
	Name          string `json:"name"`
	Form          string `json:"form"`
	Dosage        string `json:"dosage"`
	DosageAmount  string `json:"dosage_amount"`
	DosageUnit    string `json:"dosage_unit"`
	Concentration string `json:"concentration"`
	Frequency     string `json:"frequency"`
	Duration      string `json:"duration"`
	Route         string `json:"route"`
}

// Assignment is the working set handed to one operator session.
type Assignment struct {
	DocID           int64           `json:"document_id"`
	RawText         string          `json:"raw_text"`
	ExtractedFields json.RawMessage `json:"extracted_fields,omitempty"`
	Candidates      []CandidateRow  `json:"candidate_rows"`
}

// CorrectionRow is one operator-finalized field set.
type CorrectionRow struct {
	Name          string `json:"name"`
	Form          string `json:"form"`
	Dosage        string `json:"dosage"`
	Concentration string `json:"concentration"`
	Frequency     string `json:"frequency"`
	Duration      string `json:"duration"`
	Route         string `json:"route"`
}

type SubmitResult struct {
	DocID     int64    `json:"document_id"`
	SavedRows int      `json:"saved_rows"`
	Completed bool     `json:"completed"`
	Warnings  []string `json:"warnings,omitempty"`
}

type AnnotationService interface {
	// GetAssignment expires stale claims, claims the next unclaimed document
	// for the operator and returns its working set. ErrNoWorkAvailable when
	// the pool is empty. Stateless between calls: the caller's session must
	// not re-invoke while it already holds an assignment.
	GetAssignment(ctx context.Context, operatorID string) (*Assignment, error)
	// SubmitCorrection persists the corrected rows and completes the claim as
	// one unit of work. If the claim already expired the rows are still kept
	// and ErrClaimConflict is returned alongside the result.
	SubmitCorrection(ctx context.Context, operatorID string, docID int64, rows []CorrectionRow) (*SubmitResult, error)
	// DiscardAssignment is a soft skip: the claim stays in_process and only
	// returns to the pool through natural expiry.
	DiscardAssignment(ctx context.Context, operatorID string, docID int64) error
}

type annotationService struct {
	db             *gorm.DB
	log            *logger.Logger
	claimRepo      repos.ClaimRepo
	documentRepo   repos.DocumentRepo
	candidateRepo  repos.CandidateRepo
	correctionRepo repos.CorrectionRepo
	vocabService   VocabularyService
	claimExpiry    time.Duration
}

func NewAnnotationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	claimRepo repos.ClaimRepo,
	documentRepo repos.DocumentRepo,
	candidateRepo repos.CandidateRepo,
	correctionRepo repos.CorrectionRepo,
	vocabService VocabularyService,
	claimExpiry time.Duration,
) AnnotationService {
	return &annotationService{
		db:             db,
		log:            baseLog.With("service", "AnnotationService"),
		claimRepo:      claimRepo,
		documentRepo:   documentRepo,
		candidateRepo:  candidateRepo,
		correctionRepo: correctionRepo,
		vocabService:   vocabService,
		claimExpiry:    claimExpiry,
	}
}

func (s *annotationService) GetAssignment(ctx context.Context, operatorID string) (*Assignment, error) {
	if operatorID == "" {
		return nil, fmt.Errorf("missing operator id")
	}

	// Abandoned sessions return their documents to the pool before every
	// assignment attempt.
	if _, err := s.claimRepo.ExpireStale(ctx, nil, s.claimExpiry); err != nil {
		s.log.Warn("GetAssignment: expire stale claims failed", "error", err)
		return nil, err
	}

	claim, err := s.claimRepo.ClaimNextUnclaimed(ctx, nil, operatorID)
	if err != nil {
		s.log.Warn("GetAssignment: claim failed", "error", err, "operator_id", operatorID)
		return nil, err
	}
	if claim == nil {
		return nil, ErrNoWorkAvailable
	}

	docs, err := s.documentRepo.GetByIDs(ctx, nil, []int64{claim.DocID})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("claimed document %d not found", claim.DocID)
	}
	doc := docs[0]

	candidates, err := s.candidateRepo.GetByDocIDs(ctx, nil, []int64{claim.DocID})
	if err != nil {
		return nil, err
	}

	rows := make([]CandidateRow, 0, len(candidates))
	for _, c := range candidates {
		amount, unit := splitDosage(c.Dosage)
		rows = append(rows, CandidateRow{
			Name:          c.Name,
			Form:          Normalize(c.Form),
			Dosage:        c.Dosage,
			DosageAmount:  amount,
			DosageUnit:    unit,
			Concentration: c.Concentration,
			Frequency:     c.Frequency,
			Duration:      c.Duration,
			Route:         Normalize(c.Route),
		})
	}

	s.log.Info("Assignment handed out", "doc_id", claim.DocID, "operator_id", operatorID, "candidate_rows", len(rows))
	return &Assignment{
		DocID:           doc.ID,
		RawText:         doc.RawText,
		ExtractedFields: json.RawMessage(doc.ExtractedFields),
		Candidates:      rows,
	}, nil
}

func (s *annotationService) SubmitCorrection(ctx context.Context, operatorID string, docID int64, rows []CorrectionRow) (*SubmitResult, error) {
	if operatorID == "" {
		return nil, fmt.Errorf("missing operator id")
	}
	if docID == 0 {
		return nil, fmt.Errorf("missing document id")
	}

	now := time.Now()
	corrections := make([]*types.Correction, 0, len(rows))
	for _, row := range rows {
		corrections = append(corrections, &types.Correction{
			ID:            uuid.New(),
			DocID:         docID,
			OperatorID:    operatorID,
			Name:          row.Name,
			Form:          row.Form,
			Dosage:        row.Dosage,
			Concentration: row.Concentration,
			Frequency:     row.Frequency,
			Duration:      row.Duration,
			Route:         row.Route,
		})
	}

	// One unit of work: a failed insert leaves the claim in_process so the
	// document is retried rather than silently lost. A zero-row completion is
	// not an insert failure; the corrections stay committed and the conflict
	// is surfaced below.
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.correctionRepo.Create(ctx, tx, corrections); err != nil {
			return err
		}
		var cErr error
		affected, cErr = s.claimRepo.CompleteClaim(ctx, tx, docID, operatorID, now)
		return cErr
	})
	if err != nil {
		s.log.Warn("SubmitCorrection: transaction failed", "error", err, "doc_id", docID, "operator_id", operatorID)
		return nil, err
	}

	result := &SubmitResult{
		DocID:     docID,
		SavedRows: len(corrections),
		Completed: affected > 0,
		Warnings:  s.vocabWarnings(ctx, rows),
	}
	if affected == 0 {
		s.log.Warn("Claim ownership lost before completion, corrections kept", "doc_id", docID, "operator_id", operatorID)
		return result, ErrClaimConflict
	}

	s.log.Info("Correction saved", "doc_id", docID, "operator_id", operatorID, "rows", len(corrections))
	return result, nil
}

func (s *annotationService) DiscardAssignment(ctx context.Context, operatorID string, docID int64) error {
	if operatorID == "" {
		return fmt.Errorf("missing operator id")
	}
	// The claim is deliberately left in_process: a skip is bounded by the
	// expiry window, not an immediate release.
	s.log.Info("Assignment discarded, claim left to expire", "doc_id", docID, "operator_id", operatorID)
	return nil
}

// vocabWarnings reports corrected values that fall outside the known
// vocabularies. Advisory only: submission is never blocked, the UI may offer
// to extend the vocabulary instead.
func (s *annotationService) vocabWarnings(ctx context.Context, rows []CorrectionRow) []string {
	var warnings []string
	check := func(category, field, value string) {
		if value == "" {
			return
		}
		ok, err := s.vocabService.Contains(ctx, category, value)
		if err != nil {
			s.log.Warn("Vocabulary check failed", "error", err, "category", category)
			return
		}
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s %q is not in the known vocabulary", field, value))
		}
	}
	for _, row := range rows {
		check(types.VocabCategoryForm, "form", row.Form)
		check(types.VocabCategoryRoute, "route", row.Route)
		check(types.VocabCategoryFrequency, "frequency", row.Frequency)
	}
	return warnings
}

var dosagePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(\w+)`)

// splitDosage splits a free-text dosage like "500 mg" into amount and unit
// for form prefill. Unparseable values pass through as the amount.
func splitDosage(dosage string) (string, string) {
	if dosage == "" {
		return "", ""
	}
	m := dosagePattern.FindStringSubmatch(dosage)
	if m == nil {
		return dosage, ""
	}
	return m[1], m[2]
}
