package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medlabel/medlabel-backend/internal/types"
)

func TestGetAssignmentHandsDistinctDocuments(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)
	ctx := context.Background()

	env.seedDocument(t, 1, "Aspirin 500 mg orally once daily", &types.StructuredCandidate{
		Name:   "Aspirin",
		Form:   "Tablet",
		Dosage: "500 mg",
		Route:  "Oral",
	})
	env.seedDocument(t, 2, "Heparin 5000 IU sc")
	env.seedDocument(t, 3, "Atorvastatin 40 mg at night")

	a, err := env.annotation.GetAssignment(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAssignment alice: %v", err)
	}
	if a.DocID != 1 {
		t.Fatalf("expected doc 1 for alice, got %d", a.DocID)
	}
	if a.RawText != "Aspirin 500 mg orally once daily" {
		t.Fatalf("unexpected raw text %q", a.RawText)
	}
	if len(a.Candidates) != 1 {
		t.Fatalf("expected 1 candidate row, got %d", len(a.Candidates))
	}
	row := a.Candidates[0]
	if row.Form != "tablet" || row.Route != "oral" {
		t.Fatalf("expected case-folded form/route, got %q/%q", row.Form, row.Route)
	}
	if row.DosageAmount != "500" || row.DosageUnit != "mg" {
		t.Fatalf("expected dosage split 500/mg, got %q/%q", row.DosageAmount, row.DosageUnit)
	}

	b, err := env.annotation.GetAssignment(ctx, "bob")
	if err != nil {
		t.Fatalf("GetAssignment bob: %v", err)
	}
	if b.DocID == a.DocID {
		t.Fatalf("bob received alice's document %d", b.DocID)
	}
	if b.DocID != 2 {
		t.Fatalf("expected doc 2 for bob, got %d", b.DocID)
	}
}

func TestGetAssignmentNoWork(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)

	_, err := env.annotation.GetAssignment(context.Background(), "alice")
	if !errors.Is(err, ErrNoWorkAvailable) {
		t.Fatalf("expected ErrNoWorkAvailable, got %v", err)
	}
}

func TestGetAssignmentReclaimsExpired(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)
	ctx := context.Background()

	env.seedDocument(t, 1, "doc one")

	a, err := env.annotation.GetAssignment(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAssignment alice: %v", err)
	}
	if a.DocID != 1 {
		t.Fatalf("expected doc 1, got %d", a.DocID)
	}

	// Abandoned past the threshold: the next assignment request sweeps the
	// stale claim and hands the document to the new operator.
	env.backdateClaim(t, 1, 31*time.Minute)

	b, err := env.annotation.GetAssignment(ctx, "bob")
	if err != nil {
		t.Fatalf("GetAssignment bob: %v", err)
	}
	if b.DocID != 1 {
		t.Fatalf("expected doc 1 reassigned to bob, got %d", b.DocID)
	}

	claims, err := env.claimRepo.GetByDocIDs(ctx, nil, []int64{1})
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim row, got %d", len(claims))
	}
	if claims[0].OperatorID != "bob" || claims[0].Status != types.ClaimStatusInProcess {
		t.Fatalf("expected bob's in_process claim, got %+v", claims[0])
	}
}

func TestSubmitCorrectionCompletesClaim(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)
	ctx := context.Background()

	env.seedDocument(t, 1, "doc one")
	if _, err := env.vocabulary.Add(ctx, types.VocabCategoryForm, "tablet"); err != nil {
		t.Fatalf("seed vocabulary: %v", err)
	}

	if _, err := env.annotation.GetAssignment(ctx, "alice"); err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}

	rows := []CorrectionRow{
		{Name: "Aspirin", Form: "Tablet", Dosage: "500 mg", Frequency: "1-0-1", Route: "oral"},
	}
	result, err := env.annotation.SubmitCorrection(ctx, "alice", 1, rows)
	if err != nil {
		t.Fatalf("SubmitCorrection: %v", err)
	}
	if !result.Completed || result.SavedRows != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	// "Tablet" case-folds onto the known form; frequency and route are
	// outside the (empty) vocabularies and only warn.
	for _, w := range result.Warnings {
		if w == `form "Tablet" is not in the known vocabulary` {
			t.Fatalf("form should match the vocabulary after normalization: %v", result.Warnings)
		}
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings (frequency, route), got %v", result.Warnings)
	}

	claims, err := env.claimRepo.GetByDocIDs(ctx, nil, []int64{1})
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 || claims[0].Status != types.ClaimStatusCompleted {
		t.Fatalf("expected completed claim, got %+v", claims)
	}
	if claims[0].CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}

	saved, err := env.correctionRepo.GetByDocIDs(ctx, nil, []int64{1})
	if err != nil {
		t.Fatalf("load corrections: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "Aspirin" {
		t.Fatalf("expected saved correction, got %+v", saved)
	}
}

func TestSubmitCorrectionAfterClaimLost(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)
	ctx := context.Background()

	env.seedDocument(t, 1, "doc one")

	if _, err := env.annotation.GetAssignment(ctx, "alice"); err != nil {
		t.Fatalf("GetAssignment alice: %v", err)
	}
	env.backdateClaim(t, 1, 31*time.Minute)
	b, err := env.annotation.GetAssignment(ctx, "bob")
	if err != nil {
		t.Fatalf("GetAssignment bob: %v", err)
	}
	if b.DocID != 1 {
		t.Fatalf("expected doc 1 reassigned to bob, got %d", b.DocID)
	}

	// Alice's session still believes it owns document 1. Completing bob's
	// fresh claim on her behalf would be wrong, but her corrections must not
	// be lost either.
	result, err := env.annotation.SubmitCorrection(ctx, "alice", 1, []CorrectionRow{
		{Name: "Aspirin", Dosage: "100 mg"},
	})
	if !errors.Is(err, ErrClaimConflict) {
		t.Fatalf("expected ErrClaimConflict, got %v", err)
	}
	if result == nil || result.Completed {
		t.Fatalf("expected uncompleted result, got %+v", result)
	}

	saved, err := env.correctionRepo.GetByDocIDs(ctx, nil, []int64{1})
	if err != nil {
		t.Fatalf("load corrections: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected alice's correction persisted, got %d rows", len(saved))
	}

	claims, err := env.claimRepo.GetByDocIDs(ctx, nil, []int64{1})
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 || claims[0].OperatorID != "bob" || claims[0].Status != types.ClaimStatusInProcess {
		t.Fatalf("bob's claim must be untouched, got %+v", claims)
	}
}

func TestSubmitCorrectionCompletesBobsClaimOnlyOnBobsSubmit(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)
	ctx := context.Background()

	env.seedDocument(t, 1, "doc one")

	if _, err := env.annotation.GetAssignment(ctx, "bob"); err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	result, err := env.annotation.SubmitCorrection(ctx, "bob", 1, []CorrectionRow{{Name: "Heparin"}})
	if err != nil {
		t.Fatalf("SubmitCorrection: %v", err)
	}
	if !result.Completed {
		t.Fatalf("expected completion, got %+v", result)
	}
}

func TestDiscardLeavesClaimInProcess(t *testing.T) {
	env := newTestEnv(t, 30*time.Minute)
	ctx := context.Background()

	env.seedDocument(t, 1, "doc one")
	env.seedDocument(t, 2, "doc two")

	a, err := env.annotation.GetAssignment(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if err := env.annotation.DiscardAssignment(ctx, "alice", a.DocID); err != nil {
		t.Fatalf("DiscardAssignment: %v", err)
	}

	// Skip is soft: the claim stays in_process and the document is not
	// handed out again before expiry.
	claims, err := env.claimRepo.GetByDocIDs(ctx, nil, []int64{a.DocID})
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 1 || claims[0].Status != types.ClaimStatusInProcess {
		t.Fatalf("expected in_process claim after discard, got %+v", claims)
	}

	next, err := env.annotation.GetAssignment(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAssignment next: %v", err)
	}
	if next.DocID != 2 {
		t.Fatalf("expected doc 2 after discard, got %d", next.DocID)
	}
}

func TestSplitDosage(t *testing.T) {
	cases := []struct {
		in     string
		amount string
		unit   string
	}{
		{"500 mg", "500", "mg"},
		{"0.5ml", "0.5", "ml"},
		{"2 tablets", "2", "tablets"},
		{"as needed", "as needed", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		amount, unit := splitDosage(c.in)
		if amount != c.amount || unit != c.unit {
			t.Fatalf("splitDosage(%q) = %q/%q, expected %q/%q", c.in, amount, unit, c.amount, c.unit)
		}
	}
}
