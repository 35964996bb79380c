package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/giannis84/ad-intelligence/internal/analyzer"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/giannis84/ad-intelligence/internal/models"
)

type fakeAnalyzer struct {
	result *models.Analysis
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, creative *models.Creative) (*models.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !creative.HasContent() {
		return nil, analyzer.ErrEmptyCreative
	}
	cp := *f.result
	return &cp, nil
}

func seedCreative(t *testing.T, repo *database.MockRepository, accountID string) *models.Creative {
	t.Helper()
	c, err := AddCreative(testContext(), repo, nil, accountID, &AddCreativeRequest{SourceType: "own", AdCopy: "Limited offer", CTA: "Buy"})
	if err != nil {
		t.Fatalf("seed setup failed: %v", err)
	}
	return c
}

func TestAnalyzeCreative(t *testing.T) {
	ctx := testContext()
	tags := &models.Analysis{Emotion: "urgency", CopyTone: "urgent", PrimaryColor: "red"}

	t.Run("stores analysis and invalidates dashboard", func(t *testing.T) {
		repo := database.NewMockRepository()
		dc := newRecordingCache()
		c := seedCreative(t, repo, "acct1")

		got, err := AnalyzeCreative(ctx, repo, &fakeAnalyzer{result: tags}, dc, metrics.New(), "acct1", c.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID == "" || got.CreativeID != c.ID || got.AccountID != "acct1" || got.CreatedAt.IsZero() {
			t.Errorf("expected identity fields to be filled, got %+v", got)
		}
		if got.VisualElements == nil || got.Recommendations == nil {
			t.Errorf("expected non-nil lists")
		}
		stored, err := repo.GetAnalysisFromDB(ctx, "acct1", c.ID)
		if err != nil || stored.Emotion != "urgency" {
			t.Errorf("expected stored analysis, got %+v, %v", stored, err)
		}
		if len(dc.invalidated) != 1 {
			t.Errorf("expected one invalidation, got %v", dc.invalidated)
		}
	})

	t.Run("re-analysis replaces the earlier result", func(t *testing.T) {
		repo := database.NewMockRepository()
		c := seedCreative(t, repo, "acct1")

		first, err := AnalyzeCreative(ctx, repo, &fakeAnalyzer{result: tags}, nil, nil, "acct1", c.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := AnalyzeCreative(ctx, repo, &fakeAnalyzer{result: &models.Analysis{Emotion: "trust"}}, nil, nil, "acct1", c.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("expected analysis id to be kept, got %s then %s", first.ID, second.ID)
		}
		all, _ := repo.ListAnalysesFromDB(ctx, "acct1")
		if len(all) != 1 || all[0].Emotion != "trust" {
			t.Errorf("expected a single replaced analysis, got %+v", all)
		}
	})

	t.Run("unknown creative", func(t *testing.T) {
		repo := database.NewMockRepository()
		fa := &fakeAnalyzer{result: tags}

		_, err := AnalyzeCreative(ctx, repo, fa, nil, nil, "acct1", "missing")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
		if fa.calls != 0 {
			t.Errorf("analyzer should not be called for a missing creative")
		}
	})

	t.Run("analyzer failure is wrapped", func(t *testing.T) {
		repo := database.NewMockRepository()
		c := seedCreative(t, repo, "acct1")

		_, err := AnalyzeCreative(ctx, repo, &fakeAnalyzer{err: analyzer.ErrInvalidOutput}, nil, nil, "acct1", c.ID)
		if !errors.Is(err, analyzer.ErrInvalidOutput) {
			t.Errorf("expected ErrInvalidOutput, got: %v", err)
		}
		if _, err := repo.GetAnalysisFromDB(ctx, "acct1", c.ID); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected nothing stored, got: %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		repo := database.NewMockRepository()
		_, err := AnalyzeCreative(ctx, repo, nil, nil, nil, "acct1", "c1")
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got: %v", err)
		}
	})
}
