package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/giannis84/ad-intelligence/internal/scoring"
)

// testContext returns a context with a discarding logger for tests.
func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return logging.NewContextWithLogger(context.Background(), logger)
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

// recordingCache is an in-memory DashboardCache that remembers invalidations.
// afterGeneration runs once the generation has been handed out.
type recordingCache struct {
	entries         map[string]*scoring.DashboardMetrics
	generations     map[string]int64
	invalidated     []string
	getErr          error
	sets            int
	afterGeneration func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		entries:     make(map[string]*scoring.DashboardMetrics),
		generations: make(map[string]int64),
	}
}

func (c *recordingCache) Generation(_ context.Context, accountID string) (int64, error) {
	gen := c.generations[accountID]
	if c.afterGeneration != nil {
		c.afterGeneration()
	}
	return gen, nil
}

func (c *recordingCache) Get(_ context.Context, accountID string) (*scoring.DashboardMetrics, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	m, ok := c.entries[accountID]
	return m, ok, nil
}

func (c *recordingCache) Set(_ context.Context, accountID string, generation int64, m *scoring.DashboardMetrics) error {
	if c.generations[accountID] != generation {
		return cache.ErrStale
	}
	c.sets++
	c.entries[accountID] = m
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, accountID string) error {
	c.invalidated = append(c.invalidated, accountID)
	c.generations[accountID]++
	delete(c.entries, accountID)
	return nil
}

// --- Handler tests ---

func TestAddCreative(t *testing.T) {
	tests := []struct {
		name       string
		req        AddCreativeRequest
		wantErr    bool
		wantValErr bool   // expect *ValidationError
		errSubstr  string // substring expected in error message
	}{
		{
			name: "valid own creative with metrics",
			req: AddCreativeRequest{
				SourceType: "own", BrandName: "Acme", AdCopy: "Big sale today", CTA: "Shop Now",
				Metrics: &models.PerformanceMetrics{Impressions: int64Ptr(1000), Clicks: int64Ptr(30), CTR: float64Ptr(3)},
			},
		},
		{
			name: "valid competitor creative with only an image",
			req:  AddCreativeRequest{SourceType: "competitor", ImageURL: "https://cdn.example.com/ad.png"},
		},
		{
			name:       "missing source type",
			req:        AddCreativeRequest{AdCopy: "copy"},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "source_type is required",
		},
		{
			name:       "unknown source type",
			req:        AddCreativeRequest{SourceType: "partner", AdCopy: "copy"},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "source_type has invalid value",
		},
		{
			name:       "no content",
			req:        AddCreativeRequest{SourceType: "own", BrandName: "  "},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "at least one of",
		},
		{
			name:       "relative image url",
			req:        AddCreativeRequest{SourceType: "own", ImageURL: "/img/ad.png"},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "image_url must be an absolute http(s) URL",
		},
		{
			name:       "ad copy too long",
			req:        AddCreativeRequest{SourceType: "own", AdCopy: strings.Repeat("a", maxAdCopyLength+1)},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "ad_copy exceeds maximum length",
		},
		{
			name: "negative impressions",
			req: AddCreativeRequest{SourceType: "own", AdCopy: "copy",
				Metrics: &models.PerformanceMetrics{Impressions: int64Ptr(-1)}},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "metrics.impressions must not be negative",
		},
		{
			name: "ctr above 100",
			req: AddCreativeRequest{SourceType: "own", AdCopy: "copy",
				Metrics: &models.PerformanceMetrics{CTR: float64Ptr(120)}},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "must not exceed 100",
		},
		{
			name: "more clicks than impressions",
			req: AddCreativeRequest{SourceType: "own", AdCopy: "copy",
				Metrics: &models.PerformanceMetrics{Impressions: int64Ptr(10), Clicks: int64Ptr(11)}},
			wantErr:    true,
			wantValErr: true,
			errSubstr:  "metrics.clicks must not exceed metrics.impressions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := database.NewMockRepository()
			dc := newRecordingCache()
			ctx := testContext()

			creative, err := AddCreative(ctx, repo, dc, "acct1", &tt.req)

			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if tt.wantErr {
				if tt.wantValErr {
					var valErr *ValidationError
					if !errors.As(err, &valErr) {
						t.Fatalf("expected *ValidationError, got %T: %v", err, err)
					}
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("expected error to contain %q, got: %v", tt.errSubstr, err)
				}
				if len(dc.invalidated) != 0 {
					t.Errorf("expected no cache invalidation on failure")
				}
				return
			}

			if creative.ID == "" || creative.Platform != models.PlatformManual || creative.AccountID != "acct1" {
				t.Errorf("unexpected creative: %+v", creative)
			}
			stored, err := repo.GetCreativeFromDB(ctx, "acct1", creative.ID)
			if err != nil {
				t.Fatalf("expected creative to be stored: %v", err)
			}
			if stored.SourceType != models.SourceType(tt.req.SourceType) {
				t.Errorf("expected source type %s, got %s", tt.req.SourceType, stored.SourceType)
			}
			if len(dc.invalidated) != 1 || dc.invalidated[0] != "acct1" {
				t.Errorf("expected dashboard invalidation for acct1, got %v", dc.invalidated)
			}
		})
	}
}

func TestAddCreativeTrimsContent(t *testing.T) {
	repo := database.NewMockRepository()
	creative, err := AddCreative(testContext(), repo, nil, "acct1",
		&AddCreativeRequest{SourceType: "own", CTA: "  Learn More  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creative.CTA != "Learn More" {
		t.Errorf("expected trimmed cta, got %q", creative.CTA)
	}
}

func TestListCreatives(t *testing.T) {
	repo := database.NewMockRepository()
	ctx := testContext()

	for _, acct := range []string{"acct1", "acct1", "acct2"} {
		if _, err := AddCreative(ctx, repo, nil, acct, &AddCreativeRequest{SourceType: "own", AdCopy: "copy"}); err != nil {
			t.Fatalf("seed setup failed: %v", err)
		}
	}

	creatives, err := ListCreatives(ctx, repo, "acct1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creatives) != 2 {
		t.Errorf("expected 2 creatives for acct1, got %d", len(creatives))
	}

	empty, err := ListCreatives(ctx, repo, "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}

func TestGetCreative(t *testing.T) {
	ctx := testContext()

	t.Run("without analysis", func(t *testing.T) {
		repo := database.NewMockRepository()
		c, _ := AddCreative(ctx, repo, nil, "acct1", &AddCreativeRequest{SourceType: "own", AdCopy: "copy"})

		got, err := GetCreative(ctx, repo, "acct1", c.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != c.ID || got.Analysis != nil {
			t.Errorf("expected creative without analysis, got %+v", got)
		}
	})

	t.Run("with analysis", func(t *testing.T) {
		repo := database.NewMockRepository()
		c, _ := AddCreative(ctx, repo, nil, "acct1", &AddCreativeRequest{SourceType: "own", AdCopy: "copy"})
		_ = repo.SaveAnalysisInDB(ctx, &models.Analysis{ID: "a1", CreativeID: c.ID, AccountID: "acct1", Emotion: "trust"})

		got, err := GetCreative(ctx, repo, "acct1", c.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Analysis == nil || got.Analysis.Emotion != "trust" {
			t.Errorf("expected analysis with emotion trust, got %+v", got.Analysis)
		}
	})

	t.Run("other account is not found", func(t *testing.T) {
		repo := database.NewMockRepository()
		c, _ := AddCreative(ctx, repo, nil, "acct1", &AddCreativeRequest{SourceType: "own", AdCopy: "copy"})

		_, err := GetCreative(ctx, repo, "acct2", c.ID)
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := database.NewMockRepository()
		repo.Err = errors.New("db down")

		_, err := GetCreative(ctx, repo, "acct1", "c1")
		if err == nil || err.Error() != "db down" {
			t.Errorf("expected db down, got: %v", err)
		}
	})
}

func TestRemoveCreative(t *testing.T) {
	ctx := testContext()

	t.Run("removes creative and its analysis", func(t *testing.T) {
		repo := database.NewMockRepository()
		dc := newRecordingCache()
		c, _ := AddCreative(ctx, repo, nil, "acct1", &AddCreativeRequest{SourceType: "own", AdCopy: "copy"})
		_ = repo.SaveAnalysisInDB(ctx, &models.Analysis{ID: "a1", CreativeID: c.ID, AccountID: "acct1"})

		if err := RemoveCreative(ctx, repo, dc, "acct1", c.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.GetAnalysisFromDB(ctx, "acct1", c.ID); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected analysis to be removed, got: %v", err)
		}
		if len(dc.invalidated) != 1 {
			t.Errorf("expected one invalidation, got %v", dc.invalidated)
		}
	})

	t.Run("missing creative", func(t *testing.T) {
		repo := database.NewMockRepository()
		dc := newRecordingCache()

		err := RemoveCreative(ctx, repo, dc, "acct1", "missing")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
		if len(dc.invalidated) != 0 {
			t.Errorf("expected no invalidation, got %v", dc.invalidated)
		}
	})
}

// --- Validation unit tests ---

func TestValidateCreativeID(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		wantErr   bool
		errSubstr string
	}{
		{name: "valid id", id: "6f1c2a9e-0000-4000-8000-000000000000"},
		{name: "blank id", id: "  ", wantErr: true, errSubstr: "creativeID is required"},
		{name: "too long", id: strings.Repeat("x", 256), wantErr: true, errSubstr: "creativeID exceeds maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreativeID(tt.id)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("expected error to contain %q, got: %v", tt.errSubstr, err)
			}
		})
	}
}

func TestValidationErrorCollectsAllFieldErrors(t *testing.T) {
	// Verify that validation returns all errors at once, not just the first one.
	err := validateAddCreative(&AddCreativeRequest{
		Metrics: &models.PerformanceMetrics{Clicks: int64Ptr(-1), Spend: float64Ptr(-2)},
	})
	valErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	// source_type, content, clicks, spend
	if len(valErr.Errors) != 4 {
		t.Errorf("expected 4 validation errors, got %d: %v", len(valErr.Errors), valErr.Errors)
	}
}
