package scoring

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/giannis84/ad-intelligence/internal/models"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func creative(id string, ctr *float64) *models.Creative {
	return &models.Creative{
		ID: id, AccountID: "acct1", SourceType: models.SourceTypeOwn,
		Metrics: models.PerformanceMetrics{CTR: ctr},
	}
}

func analysis(creativeID string) *models.Analysis {
	return &models.Analysis{ID: "an-" + creativeID, CreativeID: creativeID, AccountID: "acct1"}
}

func pointsFor(t *testing.T, b DiversityBreakdown, d Dimension) int {
	t.Helper()
	for _, dim := range b.Dimensions {
		if dim.Dimension == d {
			return dim.Points
		}
	}
	t.Fatalf("dimension %s missing from breakdown", d)
	return 0
}

// --- Diversity ---

func TestDiversity_EmptyAnalyses(t *testing.T) {
	tests := []struct {
		name      string
		creatives []*models.Creative
	}{
		{name: "no creatives", creatives: nil},
		{name: "creatives without analyses", creatives: []*models.Creative{
			{ID: "c1", CTA: "Buy now", Metrics: models.PerformanceMetrics{CTR: f64(5)}},
		}},
		{name: "nil analysis entries only", creatives: []*models.Creative{creative("c1", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diversity(tt.creatives, []*models.Analysis{nil})
			want := DiversityScore{Score: 0, MaxScore: 100, Description: "No analyzed creatives yet"}
			if got != want {
				t.Errorf("Diversity() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDiversity_Scoring(t *testing.T) {
	tests := []struct {
		name      string
		creatives []*models.Creative
		analyses  []*models.Analysis
		wantScore int
		wantDesc  string
	}{
		{
			name:      "single analysis with every tag",
			creatives: []*models.Creative{{ID: "c1", CTA: "Shop now"}},
			analyses: []*models.Analysis{{
				CreativeID: "c1", Emotion: "trust", CopyTone: "informative",
				PrimaryColor: "blue", VisualElements: []string{"logo", "product image"},
			}},
			// 5 + 5 + 4 + 4 + 2*2
			wantScore: 22,
			wantDesc:  "1 analyzed creative",
		},
		{
			name:      "analysis without tags still counts as analyzed",
			creatives: []*models.Creative{{ID: "c1"}},
			analyses:  []*models.Analysis{{CreativeID: "c1"}},
			wantScore: 0,
			wantDesc:  "1 analyzed creative",
		},
		{
			name: "cta only counted for creatives with an analysis",
			creatives: []*models.Creative{
				{ID: "c1", CTA: "Shop now"},
				{ID: "c2", CTA: "Learn more"},
			},
			analyses:  []*models.Analysis{{CreativeID: "c1"}},
			wantScore: 4,
			wantDesc:  "1 analyzed creative",
		},
		{
			name: "cta values are case-insensitive",
			creatives: []*models.Creative{
				{ID: "c1", CTA: "Shop Now"},
				{ID: "c2", CTA: "shop now "},
			},
			analyses:  []*models.Analysis{{CreativeID: "c1"}, {CreativeID: "c2"}},
			wantScore: 4,
			wantDesc:  "2 analyzed creatives",
		},
		{
			name:      "blank and whitespace tags are ignored",
			creatives: []*models.Creative{{ID: "c1", CTA: "  "}},
			analyses: []*models.Analysis{{
				CreativeID: "c1", Emotion: " ", PrimaryColor: "",
				VisualElements: []string{"", "  "},
			}},
			wantScore: 0,
			wantDesc:  "1 analyzed creative",
		},
		{
			name:      "visual elements are a flattened union",
			creatives: []*models.Creative{{ID: "c1"}, {ID: "c2"}},
			analyses: []*models.Analysis{
				{CreativeID: "c1", VisualElements: []string{"logo", "person"}},
				{CreativeID: "c2", VisualElements: []string{"Logo", "text overlay"}},
			},
			wantScore: 6,
			wantDesc:  "2 analyzed creatives",
		},
		{
			name:      "analysis for unknown creative contributes tags but no cta",
			creatives: []*models.Creative{{ID: "c1", CTA: "Buy"}},
			analyses: []*models.Analysis{
				{CreativeID: "missing", Emotion: "urgency"},
			},
			wantScore: 5,
			wantDesc:  "1 analyzed creative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diversity(tt.creatives, tt.analyses)
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.MaxScore != 100 {
				t.Errorf("maxScore = %d, want 100", got.MaxScore)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestDiversity_ToneCapSaturation(t *testing.T) {
	tones := []string{"urgent", "urgent", "promotional", "informative", "curious", "exciting"}
	var creatives []*models.Creative
	var analyses []*models.Analysis
	for i, tone := range tones {
		id := fmt.Sprintf("c%d", i)
		creatives = append(creatives, &models.Creative{ID: id})
		analyses = append(analyses, &models.Analysis{CreativeID: id, CopyTone: tone})
	}

	b := Breakdown(DefaultWeights(), creatives, analyses)
	if got := pointsFor(t, b, DimensionCopyTones); got != 20 {
		t.Errorf("copy tone points = %d, want 20", got)
	}
	if b.Score != 20 {
		t.Errorf("score = %d, want 20", b.Score)
	}
}

func TestDiversity_ColorCaseInsensitive(t *testing.T) {
	colors := []string{"Red", "red", "RED", "blue"}
	var creatives []*models.Creative
	var analyses []*models.Analysis
	for i, color := range colors {
		id := fmt.Sprintf("c%d", i)
		creatives = append(creatives, &models.Creative{ID: id})
		analyses = append(analyses, &models.Analysis{CreativeID: id, PrimaryColor: color})
	}

	b := Breakdown(DefaultWeights(), creatives, analyses)
	if got := pointsFor(t, b, DimensionColors); got != 8 {
		t.Errorf("color points = %d, want 8", got)
	}
	for _, d := range b.Dimensions {
		if d.Dimension == DimensionColors {
			if d.Count != 2 || d.Values[0] != "Red" || d.Values[1] != "blue" {
				t.Errorf("unexpected color values: %+v", d)
			}
		}
	}
}

func TestDiversity_NewEmotionMonotonic(t *testing.T) {
	emotions := []string{"excitement", "urgency", "trust", "curiosity", "aspiration", "neutral"}
	creatives := []*models.Creative{}
	analyses := []*models.Analysis{}
	prev := Diversity(creatives, analyses).Score

	for i, e := range emotions {
		id := fmt.Sprintf("c%d", i)
		creatives = append(creatives, &models.Creative{ID: id})
		analyses = append(analyses, &models.Analysis{CreativeID: id, Emotion: e})

		got := Diversity(creatives, analyses).Score
		if got < prev {
			t.Fatalf("score decreased from %d to %d after adding %q", prev, got, e)
		}
		wantDelta := 5
		if i >= 4 {
			wantDelta = 0
		}
		if got-prev != wantDelta {
			t.Errorf("adding emotion %q changed score by %d, want %d", e, got-prev, wantDelta)
		}
		prev = got
	}
}

func TestDiversity_Bounds(t *testing.T) {
	var creatives []*models.Creative
	var analyses []*models.Analysis
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("c%d", i)
		creatives = append(creatives, &models.Creative{ID: id, CTA: fmt.Sprintf("cta %d", i)})
		analyses = append(analyses, &models.Analysis{
			CreativeID:     id,
			Emotion:        fmt.Sprintf("emotion %d", i),
			CopyTone:       fmt.Sprintf("tone %d", i),
			PrimaryColor:   fmt.Sprintf("color %d", i),
			VisualElements: []string{fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)},
		})
	}

	got := Diversity(creatives, analyses)
	if got.Score != 100 {
		t.Errorf("saturated score = %d, want 100", got.Score)
	}
	if got.Score < 0 || got.Score > got.MaxScore {
		t.Errorf("score %d out of bounds [0,%d]", got.Score, got.MaxScore)
	}
}

func TestDiversityWithWeights_ClampsToMax(t *testing.T) {
	w := ScoringWeights{
		Emotions: DimensionWeight{PerValue: 50, Cap: 40},
		Colors:   DimensionWeight{PerValue: 1, Cap: 10},
	}
	creatives := []*models.Creative{{ID: "c1"}, {ID: "c2"}}
	analyses := []*models.Analysis{
		{CreativeID: "c1", Emotion: "trust", PrimaryColor: "red"},
		{CreativeID: "c2", Emotion: "urgency"},
	}

	got := DiversityWithWeights(w, creatives, analyses)
	if got.MaxScore != 50 {
		t.Errorf("maxScore = %d, want 50", got.MaxScore)
	}
	if got.Score != 41 {
		t.Errorf("score = %d, want 41", got.Score)
	}
}

func TestBreakdown_MatchesDiversity(t *testing.T) {
	creatives := []*models.Creative{{ID: "c1", CTA: "Buy"}, {ID: "c2", CTA: "Try"}}
	analyses := []*models.Analysis{
		{CreativeID: "c1", Emotion: "trust", CopyTone: "urgent", PrimaryColor: "red", VisualElements: []string{"logo"}},
		{CreativeID: "c2", Emotion: "curiosity", PrimaryColor: "green"},
	}

	b := Breakdown(DefaultWeights(), creatives, analyses)
	d := Diversity(creatives, analyses)
	if b.DiversityScore != d {
		t.Errorf("breakdown total %+v differs from diversity %+v", b.DiversityScore, d)
	}

	sum := 0
	for _, dim := range b.Dimensions {
		sum += dim.Points
	}
	if sum != b.Score {
		t.Errorf("dimension points sum = %d, want %d", sum, b.Score)
	}
	if len(b.Dimensions) != 5 {
		t.Errorf("expected 5 dimensions, got %d", len(b.Dimensions))
	}
}

// --- TopInsight ---

var ctrPattern = regexp.MustCompile(`^\+\d+% CTR$`)

func TestTopInsight_Null(t *testing.T) {
	tests := []struct {
		name      string
		creatives []*models.Creative
		analyses  []*models.Analysis
	}{
		{name: "no data"},
		{name: "creative with ctr but no analysis", creatives: []*models.Creative{creative("c1", f64(5))}},
		{name: "analyses without creatives", analyses: []*models.Analysis{{CreativeID: "c1", Emotion: "trust"}}},
		{
			name:      "analyses without emotion or ctr",
			creatives: []*models.Creative{creative("c1", nil)},
			analyses:  []*models.Analysis{{CreativeID: "c1", CopyTone: "urgent"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopInsight(tt.creatives, tt.analyses); got != nil {
				t.Errorf("expected nil insight, got %+v", got)
			}
		})
	}
}

func TestTopInsight_Performance(t *testing.T) {
	tests := []struct {
		name      string
		creatives []*models.Creative
		analyses  []*models.Analysis
		want      Insight
	}{
		{
			name:      "uplift against average",
			creatives: []*models.Creative{creative("c1", f64(10)), creative("c2", f64(2))},
			analyses: []*models.Analysis{
				{CreativeID: "c1", PerformanceDriver: "Bold price callout"},
				{CreativeID: "c2"},
			},
			want: Insight{Value: "+67% CTR", Description: "Bold price callout"},
		},
		{
			name:      "falls back to emotion of best creative",
			creatives: []*models.Creative{creative("c1", f64(1)), creative("c2", f64(3))},
			analyses:  []*models.Analysis{{CreativeID: "c1"}, {CreativeID: "c2", Emotion: "urgency", CopyTone: "urgent"}},
			want:      Insight{Value: "+50% CTR", Description: "urgency emotion"},
		},
		{
			name:      "falls back to tone",
			creatives: []*models.Creative{creative("c1", f64(4))},
			analyses:  []*models.Analysis{{CreativeID: "c1", CopyTone: "promotional", VisualElements: []string{"logo"}}},
			want:      Insight{Value: "+0% CTR", Description: "promotional tone"},
		},
		{
			name:      "falls back to first visual element",
			creatives: []*models.Creative{creative("c1", f64(4))},
			analyses:  []*models.Analysis{{CreativeID: "c1", VisualElements: []string{"product image", "logo"}}},
			want:      Insight{Value: "+0% CTR", Description: "product image"},
		},
		{
			name:      "compared to average when nothing is tagged",
			creatives: []*models.Creative{creative("c1", f64(4))},
			analyses:  []*models.Analysis{{CreativeID: "c1"}},
			want:      Insight{Value: "+0% CTR", Description: "compared to average"},
		},
		{
			name:      "zero average ctr is guarded",
			creatives: []*models.Creative{creative("c1", f64(0)), creative("c2", f64(0))},
			analyses:  []*models.Analysis{{CreativeID: "c1", Emotion: "trust"}, {CreativeID: "c2"}},
			want:      Insight{Value: "+0% CTR", Description: "trust emotion"},
		},
		{
			name: "creatives without analysis are excluded from the average",
			creatives: []*models.Creative{
				creative("c1", f64(4)), creative("c2", f64(2)), creative("c3", f64(100)),
			},
			analyses: []*models.Analysis{{CreativeID: "c1", Emotion: "trust"}, {CreativeID: "c2"}},
			want:     Insight{Value: "+33% CTR", Description: "trust emotion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopInsight(tt.creatives, tt.analyses)
			if got == nil {
				t.Fatal("expected insight, got nil")
			}
			if *got != tt.want {
				t.Errorf("TopInsight() = %+v, want %+v", *got, tt.want)
			}
			if !ctrPattern.MatchString(got.Value) {
				t.Errorf("value %q does not match CTR pattern", got.Value)
			}
		})
	}
}

func TestTopInsight_TieBreakFirstInInputOrder(t *testing.T) {
	creatives := []*models.Creative{
		creative("c1", f64(2)), creative("c2", f64(6)), creative("c3", f64(6)),
	}
	analyses := []*models.Analysis{
		{CreativeID: "c3", PerformanceDriver: "third"},
		{CreativeID: "c2", PerformanceDriver: "second"},
		{CreativeID: "c1"},
	}

	got := TopInsight(creatives, analyses)
	if got == nil || got.Description != "second" {
		t.Fatalf("expected the first creative in input order to win, got %+v", got)
	}
}

func TestTopInsight_EmotionFallback(t *testing.T) {
	tests := []struct {
		name     string
		emotions []string
		want     string
	}{
		{name: "most frequent wins", emotions: []string{"excitement", "trust", "excitement"}, want: "excitement emotion"},
		{name: "counting is case-insensitive", emotions: []string{"Trust", "excitement", "trust"}, want: "Trust emotion"},
		{name: "tie goes to first encountered", emotions: []string{"curiosity", "trust", "trust", "curiosity"}, want: "curiosity emotion"},
		{name: "missing emotions are skipped", emotions: []string{"", "aspiration", " "}, want: "aspiration emotion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var creatives []*models.Creative
			var analyses []*models.Analysis
			for i, e := range tt.emotions {
				id := fmt.Sprintf("c%d", i)
				creatives = append(creatives, creative(id, nil))
				analyses = append(analyses, &models.Analysis{CreativeID: id, Emotion: e})
			}

			got := TopInsight(creatives, analyses)
			if got == nil {
				t.Fatal("expected insight, got nil")
			}
			if got.Value != tt.want {
				t.Errorf("value = %q, want %q", got.Value, tt.want)
			}
			if got.Description != "Most frequently used in your creatives" {
				t.Errorf("unexpected description %q", got.Description)
			}
		})
	}
}

// --- Performance / Dashboard ---

func TestPerformance(t *testing.T) {
	creatives := []*models.Creative{
		{ID: "c1", Metrics: models.PerformanceMetrics{CTR: f64(2), Impressions: i64(1000), Clicks: i64(20)}},
		{ID: "c2", Metrics: models.PerformanceMetrics{CTR: f64(4), Clicks: i64(5)}},
		{ID: "c3", Metrics: models.PerformanceMetrics{Impressions: i64(999), Clicks: i64(9)}},
		nil,
	}

	got := Performance(creatives)
	if got.AvgCTR == nil || *got.AvgCTR != 3 {
		t.Errorf("avgCTR = %v, want 3", got.AvgCTR)
	}
	if got.TotalImpressions != 1000 {
		t.Errorf("totalImpressions = %d, want 1000", got.TotalImpressions)
	}
	if got.TotalClicks != 25 {
		t.Errorf("totalClicks = %d, want 25", got.TotalClicks)
	}
	if got.CreativesWithData != 2 {
		t.Errorf("creativesWithData = %d, want 2", got.CreativesWithData)
	}

	empty := Performance(nil)
	if empty.AvgCTR != nil || empty.CreativesWithData != 0 {
		t.Errorf("expected empty stats, got %+v", empty)
	}
}

func TestDashboard_CreativeWithoutAnalysis(t *testing.T) {
	got := Dashboard([]*models.Creative{creative("c1", f64(5))}, nil)

	if got.TopInsight != nil {
		t.Errorf("expected nil insight, got %+v", got.TopInsight)
	}
	if got.CreativeDiversity.Score != 0 {
		t.Errorf("expected score 0, got %d", got.CreativeDiversity.Score)
	}
	if got.PerformanceStats.CreativesWithData != 1 {
		t.Errorf("expected 1 creative with data, got %d", got.PerformanceStats.CreativesWithData)
	}
}

func TestDashboard_DoesNotMutateInputs(t *testing.T) {
	creatives := []*models.Creative{creative("c2", f64(1)), creative("c1", f64(9))}
	analyses := []*models.Analysis{analysis("c2"), analysis("c1")}

	Dashboard(creatives, analyses)

	if creatives[0].ID != "c2" || creatives[1].ID != "c1" {
		t.Error("creatives were re-ordered")
	}
	if analyses[0].CreativeID != "c2" || analyses[1].CreativeID != "c1" {
		t.Error("analyses were re-ordered")
	}
}
