package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/giannis84/ad-intelligence/internal/models"
)

const (
	compareToAverage         = "compared to average"
	mostFrequentlyUsedPhrase = "Most frequently used in your creatives"
)

// Insight is the single highlighted takeaway.
type Insight struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// TopInsight picks the most actionable insight. A measured CTR signal always
// wins over the descriptive emotion pattern. Returns nil when there is
// nothing to say.
func TopInsight(creatives []*models.Creative, analyses []*models.Analysis) *Insight {
	if countAnalyses(analyses) == 0 || countCreatives(creatives) == 0 {
		return nil
	}
	if insight := performanceInsight(creatives, analyses); insight != nil {
		return insight
	}
	return emotionInsight(analyses)
}

type measuredCreative struct {
	creative *models.Creative
	analysis *models.Analysis
	ctr      float64
}

// performanceInsight reports the best CTR uplift against the mean of all
// analyzed creatives that have a CTR.
func performanceInsight(creatives []*models.Creative, analyses []*models.Analysis) *Insight {
	byCreative := indexAnalyses(analyses)

	var measured []measuredCreative
	for _, c := range creatives {
		if c == nil || !c.Metrics.HasCTR() {
			continue
		}
		a, ok := byCreative[c.ID]
		if !ok {
			continue
		}
		measured = append(measured, measuredCreative{creative: c, analysis: a, ctr: *c.Metrics.CTR})
	}
	if len(measured) == 0 {
		return nil
	}

	// Strict comparison keeps the first creative on ties.
	best := measured[0]
	sum := 0.0
	for _, m := range measured {
		sum += m.ctr
		if m.ctr > best.ctr {
			best = m
		}
	}
	avg := sum / float64(len(measured))

	return &Insight{
		Value:       fmt.Sprintf("+%d%% CTR", ctrImprovement(best.ctr, avg)),
		Description: describeBest(best.analysis),
	}
}

// ctrImprovement is the rounded percentage uplift of best over avg. A zero
// average has no meaningful uplift and reports 0.
func ctrImprovement(best, avg float64) int {
	if avg == 0 {
		return 0
	}
	uplift := math.Round((best - avg) / avg * 100)
	if math.IsNaN(uplift) || math.IsInf(uplift, 0) {
		return 0
	}
	return int(uplift)
}

func describeBest(a *models.Analysis) string {
	if d := strings.TrimSpace(a.PerformanceDriver); d != "" {
		return d
	}
	if e := strings.TrimSpace(a.Emotion); e != "" {
		return e + " emotion"
	}
	if t := strings.TrimSpace(a.CopyTone); t != "" {
		return t + " tone"
	}
	if len(a.VisualElements) > 0 {
		if v := strings.TrimSpace(a.VisualElements[0]); v != "" {
			return v
		}
	}
	return compareToAverage
}

// emotionInsight reports the most frequent emotion. Counting is
// case-insensitive; the first spelling seen is displayed and the first
// emotion encountered wins a tie.
func emotionInsight(analyses []*models.Analysis) *Insight {
	counts := make(map[string]int)
	display := make(map[string]string)
	var order []string

	for _, a := range analyses {
		if a == nil {
			continue
		}
		key := normalizeTag(a.Emotion)
		if key == "" {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			display[key] = strings.TrimSpace(a.Emotion)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return nil
	}

	top := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[top] {
			top = key
		}
	}
	return &Insight{
		Value:       display[top] + " emotion",
		Description: mostFrequentlyUsedPhrase,
	}
}
