// Package scoring computes the dashboard metrics for one account: the
// creative diversity score, the top insight and the aggregate performance
// stats. Every function is pure: inputs are read in the order given, never
// mutated or re-sorted, and no function returns an error.
package scoring

import (
	"fmt"

	"github.com/giannis84/ad-intelligence/internal/models"
)

const noAnalysesDescription = "No analyzed creatives yet"

// DiversityScore is the bounded summary rendered on the dashboard card.
type DiversityScore struct {
	Score       int    `json:"score"`
	MaxScore    int    `json:"maxScore"`
	Description string `json:"description"`
}

// DimensionScore is one row of the breakdown view.
type DimensionScore struct {
	Dimension Dimension `json:"dimension"`
	Values    []string  `json:"values"`
	Count     int       `json:"count"`
	Points    int       `json:"points"`
	Cap       int       `json:"cap"`
}

// DiversityBreakdown is the detailed view. Its total always equals the score
// returned by DiversityWithWeights for the same weights and inputs.
type DiversityBreakdown struct {
	DiversityScore
	Dimensions []DimensionScore `json:"dimensions"`
}

// Diversity scores creatives and analyses with the default weights.
func Diversity(creatives []*models.Creative, analyses []*models.Analysis) DiversityScore {
	return DiversityWithWeights(DefaultWeights(), creatives, analyses)
}

// DiversityWithWeights scores creatives and analyses with the given weights.
func DiversityWithWeights(w ScoringWeights, creatives []*models.Creative, analyses []*models.Analysis) DiversityScore {
	return Breakdown(w, creatives, analyses).DiversityScore
}

// Breakdown computes the score together with the per-dimension contributions.
func Breakdown(w ScoringWeights, creatives []*models.Creative, analyses []*models.Analysis) DiversityBreakdown {
	maxScore := w.MaxScore()
	sets := collectTags(creatives, analyses)

	byDimension := map[Dimension]*valueSet{
		DimensionEmotions:       sets.emotions,
		DimensionCopyTones:      sets.copyTones,
		DimensionColors:         sets.colors,
		DimensionCTAs:           sets.ctas,
		DimensionVisualElements: sets.visualElements,
	}

	dims := make([]DimensionScore, 0, len(byDimension))
	total := 0
	for _, nw := range w.ordered() {
		set := byDimension[nw.dimension]
		values := make([]string, len(set.values))
		copy(values, set.values)

		points := 0
		if sets.analyzed > 0 {
			points = nw.weight.points(set.len())
		}
		total += points
		dims = append(dims, DimensionScore{
			Dimension: nw.dimension,
			Values:    values,
			Count:     set.len(),
			Points:    points,
			Cap:       nw.weight.Cap,
		})
	}

	if sets.analyzed == 0 {
		return DiversityBreakdown{
			DiversityScore: DiversityScore{Score: 0, MaxScore: maxScore, Description: noAnalysesDescription},
			Dimensions:     dims,
		}
	}

	if total > maxScore {
		total = maxScore
	}
	if total < 0 {
		total = 0
	}

	return DiversityBreakdown{
		DiversityScore: DiversityScore{
			Score:       total,
			MaxScore:    maxScore,
			Description: analyzedDescription(sets.analyzed),
		},
		Dimensions: dims,
	}
}

func analyzedDescription(n int) string {
	if n == 1 {
		return "1 analyzed creative"
	}
	return fmt.Sprintf("%d analyzed creatives", n)
}
