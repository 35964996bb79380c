package scoring

// Dimension names one creative testing axis.
type Dimension string

const (
	DimensionEmotions       Dimension = "emotions"
	DimensionCopyTones      Dimension = "copy_tones"
	DimensionColors         Dimension = "colors"
	DimensionCTAs           Dimension = "ctas"
	DimensionVisualElements Dimension = "visual_elements"
)

// DimensionWeight scores a dimension as min(unique*PerValue, Cap).
type DimensionWeight struct {
	PerValue int `json:"per_value"`
	Cap      int `json:"cap"`
}

func (w DimensionWeight) points(unique int) int {
	p := unique * w.PerValue
	if p > w.Cap {
		p = w.Cap
	}
	if p < 0 {
		p = 0
	}
	return p
}

// ScoringWeights is the single weight table behind every diversity surface
// (dashboard card and breakdown view alike).
type ScoringWeights struct {
	Emotions       DimensionWeight `json:"emotions"`
	CopyTones      DimensionWeight `json:"copy_tones"`
	Colors         DimensionWeight `json:"colors"`
	CTAs           DimensionWeight `json:"ctas"`
	VisualElements DimensionWeight `json:"visual_elements"`
}

// DefaultWeights returns the canonical table. Four or five distinct values
// saturate a dimension.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Emotions:       DimensionWeight{PerValue: 5, Cap: 20},
		CopyTones:      DimensionWeight{PerValue: 5, Cap: 20},
		Colors:         DimensionWeight{PerValue: 4, Cap: 20},
		CTAs:           DimensionWeight{PerValue: 4, Cap: 20},
		VisualElements: DimensionWeight{PerValue: 2, Cap: 20},
	}
}

// MaxScore is the sum of the dimension caps.
func (w ScoringWeights) MaxScore() int {
	total := 0
	for _, d := range w.ordered() {
		if d.weight.Cap > 0 {
			total += d.weight.Cap
		}
	}
	return total
}

type namedWeight struct {
	dimension Dimension
	weight    DimensionWeight
}

func (w ScoringWeights) ordered() []namedWeight {
	return []namedWeight{
		{DimensionEmotions, w.Emotions},
		{DimensionCopyTones, w.CopyTones},
		{DimensionColors, w.Colors},
		{DimensionCTAs, w.CTAs},
		{DimensionVisualElements, w.VisualElements},
	}
}
