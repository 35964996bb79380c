package analyzer

import (
	"fmt"
	"strings"

	"github.com/giannis84/ad-intelligence/internal/models"
)

var systemPrompt = `You are an advertising creative analyst. You classify ad creatives and explain what drives their performance.
Respond with a single JSON object and nothing else, using exactly these keys:
{"emotion": string, "copy_tone": string, "primary_color": string, "visual_elements": [string], "performance_driver": string, "recommendations": [string]}
Prefer these emotions: ` + strings.Join(models.ExpectedEmotions, ", ") + `.
Prefer these copy tones: ` + strings.Join(models.ExpectedCopyTones, ", ") + `.
performance_driver is one short sentence. Give at most three recommendations.`

// BuildPrompt renders the user message for one creative. Missing fields are omitted.
func BuildPrompt(c *models.Creative) string {
	var b strings.Builder
	b.WriteString("Analyze this ad creative.\n")
	if c.SourceType == models.SourceTypeCompetitor {
		b.WriteString("It is a competitor's ad.\n")
	}
	writeField(&b, "Brand", c.BrandName)
	writeField(&b, "Ad copy", c.AdCopy)
	writeField(&b, "Call to action", c.CTA)
	writeField(&b, "Image URL", c.ImageURL)
	if c.Metrics.CTR != nil {
		fmt.Fprintf(&b, "Click-through rate: %.2f%%\n", *c.Metrics.CTR)
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}
