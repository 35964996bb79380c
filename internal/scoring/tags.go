package scoring

import (
	"strings"

	"github.com/giannis84/ad-intelligence/internal/models"
)

// normalizeTag is the comparison key for tag values.
func normalizeTag(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// valueSet is an insertion-ordered set of case-insensitive tag values. The
// first spelling seen is kept for display.
type valueSet struct {
	seen   map[string]struct{}
	values []string
}

func newValueSet() *valueSet {
	return &valueSet{seen: make(map[string]struct{})}
}

func (s *valueSet) add(v string) {
	key := normalizeTag(v)
	if key == "" {
		return
	}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.values = append(s.values, strings.TrimSpace(v))
}

func (s *valueSet) len() int { return len(s.values) }

// tagSets are the five distinct-value sets the diversity score is built from.
type tagSets struct {
	emotions       *valueSet
	copyTones      *valueSet
	colors         *valueSet
	ctas           *valueSet
	visualElements *valueSet
	analyzed       int
}

// collectTags flattens all analyses into distinct-value sets. CTAs come from
// the creative the analysis belongs to, not from the analysis itself.
func collectTags(creatives []*models.Creative, analyses []*models.Analysis) tagSets {
	byID := indexCreatives(creatives)
	sets := tagSets{
		emotions:       newValueSet(),
		copyTones:      newValueSet(),
		colors:         newValueSet(),
		ctas:           newValueSet(),
		visualElements: newValueSet(),
	}
	for _, a := range analyses {
		if a == nil {
			continue
		}
		sets.analyzed++
		sets.emotions.add(a.Emotion)
		sets.copyTones.add(a.CopyTone)
		sets.colors.add(a.PrimaryColor)
		for _, v := range a.VisualElements {
			sets.visualElements.add(v)
		}
		if c, ok := byID[a.CreativeID]; ok {
			sets.ctas.add(c.CTA)
		}
	}
	return sets
}

func indexCreatives(creatives []*models.Creative) map[string]*models.Creative {
	byID := make(map[string]*models.Creative, len(creatives))
	for _, c := range creatives {
		if c == nil {
			continue
		}
		if _, exists := byID[c.ID]; !exists {
			byID[c.ID] = c
		}
	}
	return byID
}

// indexAnalyses maps creative id to the first analysis seen for it.
func indexAnalyses(analyses []*models.Analysis) map[string]*models.Analysis {
	byCreative := make(map[string]*models.Analysis, len(analyses))
	for _, a := range analyses {
		if a == nil {
			continue
		}
		if _, exists := byCreative[a.CreativeID]; !exists {
			byCreative[a.CreativeID] = a
		}
	}
	return byCreative
}

func countAnalyses(analyses []*models.Analysis) int {
	n := 0
	for _, a := range analyses {
		if a != nil {
			n++
		}
	}
	return n
}

func countCreatives(creatives []*models.Creative) int {
	n := 0
	for _, c := range creatives {
		if c != nil {
			n++
		}
	}
	return n
}
