// Creative and analysis model definitions
package models

import "time"

type SourceType string

const (
	SourceTypeOwn        SourceType = "own"
	SourceTypeCompetitor SourceType = "competitor"
)

// Platform records where a creative was imported from.
type Platform string

const (
	PlatformManual    Platform = "manual"
	PlatformGoogleAds Platform = "google_ads"
)

// PerformanceMetrics is a sparse record: nil means "not yet measured".
// CTR is expressed in percentage units (3.5 means 3.5%).
type PerformanceMetrics struct {
	Impressions *int64   `json:"impressions,omitempty"`
	Clicks      *int64   `json:"clicks,omitempty"`
	CTR         *float64 `json:"ctr,omitempty"`
	CPC         *float64 `json:"cpc,omitempty"`
	Spend       *float64 `json:"spend,omitempty"`
	Conversions *float64 `json:"conversions,omitempty"`
}

// HasCTR reports whether a click-through-rate has been supplied.
func (m PerformanceMetrics) HasCTR() bool { return m.CTR != nil }

type Creative struct {
	ID         string             `json:"id"`
	AccountID  string             `json:"account_id"`
	SourceType SourceType         `json:"source_type"`
	Platform   Platform           `json:"platform"`
	ExternalID string             `json:"external_id,omitempty"`
	BrandName  string             `json:"brand_name,omitempty"`
	AdCopy     string             `json:"ad_copy,omitempty"`
	CTA        string             `json:"cta,omitempty"`
	ImageURL   string             `json:"image_url,omitempty"`
	Metrics    PerformanceMetrics `json:"metrics"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// HasContent reports whether there is anything for the AI step to look at.
func (c *Creative) HasContent() bool {
	return c.AdCopy != "" || c.CTA != "" || c.ImageURL != "" || c.BrandName != ""
}

// Analysis holds the AI-derived tags for exactly one creative. Tags are open
// strings; the vocabularies below are what the UI expects, not a constraint.
type Analysis struct {
	ID                string    `json:"id"`
	CreativeID        string    `json:"creative_id"`
	AccountID         string    `json:"account_id"`
	Emotion           string    `json:"emotion,omitempty"`
	CopyTone          string    `json:"copy_tone,omitempty"`
	PrimaryColor      string    `json:"primary_color,omitempty"`
	VisualElements    []string  `json:"visual_elements"`
	PerformanceDriver string    `json:"performance_driver,omitempty"`
	Recommendations   []string  `json:"recommendations"`
	CreatedAt         time.Time `json:"created_at"`
}

var (
	ExpectedEmotions  = []string{"excitement", "urgency", "trust", "curiosity", "aspiration", "neutral"}
	ExpectedCopyTones = []string{"urgent", "promotional", "informative", "exciting", "curious"}
)

// CreativeWithAnalysis is the read model returned by the single-creative endpoint.
type CreativeWithAnalysis struct {
	*Creative
	Analysis *Analysis `json:"analysis"`
}
