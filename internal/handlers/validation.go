package handlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/giannis84/ad-intelligence/internal/models"
)

const (
	maxStringLength = 255
	maxAdCopyLength = 5000
	maxURLLength    = 2048
)

var validSourceTypes = []string{string(models.SourceTypeOwn), string(models.SourceTypeCompetitor)}

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// validate collects errors and returns a *ValidationError if any exist.
func validate(checks ...func() string) error {
	var errs []string
	for _, check := range checks {
		if msg := check(); msg != "" {
			errs = append(errs, msg)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func requireNonEmpty(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required", field)
	}
	return ""
}

func checkMaxLength(field, value string, max int) string {
	if len(value) > max {
		return fmt.Sprintf("%s exceeds maximum length of %d", field, max)
	}
	return ""
}

func checkInList(field, value string, allowed []string) string {
	for _, v := range allowed {
		if value == v {
			return ""
		}
	}
	return fmt.Sprintf("%s has invalid value %q (allowed: %s)", field, value, strings.Join(allowed, ", "))
}

func checkNonNegativeInt(field string, value *int64) string {
	if value != nil && *value < 0 {
		return fmt.Sprintf("%s must not be negative", field)
	}
	return ""
}

func checkNonNegativeFloat(field string, value *float64) string {
	if value != nil && *value < 0 {
		return fmt.Sprintf("%s must not be negative", field)
	}
	return ""
}

func checkHTTPURL(field, value string) string {
	if value == "" {
		return ""
	}
	u, err := url.ParseRequestURI(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("%s must be an absolute http(s) URL", field)
	}
	return ""
}

// validateAddCreative validates a manual or competitor creative. At least one
// content field must be present so the creative can be analyzed later.
func validateAddCreative(req *AddCreativeRequest) error {
	checks := []func() string{
		func() string { return requireNonEmpty("source_type", req.SourceType) },
		func() string {
			if req.SourceType == "" {
				return ""
			}
			return checkInList("source_type", req.SourceType, validSourceTypes)
		},
		func() string {
			if strings.TrimSpace(req.BrandName+req.AdCopy+req.CTA+req.ImageURL) == "" {
				return "at least one of brand_name, ad_copy, cta, image_url is required"
			}
			return ""
		},
		func() string { return checkMaxLength("brand_name", req.BrandName, maxStringLength) },
		func() string { return checkMaxLength("ad_copy", req.AdCopy, maxAdCopyLength) },
		func() string { return checkMaxLength("cta", req.CTA, maxStringLength) },
		func() string { return checkMaxLength("image_url", req.ImageURL, maxURLLength) },
		func() string { return checkHTTPURL("image_url", req.ImageURL) },
	}

	if m := req.Metrics; m != nil {
		checks = append(checks,
			func() string { return checkNonNegativeInt("metrics.impressions", m.Impressions) },
			func() string { return checkNonNegativeInt("metrics.clicks", m.Clicks) },
			func() string { return checkNonNegativeFloat("metrics.ctr", m.CTR) },
			func() string { return checkNonNegativeFloat("metrics.cpc", m.CPC) },
			func() string { return checkNonNegativeFloat("metrics.spend", m.Spend) },
			func() string { return checkNonNegativeFloat("metrics.conversions", m.Conversions) },
			func() string {
				if m.CTR != nil && *m.CTR > 100 {
					return "metrics.ctr is a percentage and must not exceed 100"
				}
				return ""
			},
			func() string {
				if m.Clicks != nil && m.Impressions != nil && *m.Clicks > *m.Impressions {
					return "metrics.clicks must not exceed metrics.impressions"
				}
				return ""
			},
		)
	}

	return validate(checks...)
}

// ValidateCreativeID rejects blank path parameters before they reach the store.
func ValidateCreativeID(creativeID string) error {
	return validate(
		func() string { return requireNonEmpty("creativeID", creativeID) },
		func() string { return checkMaxLength("creativeID", creativeID, maxStringLength) },
	)
}
