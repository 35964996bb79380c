// Package adplatform connects accounts to Google Ads and imports their
// creatives together with delivery metrics.
package adplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/giannis84/ad-intelligence/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	AdwordsScope   = "https://www.googleapis.com/auth/adwords"
	defaultBaseURL = "https://googleads.googleapis.com"
	microsPerUnit  = 1_000_000
)

// adsQuery pulls every non-removed ad with its last-30-day totals.
const adsQuery = `SELECT
  ad_group_ad.ad.id,
  ad_group_ad.ad.responsive_search_ad.headlines,
  ad_group_ad.ad.responsive_search_ad.descriptions,
  ad_group_ad.ad.responsive_display_ad.business_name,
  ad_group_ad.ad.responsive_display_ad.call_to_action_text,
  ad_group_ad.ad.responsive_display_ad.headlines,
  ad_group_ad.ad.responsive_display_ad.descriptions,
  customer.descriptive_name,
  metrics.impressions,
  metrics.clicks,
  metrics.ctr,
  metrics.average_cpc,
  metrics.cost_micros,
  metrics.conversions
FROM ad_group_ad
WHERE segments.date DURING LAST_30_DAYS
  AND ad_group_ad.status != 'REMOVED'`

var (
	ErrUnauthorized = errors.New("google ads rejected the stored credentials")
	ErrNoCustomer   = errors.New("no accessible google ads customer")
)

// APIError is a non-2xx response from the Google Ads API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google ads api: status %d: %s", e.StatusCode, e.Body)
}

type GoogleAdsConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURL     string
	DeveloperToken  string
	LoginCustomerID string
	APIVersion      string

	// BaseURL and TokenURL default to Google's production endpoints.
	BaseURL    string
	TokenURL   string
	HTTPClient *http.Client
	Backoff    Backoff
}

// GoogleAds implements the OAuth flow and the GAQL search used for imports.
type GoogleAds struct {
	oauth          *oauth2.Config
	baseURL        string
	apiVersion     string
	developerToken string
	loginCustomer  string
	httpClient     *http.Client
	backoff        Backoff
}

func NewGoogleAds(cfg GoogleAdsConfig) *GoogleAds {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	backoff := cfg.Backoff
	if backoff == (Backoff{}) {
		backoff = NewBackoff(500*time.Millisecond, 3)
	}

	return &GoogleAds{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{AdwordsScope},
			Endpoint:     endpoint,
		},
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiVersion:     cfg.APIVersion,
		developerToken: cfg.DeveloperToken,
		loginCustomer:  strings.ReplaceAll(cfg.LoginCustomerID, "-", ""),
		httpClient:     httpClient,
		backoff:        backoff,
	}
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// consent makes Google issue a refresh token on every connection.
func (g *GoogleAds) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *GoogleAds) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauth.Exchange(g.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

func (g *GoogleAds) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// authorizedClient wraps token in a refreshing source and obtains a valid
// access token up front. The returned source reports the token actually
// used so callers can persist a refresh.
func (g *GoogleAds) authorizedClient(ctx context.Context, token *oauth2.Token) (*http.Client, oauth2.TokenSource, error) {
	octx := g.oauthContext(ctx)
	source := oauth2.ReuseTokenSource(token, g.oauth.TokenSource(octx, token))
	if _, err := source.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return oauth2.NewClient(octx, source), source, nil
}

// ListAccessibleCustomers returns the customer ids the token can reach.
func (g *GoogleAds) ListAccessibleCustomers(ctx context.Context, token *oauth2.Token) ([]string, *oauth2.Token, error) {
	client, source, err := g.authorizedClient(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	url := fmt.Sprintf("%s/%s/customers:listAccessibleCustomers", g.baseURL, g.apiVersion)

	var resp struct {
		ResourceNames []string `json:"resourceNames"`
	}
	if err := g.call(ctx, client, http.MethodGet, url, nil, &resp); err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(resp.ResourceNames))
	for _, name := range resp.ResourceNames {
		ids = append(ids, strings.TrimPrefix(name, "customers/"))
	}
	return ids, currentToken(source, token), nil
}

// SearchAds runs the import query for one customer, following pagination.
func (g *GoogleAds) SearchAds(ctx context.Context, token *oauth2.Token, customerID string) ([]ImportedAd, *oauth2.Token, error) {
	client, source, err := g.authorizedClient(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	customerID = strings.ReplaceAll(customerID, "-", "")
	url := fmt.Sprintf("%s/%s/customers/%s/googleAds:search", g.baseURL, g.apiVersion, customerID)

	var ads []ImportedAd
	pageToken := ""
	for {
		body := searchRequest{Query: adsQuery, PageToken: pageToken}
		var page searchResponse
		if err := g.call(ctx, client, http.MethodPost, url, body, &page); err != nil {
			return nil, nil, err
		}
		for _, row := range page.Results {
			if ad, ok := row.toImportedAd(); ok {
				ads = append(ads, ad)
			}
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return ads, currentToken(source, token), nil
}

func currentToken(source oauth2.TokenSource, fallback *oauth2.Token) *oauth2.Token {
	if t, err := source.Token(); err == nil {
		return t
	}
	return fallback
}

// call performs one JSON request, retrying throttling and server errors.
func (g *GoogleAds) call(ctx context.Context, client *http.Client, method, url string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	return g.backoff.Do(ctx, func(int) error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("developer-token", g.developerToken)
		if g.loginCustomer != "" {
			req.Header.Set("login-customer-id", g.loginCustomer)
		}

		resp, err := client.Do(req)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return fmt.Errorf("%w: %v", ErrUnauthorized, err)
			}
			return retryable(fmt.Errorf("calling google ads: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				return fmt.Errorf("%w: %v", ErrUnauthorized, apiErr)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return retryable(apiErr)
			default:
				return apiErr
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding google ads response: %w", err)
		}
		return nil
	})
}

// ImportedAd is one ad with its aggregated metrics, already converted to
// the units used by creatives (CTR in percent, money in currency units).
type ImportedAd struct {
	ExternalID string
	BrandName  string
	AdCopy     string
	CTA        string
	Metrics    models.PerformanceMetrics
}

// Creative maps the ad onto an own creative. ID and timestamps are left
// for the caller.
func (a ImportedAd) Creative(accountID string) *models.Creative {
	return &models.Creative{
		AccountID:  accountID,
		SourceType: models.SourceTypeOwn,
		Platform:   models.PlatformGoogleAds,
		ExternalID: a.ExternalID,
		BrandName:  a.BrandName,
		AdCopy:     a.AdCopy,
		CTA:        a.CTA,
		Metrics:    a.Metrics,
	}
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []searchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken"`
}

type textAsset struct {
	Text string `json:"text"`
}

type searchRow struct {
	Customer struct {
		DescriptiveName string `json:"descriptiveName"`
	} `json:"customer"`
	AdGroupAd struct {
		Ad struct {
			ID                 flexInt64 `json:"id"`
			ResponsiveSearchAd *struct {
				Headlines    []textAsset `json:"headlines"`
				Descriptions []textAsset `json:"descriptions"`
			} `json:"responsiveSearchAd"`
			ResponsiveDisplayAd *struct {
				BusinessName     string      `json:"businessName"`
				CallToActionText string      `json:"callToActionText"`
				Headlines        []textAsset `json:"headlines"`
				Descriptions     []textAsset `json:"descriptions"`
			} `json:"responsiveDisplayAd"`
		} `json:"ad"`
	} `json:"adGroupAd"`
	Metrics struct {
		Impressions *flexInt64 `json:"impressions"`
		Clicks      *flexInt64 `json:"clicks"`
		CTR         *float64   `json:"ctr"`
		AverageCPC  *float64   `json:"averageCpc"`
		CostMicros  *flexInt64 `json:"costMicros"`
		Conversions *float64   `json:"conversions"`
	} `json:"metrics"`
}

func (r searchRow) toImportedAd() (ImportedAd, bool) {
	ad := r.AdGroupAd.Ad
	if ad.ID == 0 {
		return ImportedAd{}, false
	}

	out := ImportedAd{
		ExternalID: strconv.FormatInt(int64(ad.ID), 10),
		BrandName:  r.Customer.DescriptiveName,
	}

	var headlines, descriptions []textAsset
	switch {
	case ad.ResponsiveSearchAd != nil:
		headlines = ad.ResponsiveSearchAd.Headlines
		descriptions = ad.ResponsiveSearchAd.Descriptions
	case ad.ResponsiveDisplayAd != nil:
		headlines = ad.ResponsiveDisplayAd.Headlines
		descriptions = ad.ResponsiveDisplayAd.Descriptions
		out.CTA = ad.ResponsiveDisplayAd.CallToActionText
		if ad.ResponsiveDisplayAd.BusinessName != "" {
			out.BrandName = ad.ResponsiveDisplayAd.BusinessName
		}
	}
	out.AdCopy = joinCopy(headlines, descriptions)

	m := r.Metrics
	if m.Impressions != nil {
		v := int64(*m.Impressions)
		out.Metrics.Impressions = &v
	}
	if m.Clicks != nil {
		v := int64(*m.Clicks)
		out.Metrics.Clicks = &v
	}
	if m.CTR != nil {
		v := *m.CTR * 100
		out.Metrics.CTR = &v
	}
	if m.AverageCPC != nil {
		v := *m.AverageCPC / microsPerUnit
		out.Metrics.CPC = &v
	}
	if m.CostMicros != nil {
		v := float64(*m.CostMicros) / microsPerUnit
		out.Metrics.Spend = &v
	}
	if m.Conversions != nil {
		v := *m.Conversions
		out.Metrics.Conversions = &v
	}
	return out, true
}

func joinCopy(headlines, descriptions []textAsset) string {
	parts := func(assets []textAsset, sep string) string {
		texts := make([]string, 0, len(assets))
		for _, a := range assets {
			if t := strings.TrimSpace(a.Text); t != "" {
				texts = append(texts, t)
			}
		}
		return strings.Join(texts, sep)
	}

	h, d := parts(headlines, " | "), parts(descriptions, " ")
	switch {
	case h == "":
		return d
	case d == "":
		return h
	default:
		return h + "\n" + d
	}
}

// flexInt64 accepts int64 values encoded either as JSON numbers or as
// strings, which is how the REST interface renders 64-bit fields.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing int64 %q: %w", s, err)
	}
	*f = flexInt64(v)
	return nil
}
