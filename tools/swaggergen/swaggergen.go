// Command swaggergen generates OpenAPI 3.0 specification files (JSON and YAML)
// for the Ad Intelligence API and writes them to the api/ directory.
//
// Usage:
//
//	go run ./tools/swaggergen
//
// # For Contributors
//
// When an endpoint or a request/response type changes in internal/routes or
// internal/models, update this file so the published spec stays in sync:
//
//  1. Endpoints: Edit buildPaths() to add/modify path items and operations
//  2. Schemas: Edit buildSchemas() to add/modify request/response types
//  3. Regenerate: Run `go run ./tools/swaggergen` from the project root
//  4. Verify: Check api/swagger.yaml and api/swagger.json for correctness
//
// Helper functions:
//   - errContent(): standard error response content
//   - jsonContent(ref): application/json content referencing a component schema
//   - creativeIDParam(): the {creativeID} path parameter definition
//   - apiErrors(): the 401/406/429/500 responses every /api/v1 operation shares
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)


// ---------------------------------------------------------------------------
// Lightweight OpenAPI 3.0 types
// ---------------------------------------------------------------------------

type OpenAPI struct {
	OpenAPI    string               `json:"openapi"              yaml:"openapi"`
	Info       Info                 `json:"info"                 yaml:"info"`
	Paths      map[string]*PathItem `json:"paths"                yaml:"paths"`
	Components Components           `json:"components"           yaml:"components"`
}

type Info struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version"     yaml:"version"`
}

type PathItem struct {
	Get    *Operation `json:"get,omitempty"    yaml:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"   yaml:"post,omitempty"`
	Delete *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
}

type Operation struct {
	Tags        []string              `json:"tags"                  yaml:"tags"`
	Summary     string                `json:"summary"               yaml:"summary"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string                `json:"operationId"           yaml:"operationId"`
	Security    []map[string][]string `json:"security,omitempty"    yaml:"security,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"             yaml:"responses"`
}

type Parameter struct {
	Name        string `json:"name"        yaml:"name"`
	In          string `json:"in"          yaml:"in"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required"    yaml:"required"`
	Schema      Schema `json:"schema"      yaml:"schema"`
}

type RequestBody struct {
	Required    bool                 `json:"required"              yaml:"required"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Content     map[string]MediaType `json:"content"               yaml:"content"`
}

type MediaType struct {
	Schema Schema `json:"schema" yaml:"schema"`
}

type Response struct {
	Description string               `json:"description"       yaml:"description"`
	Headers     map[string]Header    `json:"headers,omitempty" yaml:"headers,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type Header struct {
	Description string `json:"description" yaml:"description"`
	Schema      Schema `json:"schema"      yaml:"schema"`
}

type Schema struct {
	Type                 string            `json:"type,omitempty"                 yaml:"type,omitempty"`
	Format               string            `json:"format,omitempty"               yaml:"format,omitempty"`
	Description          string            `json:"description,omitempty"          yaml:"description,omitempty"`
	Properties           map[string]Schema `json:"properties,omitempty"           yaml:"properties,omitempty"`
	Items                *Schema           `json:"items,omitempty"                yaml:"items,omitempty"`
	Required             []string          `json:"required,omitempty"             yaml:"required,omitempty"`
	Enum                 []string          `json:"enum,omitempty"                 yaml:"enum,omitempty"`
	Ref                  string            `json:"$ref,omitempty"                 yaml:"$ref,omitempty"`
	AdditionalProperties *Schema           `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	OneOf                []Schema          `json:"oneOf,omitempty"                yaml:"oneOf,omitempty"`
	AllOf                []Schema          `json:"allOf,omitempty"                yaml:"allOf,omitempty"`
	Nullable             bool              `json:"nullable,omitempty"             yaml:"nullable,omitempty"`
	Minimum              *float64          `json:"minimum,omitempty"              yaml:"minimum,omitempty"`
	Example              any               `json:"example,omitempty"              yaml:"example,omitempty"`
}

type Components struct {
	Schemas         map[string]Schema         `json:"schemas"         yaml:"schemas"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type"         yaml:"type"`
	Scheme       string `json:"scheme"       yaml:"scheme"`
	BearerFormat string `json:"bearerFormat" yaml:"bearerFormat"`
	Description  string `json:"description"  yaml:"description"`
}

// ---------------------------------------------------------------------------
// Spec builder
// ---------------------------------------------------------------------------

func buildSpec() OpenAPI {
	bearerAuth := []map[string][]string{{"BearerAuth": {}}}

	return OpenAPI{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "Ad Intelligence API",
			Description: "REST API for tracking ad creatives, AI creative analysis, the diversity dashboard, Google Ads import and billing.",
			Version:     "1.0.0",
		},
		Paths: buildPaths(bearerAuth),
		Components: Components{
			Schemas:         buildSchemas(),
			SecuritySchemes: buildSecuritySchemes(),
		},
	}
}

func buildPaths(bearerAuth []map[string][]string) map[string]*PathItem {
	return map[string]*PathItem{
		"/api/v1/creatives": {
			Get: &Operation{
				Tags:        []string{"Creatives"},
				Summary:     "List creatives",
				Description: "Returns every creative of the authenticated account, newest first.",
				OperationID: "listCreatives",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {
						Description: "A list of creatives",
						Content: map[string]MediaType{
							"application/json": {Schema: Schema{
								Type:  "array",
								Items: &Schema{Ref: "#/components/schemas/Creative"},
							}},
						},
					},
				}),
			},
			Post: &Operation{
				Tags:        []string{"Creatives"},
				Summary:     "Add a creative",
				Description: "Adds an own or competitor creative entered by hand, with optional performance metrics.",
				OperationID: "addCreative",
				Security:    bearerAuth,
				RequestBody: &RequestBody{
					Required: true,
					Content:  jsonContent("AddCreativeRequest"),
				},
				Responses: apiErrors(map[string]Response{
					"201": {Description: "Creative added", Content: jsonContent("Creative")},
					"400": {Description: "Invalid request body or validation error", Content: errContent()},
					"409": {Description: "Creative already exists", Content: errContent()},
					"415": {Description: "Content-Type is not application/json", Content: errContent()},
				}),
			},
		},
		"/api/v1/creatives/{creativeID}": {
			Get: &Operation{
				Tags:        []string{"Creatives"},
				Summary:     "Get a creative",
				Description: "Returns one creative together with its analysis. analysis is null until the creative has been analyzed.",
				OperationID: "getCreative",
				Security:    bearerAuth,
				Parameters:  []Parameter{creativeIDParam()},
				Responses: apiErrors(map[string]Response{
					"200": {Description: "The creative", Content: jsonContent("CreativeWithAnalysis")},
					"400": {Description: "Missing creative ID", Content: errContent()},
					"404": {Description: "Creative not found", Content: errContent()},
				}),
			},
			Delete: &Operation{
				Tags:        []string{"Creatives"},
				Summary:     "Remove a creative",
				Description: "Removes a creative and its analysis.",
				OperationID: "removeCreative",
				Security:    bearerAuth,
				Parameters:  []Parameter{creativeIDParam()},
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Creative removed", Content: jsonContent("MessageResponse")},
					"400": {Description: "Missing creative ID", Content: errContent()},
					"404": {Description: "Creative not found", Content: errContent()},
				}),
			},
		},
		"/api/v1/creatives/{creativeID}/analysis": {
			Post: &Operation{
				Tags:        []string{"Analysis"},
				Summary:     "Analyze a creative",
				Description: "Runs the AI analysis for a creative and stores the result, replacing any earlier analysis.",
				OperationID: "analyzeCreative",
				Security:    bearerAuth,
				Parameters:  []Parameter{creativeIDParam()},
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Stored analysis", Content: jsonContent("Analysis")},
					"400": {Description: "Missing creative ID or creative has no content", Content: errContent()},
					"404": {Description: "Creative not found", Content: errContent()},
					"502": {Description: "The model call failed or returned unusable output", Content: errContent()},
					"503": {Description: "AI analysis is not configured", Content: errContent()},
				}),
			},
		},
		"/api/v1/dashboard": {
			Get: &Operation{
				Tags:        []string{"Dashboard"},
				Summary:     "Get dashboard metrics",
				Description: "Returns the creative diversity score, the top insight and aggregate performance stats.",
				OperationID: "getDashboard",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Dashboard metrics", Content: jsonContent("DashboardMetrics")},
				}),
			},
		},
		"/api/v1/dashboard/diversity": {
			Get: &Operation{
				Tags:        []string{"Dashboard"},
				Summary:     "Get diversity breakdown",
				Description: "Returns the per-dimension breakdown behind the diversity score.",
				OperationID: "getDiversityBreakdown",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Diversity breakdown", Content: jsonContent("DiversityBreakdown")},
				}),
			},
		},
		"/api/v1/connections/google-ads": {
			Delete: &Operation{
				Tags:        []string{"Connections"},
				Summary:     "Disconnect Google Ads",
				Description: "Deletes the stored Google Ads credentials. Imported creatives are kept.",
				OperationID: "disconnectGoogleAds",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Disconnected", Content: jsonContent("MessageResponse")},
					"404": {Description: "Connection not found", Content: errContent()},
				}),
			},
		},
		"/api/v1/connections/google-ads/authorize": {
			Get: &Operation{
				Tags:        []string{"Connections"},
				Summary:     "Start Google Ads OAuth",
				Description: "Returns the Google consent URL carrying a signed, short-lived state.",
				OperationID: "authorizeGoogleAds",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Consent URL", Content: jsonContent("AuthorizeResponse")},
					"503": {Description: "Google Ads is not configured", Content: errContent()},
				}),
			},
		},
		"/api/v1/connections/google-ads/import": {
			Post: &Operation{
				Tags:        []string{"Connections"},
				Summary:     "Import Google Ads creatives",
				Description: "Pulls ads with their last-30-day metrics from the connected customer and upserts them as own creatives.",
				OperationID: "importGoogleAds",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Import result", Content: jsonContent("ImportResult")},
					"409": {Description: "Not connected, or the authorization must be renewed", Content: errContent()},
					"502": {Description: "Google Ads API failed", Content: errContent()},
					"503": {Description: "Google Ads is not configured", Content: errContent()},
				}),
			},
		},
		"/oauth/google-ads/callback": {
			Get: &Operation{
				Tags:        []string{"Connections"},
				Summary:     "Google Ads OAuth callback",
				Description: "Completes the OAuth flow and redirects the browser back to the app with the outcome in the query string.",
				OperationID: "googleAdsCallback",
				Parameters: []Parameter{
					{Name: "state", In: "query", Description: "Signed state issued by the authorize endpoint", Schema: Schema{Type: "string"}},
					{Name: "code", In: "query", Description: "Authorization code", Schema: Schema{Type: "string"}},
					{Name: "error", In: "query", Description: "Error reported by the provider", Schema: Schema{Type: "string"}},
				},
				Responses: map[string]Response{
					"302": {
						Description: "Redirect to /connections?google_ads=connected or google_ads=error&reason=...",
						Headers: map[string]Header{
							"Location": {Description: "App connections page", Schema: Schema{Type: "string"}},
						},
					},
				},
			},
		},
		"/api/v1/billing/checkout": {
			Post: &Operation{
				Tags:        []string{"Billing"},
				Summary:     "Start a checkout",
				Description: "Creates a Stripe Checkout session for the subscription plan.",
				OperationID: "startCheckout",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Checkout session URL", Content: jsonContent("CheckoutResponse")},
					"415": {Description: "Content-Type is not application/json", Content: errContent()},
					"503": {Description: "Billing is not configured", Content: errContent()},
				}),
			},
		},
		"/api/v1/billing/subscription": {
			Get: &Operation{
				Tags:        []string{"Billing"},
				Summary:     "Get subscription",
				Description: "Returns the account's subscription. Accounts that never subscribed report status none.",
				OperationID: "getSubscription",
				Security:    bearerAuth,
				Responses: apiErrors(map[string]Response{
					"200": {Description: "Subscription", Content: jsonContent("Subscription")},
				}),
			},
		},
		"/webhooks/stripe": {
			Post: &Operation{
				Tags:        []string{"Billing"},
				Summary:     "Stripe webhook",
				Description: "Receives Stripe events. Authenticated by the Stripe-Signature header, not a bearer token.",
				OperationID: "stripeWebhook",
				Parameters: []Parameter{
					{Name: "Stripe-Signature", In: "header", Description: "Stripe event signature", Required: true, Schema: Schema{Type: "string"}},
				},
				RequestBody: &RequestBody{
					Required:    true,
					Description: "Raw Stripe event payload",
					Content: map[string]MediaType{
						"application/json": {Schema: Schema{Type: "object", AdditionalProperties: &Schema{}}},
					},
				},
				Responses: map[string]Response{
					"200": {Description: "Event received", Content: jsonContent("WebhookAck")},
					"400": {Description: "Unreadable body or invalid signature", Content: errContent()},
					"500": {Description: "Internal server error", Content: errContent()},
					"503": {Description: "Billing is not configured", Content: errContent()},
				},
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func creativeIDParam() Parameter {
	return Parameter{
		Name:        "creativeID",
		In:          "path",
		Description: "Unique identifier of the creative",
		Required:    true,
		Schema:      Schema{Type: "string"},
	}
}

func jsonContent(schema string) map[string]MediaType {
	return map[string]MediaType{
		"application/json": {Schema: Schema{Ref: "#/components/schemas/" + schema}},
	}
}

func errContent() map[string]MediaType {
	return jsonContent("ErrorResponse")
}

// apiErrors adds the responses produced by the /api/v1 middleware chain.
func apiErrors(responses map[string]Response) map[string]Response {
	shared := map[string]Response{
		"401": {Description: "Unauthorized - missing or invalid JWT"},
		"406": {Description: "Accept header does not allow application/json", Content: errContent()},
		"429": {Description: "Rate limit exceeded"},
		"500": {Description: "Internal server error", Content: errContent()},
	}
	for code, resp := range shared {
		if _, ok := responses[code]; !ok {
			responses[code] = resp
		}
	}
	return responses
}

func buildSecuritySchemes() map[string]SecurityScheme {
	return map[string]SecurityScheme{
		"BearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "JWT token with a 'sub' claim identifying the account.",
		},
	}
}

func nonNegative(format, description string) Schema {
	zero := 0.0
	t := "number"
	if format == "int64" {
		t = "integer"
	}
	return Schema{Type: t, Format: format, Description: description, Minimum: &zero}
}

func stringList() Schema {
	return Schema{Type: "array", Items: &Schema{Type: "string"}}
}

func buildSchemas() map[string]Schema {
	dateTime := Schema{Type: "string", Format: "date-time"}

	return map[string]Schema{
		"ErrorResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"error": {Type: "string", Description: "Human-readable error message"},
			},
			Required: []string{"error"},
		},
		"MessageResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"message": {Type: "string", Description: "Success message"},
			},
			Required: []string{"message"},
		},
		"PerformanceMetrics": {
			Type:        "object",
			Description: "Sparse performance record. Absent fields have not been measured.",
			Properties: map[string]Schema{
				"impressions": nonNegative("int64", ""),
				"clicks":      nonNegative("int64", "Must not exceed impressions"),
				"ctr":         nonNegative("double", "Click-through rate in percent (3.5 means 3.5%), at most 100"),
				"cpc":         nonNegative("double", "Cost per click"),
				"spend":       nonNegative("double", ""),
				"conversions": nonNegative("double", ""),
			},
		},
		"AddCreativeRequest": {
			Type:        "object",
			Description: "At least one of brand_name, ad_copy, cta, image_url is required.",
			Properties: map[string]Schema{
				"source_type": {Type: "string", Enum: []string{"own", "competitor"}},
				"brand_name":  {Type: "string", Description: "Max 255 chars"},
				"ad_copy":     {Type: "string", Description: "Max 5000 chars"},
				"cta":         {Type: "string", Description: "Max 255 chars"},
				"image_url":   {Type: "string", Format: "uri", Description: "Absolute http(s) URL, max 2048 chars"},
				"metrics":     {Ref: "#/components/schemas/PerformanceMetrics"},
			},
			Required: []string{"source_type"},
		},
		"Creative": {
			Type:        "object",
			Description: "A tracked ad creative.",
			Properties: map[string]Schema{
				"id":          {Type: "string"},
				"account_id":  {Type: "string"},
				"source_type": {Type: "string", Enum: []string{"own", "competitor"}},
				"platform":    {Type: "string", Enum: []string{"manual", "google_ads"}},
				"external_id": {Type: "string", Description: "Ad ID on the source platform"},
				"brand_name":  {Type: "string"},
				"ad_copy":     {Type: "string"},
				"cta":         {Type: "string"},
				"image_url":   {Type: "string"},
				"metrics":     {Ref: "#/components/schemas/PerformanceMetrics"},
				"created_at":  dateTime,
				"updated_at":  dateTime,
			},
			Required: []string{"id", "account_id", "source_type", "platform", "metrics", "created_at", "updated_at"},
		},
		"Analysis": {
			Type:        "object",
			Description: "AI-derived tags for one creative. Tags are open strings.",
			Properties: map[string]Schema{
				"id":                 {Type: "string"},
				"creative_id":        {Type: "string"},
				"account_id":         {Type: "string"},
				"emotion":            {Type: "string", Example: "excitement"},
				"copy_tone":          {Type: "string", Example: "urgent"},
				"primary_color":      {Type: "string", Example: "red"},
				"visual_elements":    stringList(),
				"performance_driver": {Type: "string", Description: "The element most likely driving performance"},
				"recommendations":    stringList(),
				"created_at":         dateTime,
			},
			Required: []string{"id", "creative_id", "account_id", "visual_elements", "recommendations", "created_at"},
		},
		"CreativeWithAnalysis": {
			AllOf: []Schema{
				{Ref: "#/components/schemas/Creative"},
				{
					Type: "object",
					Properties: map[string]Schema{
						"analysis": {
							Nullable: true,
							AllOf:    []Schema{{Ref: "#/components/schemas/Analysis"}},
						},
					},
					Required: []string{"analysis"},
				},
			},
		},
		"DiversityScore": {
			Type: "object",
			Properties: map[string]Schema{
				"score":       {Type: "integer", Description: "0 to maxScore"},
				"maxScore":    {Type: "integer", Example: 100},
				"description": {Type: "string", Example: "Testing 3 emotions, 2 CTAs"},
			},
			Required: []string{"score", "maxScore", "description"},
		},
		"Insight": {
			Type: "object",
			Properties: map[string]Schema{
				"value":       {Type: "string", Example: "+67% CTR"},
				"description": {Type: "string"},
			},
			Required: []string{"value", "description"},
		},
		"PerformanceStats": {
			Type: "object",
			Properties: map[string]Schema{
				"avgCTR":            {Type: "number", Format: "double", Nullable: true, Description: "Mean CTR in percent, null when no creative has one"},
				"totalImpressions":  {Type: "integer", Format: "int64"},
				"totalClicks":       {Type: "integer", Format: "int64"},
				"creativesWithData": {Type: "integer"},
			},
			Required: []string{"avgCTR", "totalImpressions", "totalClicks", "creativesWithData"},
		},
		"DashboardMetrics": {
			Type: "object",
			Properties: map[string]Schema{
				"creativeDiversity": {Ref: "#/components/schemas/DiversityScore"},
				"topInsight": {
					Nullable: true,
					AllOf:    []Schema{{Ref: "#/components/schemas/Insight"}},
				},
				"performanceStats": {Ref: "#/components/schemas/PerformanceStats"},
			},
			Required: []string{"creativeDiversity", "topInsight", "performanceStats"},
		},
		"DimensionScore": {
			Type: "object",
			Properties: map[string]Schema{
				"dimension": {Type: "string", Enum: []string{"emotions", "copy_tones", "colors", "ctas", "visual_elements"}},
				"values":    stringList(),
				"count":     {Type: "integer"},
				"points":    {Type: "integer"},
				"cap":       {Type: "integer"},
			},
			Required: []string{"dimension", "values", "count", "points", "cap"},
		},
		"DiversityBreakdown": {
			AllOf: []Schema{
				{Ref: "#/components/schemas/DiversityScore"},
				{
					Type: "object",
					Properties: map[string]Schema{
						"dimensions": {Type: "array", Items: &Schema{Ref: "#/components/schemas/DimensionScore"}},
					},
					Required: []string{"dimensions"},
				},
			},
		},
		"AuthorizeResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"url": {Type: "string", Format: "uri", Description: "Google consent URL"},
			},
			Required: []string{"url"},
		},
		"ImportResult": {
			Type: "object",
			Properties: map[string]Schema{
				"imported":    {Type: "integer", Description: "Number of ads upserted"},
				"customer_id": {Type: "string"},
			},
			Required: []string{"imported", "customer_id"},
		},
		"CheckoutResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"url": {Type: "string", Format: "uri", Description: "Stripe Checkout session URL"},
			},
			Required: []string{"url"},
		},
		"Subscription": {
			Type: "object",
			Properties: map[string]Schema{
				"account_id":             {Type: "string"},
				"stripe_customer_id":     {Type: "string"},
				"stripe_subscription_id": {Type: "string"},
				"status":                 {Type: "string", Enum: []string{"none", "active", "trialing", "past_due", "canceled"}},
				"current_period_end":     dateTime,
				"updated_at":             dateTime,
			},
			Required: []string{"account_id", "status"},
		},
		"WebhookAck": {
			Type: "object",
			Properties: map[string]Schema{
				"received": {Type: "boolean"},
				"ignored":  {Type: "boolean", Description: "True when the event type is not handled"},
			},
			Required: []string{"received", "ignored"},
		},
	}
}

// ---------------------------------------------------------------------------
// File writers
// ---------------------------------------------------------------------------
// ---------------------------------------------------------------------------

func writeJSON(spec OpenAPI, path string) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func writeYAML(spec OpenAPI, path string) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	_, src, _, _ := runtime.Caller(0)
	outDir := filepath.Join(filepath.Join(filepath.Dir(src), "..", ".."), "api")

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create api/ directory: %v\n", err)
		os.Exit(1)
	}

	spec := buildSpec()

	jsonPath := filepath.Join(outDir, "swagger.json")
	if err := writeJSON(spec, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing JSON: %v\n", err)
		os.Exit(1)
	}

	yamlPath := filepath.Join(outDir, "swagger.yaml")
	if err := writeYAML(spec, yamlPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing YAML: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Swagger specs generated:\n  %s\n  %s\n", jsonPath, yamlPath)
}
