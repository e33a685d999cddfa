package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/anerudhh/Realistly-mvp/internal/config"
	"github.com/anerudhh/Realistly-mvp/internal/listing"
)

var listingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"property_type": {Type: genai.TypeString, Description: "Property category, e.g. apartment, villa, plot. Empty if unknown."},
		"listing_type":  {Type: genai.TypeString, Description: "One of rent, sale, unknown."},
		"bhk":           {Type: genai.TypeInteger, Description: "Bedroom count; 0 if not mentioned."},
		"location": {Type: genai.TypeObject, Properties: map[string]*genai.Schema{
			"area": {Type: genai.TypeString, Description: "Neighbourhood or locality. Empty if unknown."},
			"city": {Type: genai.TypeString, Description: "City name. Empty if unknown."},
		}},
		"price": {Type: genai.TypeObject, Properties: map[string]*genai.Schema{
			"value":     {Type: genai.TypeNumber, Description: "Price in rupees; 0 if not mentioned."},
			"currency":  {Type: genai.TypeString, Description: "Currency code, normally INR."},
			"formatted": {Type: genai.TypeString, Description: "Price as written in the message."},
		}},
		"area": {Type: genai.TypeObject, Properties: map[string]*genai.Schema{
			"value":     {Type: genai.TypeNumber, Description: "Floor area value; 0 if not mentioned."},
			"unit":      {Type: genai.TypeString, Description: "Unit, e.g. sq ft, sq m, acres."},
			"formatted": {Type: genai.TypeString, Description: "Area as written in the message."},
		}},
		"description":   {Type: genai.TypeString, Description: "Short summary of the listing."},
		"contact_phone": {Type: genai.TypeString, Description: "Phone number found in the message, digits only. Empty if none."},
		"amenities":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Amenities mentioned."},
		"missing_fields": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString},
			Description: "Names of fields that could not be determined."},
	},
	Required: []string{"property_type", "listing_type", "bhk", "location", "price", "area", "description", "contact_phone", "amenities", "missing_fields"},
}

// GeminiExtractor calls the Gemini API in JSON schema mode and falls
// back to the rule-based extractor when the call fails, so extraction
// never loses a message to an API outage.
type GeminiExtractor struct {
	genaiClient *genai.Client
	log         *slog.Logger
	fallback    *FallbackExtractor

	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewGeminiExtractor creates the primary extractor.
func NewGeminiExtractor(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	contentConfig := &genai.GenerateContentConfig{
		Temperature:       &cfg.Temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: ListingSystemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    listingSchema,
	}

	logger := log.With("component", "gemini_extractor")
	logger.Info("Gemini extractor initialized", "model", cfg.ModelName)

	return &GeminiExtractor{
		genaiClient:   gi,
		log:           logger,
		fallback:      NewFallbackExtractor(),
		contentConfig: contentConfig,
		modelName:     cfg.ModelName,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// Extract asks the model for structured fields. Any failure along the
// way, from the API call itself to unparseable response JSON, degrades to
// the rule-based extractor with the reason recorded in the result.
func (e *GeminiExtractor) Extract(ctx context.Context, text string) Result {
	contents := []*genai.Content{
		genai.NewContentFromText(ListingPrompt+text, genai.RoleUser),
	}

	resp, err := e.generateContentWithRetries(ctx, contents)
	if err != nil {
		return e.fallbackResult(ctx, text, fmt.Sprintf("gemini call failed: %v", err))
	}

	jsonText, err := e.extractText(resp)
	if err != nil {
		return e.fallbackResult(ctx, text, fmt.Sprintf("gemini response unusable: %v", err))
	}

	var payload struct {
		PropertyType  string         `json:"property_type"`
		ListingType   string         `json:"listing_type"`
		BHK           int            `json:"bhk"`
		Location      map[string]any `json:"location"`
		Price         map[string]any `json:"price"`
		Area          map[string]any `json:"area"`
		Description   string         `json:"description"`
		ContactPhone  string         `json:"contact_phone"`
		Amenities     []string       `json:"amenities"`
		MissingFields []string       `json:"missing_fields"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		e.log.WarnContext(ctx, "failed to parse extraction JSON", "error", err, "response_text", jsonText)
		return e.fallbackResult(ctx, text, fmt.Sprintf("invalid extraction JSON: %v", err))
	}

	l := listing.Listing{
		PropertyType:  payload.PropertyType,
		ListingType:   payload.ListingType,
		BHK:           payload.BHK,
		Location:      structuredOrZero(payload.Location),
		Price:         structuredOrZero(payload.Price),
		Area:          structuredOrZero(payload.Area),
		Description:   payload.Description,
		ContactPhone:  payload.ContactPhone,
		Amenities:     payload.Amenities,
		MissingFields: payload.MissingFields,
	}
	if l.Description == "" {
		l.Description = truncate(text, maxDescriptionLength)
	}

	return Result{Listing: l}
}

// structuredOrZero drops object fields whose every value is empty, so a
// schema-mandated `{"area":"","city":""}` does not count as a populated
// location.
func structuredOrZero(m map[string]any) listing.FieldValue {
	for _, v := range m {
		switch val := v.(type) {
		case string:
			if val != "" {
				return listing.StructuredValue(m)
			}
		case float64:
			if val != 0 {
				return listing.StructuredValue(m)
			}
		case nil:
		default:
			return listing.StructuredValue(m)
		}
	}
	return listing.FieldValue{}
}

func (e *GeminiExtractor) fallbackResult(ctx context.Context, text, reason string) Result {
	e.log.WarnContext(ctx, "falling back to rule-based extraction", "reason", reason)
	res := e.fallback.Extract(ctx, text)
	res.Fallback = true
	res.Reason = reason
	return res
}

func (e *GeminiExtractor) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= e.maxRetries; i++ {
		resp, err = e.genaiClient.Models.GenerateContent(ctx, e.modelName, contents, e.contentConfig)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < e.maxRetries {
				e.log.InfoContext(ctx, "retrying Gemini call after retriable error",
					"attempt", i+1, "code", apiErr.Code, "delay", e.retryDelay)
				time.Sleep(e.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini call failed after %d retries (code %d): %w", e.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini call failed: %w", err)
	}
	return nil, err
}

func (e *GeminiExtractor) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		msg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			msg = resp.PromptFeedback.BlockReasonMessage
		}
		return "", fmt.Errorf("blocked by safety filter: %s", msg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response has no content")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("response text is empty")
	}
	return text, nil
}
