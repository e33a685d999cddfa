package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/anerudhh/Realistly-mvp/internal/config"
)

// ocrPrompt asks the model for a faithful transcription, not a summary.
const ocrPrompt = `Extract all readable text from this image exactly as written.
The image is a real estate listing, flyer or chat screenshot. Return only
the text content, preserving line breaks. Do not describe the image or
add commentary. If the image contains no readable text, return an empty
response.`

// GeminiReader extracts image text through Gemini vision.
type GeminiReader struct {
	genaiClient *genai.Client
	log         *slog.Logger
	modelName   string
	maxRetries  int
	retryDelay  time.Duration
	temperature float32
}

func NewGeminiReader(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*GeminiReader, error) {
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

	logger := log.With("component", "gemini_ocr")
	logger.Info("Gemini OCR reader initialized", "model", cfg.ModelName)

	return &GeminiReader{
		genaiClient: gi,
		log:         logger,
		modelName:   cfg.ModelName,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		temperature: cfg.Temperature,
	}, nil
}

// ExtractText sends the image with a transcription prompt and returns
// the recovered text. An empty string with a nil error means the image
// carried no readable text.
func (r *GeminiReader) ExtractText(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if len(imageData) == 0 || mimeType == "" {
		return "", fmt.Errorf("image data and MIME type are required")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(ocrPrompt),
			genai.NewPartFromBytes(imageData, mimeType),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{Temperature: &r.temperature}

	var resp *genai.GenerateContentResponse
	var err error
	for i := 0; i <= r.maxRetries; i++ {
		resp, err = r.genaiClient.Models.GenerateContent(ctx, r.modelName, contents, cfg)
		if err == nil {
			break
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) && i < r.maxRetries {
			r.log.InfoContext(ctx, "retrying OCR call after retriable error",
				"attempt", i+1, "code", apiErr.Code, "delay", r.retryDelay)
			time.Sleep(r.retryDelay)
			continue
		}
		return "", fmt.Errorf("gemini OCR call failed: %w", err)
	}
	if err != nil {
		return "", fmt.Errorf("gemini OCR call failed after %d retries: %w", r.maxRetries, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("OCR request blocked: %v", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	return resp.Text(), nil
}
