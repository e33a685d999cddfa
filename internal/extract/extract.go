// Package extract turns free-text listing messages into structured
// records. The primary extractor calls the Gemini API in JSON schema
// mode; a deterministic rule-based extractor stands in when the API is
// unavailable or fails, so a bad API day degrades output quality instead
// of dropping messages.
package extract

import (
	"context"

	"github.com/anerudhh/Realistly-mvp/internal/listing"
)

// Result carries one extraction outcome. Fallback is set when the
// primary extractor could not serve and the rule-based substitute
// produced the listing instead; Reason says why. Callers branch on the
// tag rather than on error values, because a fallback is still a usable
// result.
type Result struct {
	Listing  listing.Listing
	Fallback bool
	Reason   string
}

// Extractor produces a structured listing from message text. It never
// returns an error: extraction always yields at least a placeholder
// listing, and failure modes surface through the Fallback tag.
type Extractor interface {
	Extract(ctx context.Context, text string) Result
}
