// Package relevance decides whether a chat message is worth sending to
// field extraction. It is a heuristic gate, not a certified classifier:
// several weak vocabulary signals are combined with a handful of strong
// structural patterns so that short unambiguous listings and verbose
// descriptive ones are both caught.
package relevance

import (
	"regexp"
	"strings"

	"github.com/anerudhh/Realistly-mvp/internal/places"
)

// Config carries the tunable lexicons, the strong-indicator patterns and
// the weak-signal threshold. All of them are heuristic tuning choices, so
// they are configuration rather than constants.
type Config struct {
	PropertyTerms    []string
	TransactionTerms []string
	AmenityTerms     []string
	PriceTerms       []string
	ContactTerms     []string

	// StrongIndicators accept a message outright, regardless of the weak
	// category count.
	StrongIndicators []*regexp.Regexp

	// MinCategorySignals is the number of distinct weak categories that
	// must fire before a message without a strong indicator is accepted.
	MinCategorySignals int
}

// DefaultConfig returns the lexicons tuned on real group exports.
func DefaultConfig() Config {
	return Config{
		PropertyTerms: []string{
			"apartment", "flat", "villa", "bungalow", "house", "home",
			"penthouse", "studio", "duplex", "plot", "land", "office",
			"commercial", "warehouse", "godown", "shop", "showroom",
			"pg", "paying guest", "hostel", "property", "bhk", "bedroom",
			"real estate",
		},
		TransactionTerms: []string{
			"sale", "sell", "selling", "buy", "purchase", "rent", "rental",
			"lease", "tenant", "letting", "investment", "available",
			"booking", "possession", "resale", "broker", "brokerage",
			"owner", "deposit", "advance",
		},
		AmenityTerms: []string{
			"parking", "swimming pool", "pool", "gym", "security",
			"cctv", "gated community", "lift", "elevator", "garden",
			"playground", "balcony", "terrace", "clubhouse", "club house",
			"power backup", "generator", "bore well", "furnished",
			"semi-furnished", "modular kitchen", "wardrobe",
		},
		PriceTerms: []string{
			"price", "budget", "cost", "lakh", "lakhs", "crore", "crores",
			"rs", "rupees", "per month", "monthly", "negotiable", "emi",
		},
		ContactTerms: []string{
			"contact", "call", "whatsapp", "dm", "reach", "phone",
			"mobile", "interested",
		},
		StrongIndicators:   defaultStrongIndicators,
		MinCategorySignals: 2,
	}
}

// Strong indicators fire confidently on short, ambiguous messages.
var defaultStrongIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s*(?:bhk|bed|bedroom|br)\b`),
	regexp.MustCompile(`(?i)₹\s*\d|\b(?:rs\.?|inr)\s*\d`),
	regexp.MustCompile(`(?i)\d+\s*(?:sq\.?\s*ft|sqft|square\s*feet|sq\.?\s*m|acres?)`),
	regexp.MustCompile(`(?i)\bfor\s+(?:sale|rent)\b`),
	regexp.MustCompile(`(?i)\breal\s+estate\b|\bbroker\b`),
}

// Classifier is a pure text gate. It does no I/O and is safe for
// concurrent use.
type Classifier struct {
	cfg Config
}

func NewClassifier(cfg Config) *Classifier {
	if cfg.MinCategorySignals <= 0 {
		cfg.MinCategorySignals = 2
	}
	if cfg.StrongIndicators == nil {
		cfg.StrongIndicators = defaultStrongIndicators
	}
	return &Classifier{cfg: cfg}
}

// IsCandidate reports whether text likely describes a property listing.
// Any strong indicator accepts outright; otherwise at least
// MinCategorySignals distinct weak categories must be present. A single
// weak signal alone is rejected to keep noise away from the expensive
// extraction stage.
func (c *Classifier) IsCandidate(text string) bool {
	for _, re := range c.cfg.StrongIndicators {
		if re.MatchString(text) {
			return true
		}
	}

	lower := strings.ToLower(text)
	signals := 0
	for _, category := range [][]string{
		c.cfg.PropertyTerms,
		c.cfg.TransactionTerms,
		c.cfg.AmenityTerms,
		c.cfg.PriceTerms,
		c.cfg.ContactTerms,
	} {
		if containsAny(lower, category) {
			signals++
		}
	}
	if places.Contains(text) {
		signals++
	}

	return signals >= c.cfg.MinCategorySignals
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if containsWord(lower, term) {
			return true
		}
	}
	return false
}

// containsWord does a word-boundary check without compiling a regexp per
// term; lexicon terms are plain lower-case words or phrases.
func containsWord(lower, term string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		before := start == 0 || !isWordChar(lower[start-1])
		after := end == len(lower) || !isWordChar(lower[end])
		if before && after {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
