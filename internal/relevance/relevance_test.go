package relevance_test

import (
	"regexp"
	"testing"

	"github.com/anerudhh/Realistly-mvp/internal/relevance"
)

func TestIsCandidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "strong bhk pattern",
			text: "2 BHK for sale in Koramangala, ₹85 lakh",
			want: true,
		},
		{
			name: "strong currency pattern",
			text: "asking ₹45000, message me",
			want: true,
		},
		{
			name: "strong area unit pattern",
			text: "1200 sqft, great view",
			want: true,
		},
		{
			name: "strong for rent phrasing",
			text: "nice place for rent near my office",
			want: true,
		},
		{
			name: "plain chat",
			text: "Hey, how are you?",
			want: false,
		},
		{
			name: "two weak categories",
			text: "Looking for an apartment, budget is flexible",
			want: true,
		},
		{
			name: "single weak category rejected",
			text: "I love my apartment so much",
			want: false,
		},
		{
			name: "place plus transaction",
			text: "anything available in Indiranagar?",
			want: true,
		},
		{
			name: "amenity plus property",
			text: "the villa has a swimming pool and garden",
			want: true,
		},
		{
			name: "empty text",
			text: "",
			want: false,
		},
	}

	c := relevance.NewClassifier(relevance.DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := c.IsCandidate(tc.text); got != tc.want {
				t.Errorf("IsCandidate(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestMinCategorySignalsConfigurable(t *testing.T) {
	t.Parallel()

	cfg := relevance.DefaultConfig()
	cfg.MinCategorySignals = 3
	c := relevance.NewClassifier(cfg)

	// Two categories (property + price) are no longer enough.
	if c.IsCandidate("Looking for an apartment, budget is flexible") {
		t.Error("two weak signals accepted despite threshold of 3")
	}
	if !c.IsCandidate("Looking for an apartment in Koramangala, budget is flexible") {
		t.Error("three weak signals rejected with threshold of 3")
	}
}

func TestStrongIndicatorsConfigurable(t *testing.T) {
	t.Parallel()

	cfg := relevance.DefaultConfig()
	cfg.StrongIndicators = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\burgent sale\b`),
	}
	c := relevance.NewClassifier(cfg)

	if !c.IsCandidate("urgent sale, ping me") {
		t.Error("custom strong indicator did not accept")
	}
	// The default BHK pattern is gone, and "2 BHK available" only fires
	// the property and transaction categories through the lexicons.
	if got := c.IsCandidate("nice 2 BHK there"); got {
		t.Error("replaced default indicator still accepting")
	}

	// A config without indicators falls back to the defaults.
	d := relevance.NewClassifier(relevance.Config{})
	if !d.IsCandidate("2 BHK for sale") {
		t.Error("default strong indicators not applied to zero config")
	}
}
