package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anerudhh/Realistly-mvp/internal/listing"
	"github.com/anerudhh/Realistly-mvp/internal/places"
)

const maxDescriptionLength = 300

var bhkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*bhk`),
	regexp.MustCompile(`(?i)(\d+)\s*bedroom`),
	regexp.MustCompile(`(?i)(\d+)\s*bed`),
	regexp.MustCompile(`(?i)(\d+)\s*br\b`),
}

// pricePatterns capture a numeric value and an optional lakh/crore unit.
// Unit-bearing patterns come first so "₹85 lakh" is not read as ₹85.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)₹\s*(\d+(?:\.\d+)?)\s*(lakh|lakhs|crore|crores)`),
	regexp.MustCompile(`(?i)rs\.?\s*(\d+(?:\.\d+)?)\s*(lakh|lakhs|crore|crores)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(lakh|lakhs|crore|crores)`),
	regexp.MustCompile(`(?i)(?:budget|price|cost):?\s*₹?\s*(\d+(?:\.\d+)?)\s*(lakh|lakhs|crore|crores)`),
	regexp.MustCompile(`₹\s*(\d+(?:,\d+)*)`),
	regexp.MustCompile(`(?i)rs\.?\s*(\d+(?:,\d+)*)`),
}

var areaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*sq\.?\s*ft`),
	regexp.MustCompile(`(?i)(\d+)\s*sqft`),
	regexp.MustCompile(`(?i)(\d+)\s*square\s*feet`),
	regexp.MustCompile(`(?i)(\d+)\s*sq\.?\s*m(?:eter)?`),
	regexp.MustCompile(`(?i)(\d+)\s*acres?`),
	regexp.MustCompile(`(?i)(?:area|size):?\s*(\d+)\s*sq\.?\s*ft`),
}

// Property type detection pairs, most specific phrasing first within
// each family.
var propertyTypePatterns = []struct {
	re  *regexp.Regexp
	typ string
}{
	{regexp.MustCompile(`(?i)\b(?:apartment|flat|unit)\b`), "apartment"},
	{regexp.MustCompile(`(?i)\b(?:villa|bungalow|independent\s+house)\b`), "villa"},
	{regexp.MustCompile(`(?i)\b(?:penthouse)\b`), "penthouse"},
	{regexp.MustCompile(`(?i)\b(?:studio)\b`), "studio"},
	{regexp.MustCompile(`(?i)\b(?:duplex)\b`), "duplex"},
	{regexp.MustCompile(`(?i)\b(?:plot|land)\b`), "plot"},
	{regexp.MustCompile(`(?i)\b(?:office|commercial)\b`), "commercial"},
	{regexp.MustCompile(`(?i)\b(?:warehouse|godown)\b`), "warehouse"},
	{regexp.MustCompile(`(?i)\b(?:shop|showroom)\b`), "retail"},
	{regexp.MustCompile(`(?i)\b(?:pg|paying\s+guest)\b`), "pg"},
	{regexp.MustCompile(`(?i)\b(?:hostel)\b`), "hostel"},
	{regexp.MustCompile(`(?i)\b(?:house|home)\b`), "house"},
}

var (
	rentKeywordsRe = regexp.MustCompile(`(?i)\b(?:rent|rental|lease|monthly|per month|/month|tenant|letting)\b`)
	saleKeywordsRe = regexp.MustCompile(`(?i)\b(?:sale|sell|selling|buy|purchase|investment|lakhs?|crores?|ownership)\b`)
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[-\s]?\d{5}[-\s]?\d{5}`),
	regexp.MustCompile(`\+91\s*\d{10}`),
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\b\d{3}[-\s]?\d{3}[-\s]?\d{4}\b`),
	regexp.MustCompile(`(?i)(?:contact|call|phone|mobile):?\s*(\d{10})`),
}

var amenityKeywords = []string{
	"parking", "car parking", "bike parking", "covered parking",
	"swimming pool", "pool", "gym", "fitness center", "fitness",
	"security", "cctv", "gated community", "lift", "elevator",
	"garden", "park", "playground", "balcony", "terrace", "rooftop",
	"club house", "clubhouse", "power backup", "generator", "inverter",
	"solar", "water supply", "bore well", "wifi", "internet",
	"school", "hospital", "metro", "bus stop", "mall",
	"ac", "air conditioning", "furnished", "semi-furnished",
	"modular kitchen", "modern kitchen", "wardrobe", "cupboard",
}

// FallbackExtractor is a pure rule-based extractor: regex patterns for
// the numeric fields, keyword lists for type and amenities, and the
// gazetteer for locations. It always succeeds, at reduced accuracy.
type FallbackExtractor struct{}

func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// Thresholds for guessing rent versus sale when neither vocabulary
// appears: a price above 50 lakh is almost certainly a sale, below
// 2 lakh almost certainly rent.
const (
	saleFloorRupees   = 5000000
	rentCeilingRupees = 200000
)

func (e *FallbackExtractor) Extract(_ context.Context, text string) Result {
	l := listing.Listing{
		Description: truncate(strings.TrimSpace(text), maxDescriptionLength),
	}

	for _, re := range bhkPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			l.BHK, _ = strconv.Atoi(m[1])
			break
		}
	}

	priceValue := extractPrice(text, &l)
	extractArea(text, &l)

	for _, p := range propertyTypePatterns {
		if p.re.MatchString(text) {
			l.PropertyType = p.typ
			break
		}
	}

	switch {
	case rentKeywordsRe.MatchString(text):
		l.ListingType = "rent"
	case saleKeywordsRe.MatchString(text):
		l.ListingType = "sale"
	case priceValue > saleFloorRupees:
		l.ListingType = "sale"
	case priceValue > 0 && priceValue < rentCeilingRupees:
		l.ListingType = "rent"
	default:
		l.ListingType = "unknown"
	}

	for _, re := range phonePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			match := m[0]
			if len(m) > 1 && m[1] != "" {
				match = m[1]
			}
			l.ContactPhone = strings.NewReplacer("-", "", " ", "", "+", "").Replace(match)
			break
		}
	}

	lower := strings.ToLower(text)
	for _, amenity := range amenityKeywords {
		if containsWord(lower, amenity) {
			l.Amenities = append(l.Amenities, amenity)
		}
	}

	if area, city, ok := places.Match(text); ok {
		loc := map[string]any{"area": area}
		if city != "" {
			loc["city"] = city
		}
		l.Location = listing.StructuredValue(loc)
	}

	l.MissingFields = missingFields(&l)

	return Result{Listing: l}
}

func extractPrice(text string, l *listing.Listing) float64 {
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		unit := ""
		if len(m) > 2 {
			unit = strings.ToLower(m[2])
		}
		formatted := "₹" + m[1]
		switch {
		case strings.Contains(unit, "crore"):
			value *= 10000000
			formatted = fmt.Sprintf("₹%s %s", m[1], unit)
		case strings.Contains(unit, "lakh"):
			value *= 100000
			formatted = fmt.Sprintf("₹%s %s", m[1], unit)
		}

		l.Price = listing.StructuredValue(map[string]any{
			"value":     value,
			"currency":  "INR",
			"formatted": formatted,
		})
		return value
	}
	return 0
}

func extractArea(text string, l *listing.Listing) {
	for _, re := range areaPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		value, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		lower := strings.ToLower(text)
		unit := "sq ft"
		if strings.Contains(lower, "sq.m") || strings.Contains(lower, "sq m") || strings.Contains(lower, "meter") {
			unit = "sq m"
		} else if strings.Contains(lower, "acre") {
			unit = "acres"
		}

		l.Area = listing.StructuredValue(map[string]any{
			"value":     value,
			"unit":      unit,
			"formatted": fmt.Sprintf("%d %s", value, unit),
		})
		return
	}
}

func missingFields(l *listing.Listing) []string {
	var missing []string
	if l.Price.IsZero() {
		missing = append(missing, "price")
	}
	if l.Area.IsZero() {
		missing = append(missing, "area")
	}
	if l.Location.IsZero() {
		missing = append(missing, "location")
	}
	if l.ContactPhone == "" {
		missing = append(missing, "contact")
	}
	if l.BHK == 0 {
		missing = append(missing, "bhk")
	}
	return missing
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

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
