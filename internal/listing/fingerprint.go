package listing

import (
	"strconv"
	"strings"
)

// fingerprintDelimiter separates key components; it never appears inside
// the normalized fields themselves.
const fingerprintDelimiter = "|"

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fingerprint builds the order-independent duplicate-detection key:
// seven normalized components joined with a delimiter. Two listings
// collide only when every component matches exactly after normalization;
// fuzzy matching is deliberately not attempted.
func (l *Listing) Fingerprint() string {
	bhk := ""
	if l.BHK > 0 {
		bhk = strconv.Itoa(l.BHK)
	}

	components := []string{
		strings.ToLower(strings.TrimSpace(l.Description)),
		strings.ToLower(l.PropertyType),
		l.Location.Canonical(),
		l.Price.Canonical(),
		bhk,
		l.Area.Canonical(),
		digitsOnly(l.ContactPhone),
	}
	return strings.Join(components, fingerprintDelimiter)
}

// SeenSet tracks fingerprints already persisted plus those accepted
// earlier in the current batch, so duplicates are suppressed within a
// batch as well as across batches. It is owned by a single pass and is
// not safe for concurrent use.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet builds a set primed with fingerprints of already stored
// listings.
func NewSeenSet(existing []string) *SeenSet {
	s := &SeenSet{seen: make(map[string]struct{}, len(existing))}
	for _, fp := range existing {
		s.seen[fp] = struct{}{}
	}
	return s
}

// Observe records a fingerprint and reports whether it was new. A false
// return means the listing is a duplicate and should be skipped.
func (s *SeenSet) Observe(fp string) bool {
	if _, dup := s.seen[fp]; dup {
		return false
	}
	s.seen[fp] = struct{}{}
	return true
}
