package listing

// Listing is a structured property record extracted from one message.
type Listing struct {
	PropertyType  string     `json:"property_type,omitempty"`
	Location      FieldValue `json:"location,omitempty"`
	Price         FieldValue `json:"price,omitempty"`
	Area          FieldValue `json:"area,omitempty"`
	BHK           int        `json:"bhk,omitempty"`
	ListingType   string     `json:"listing_type,omitempty"`
	Description   string     `json:"description,omitempty"`
	ContactPerson string     `json:"contact_person,omitempty"`
	ContactPhone  string     `json:"contact_phone,omitempty"`
	Amenities     []string   `json:"amenities,omitempty"`
	MissingFields []string   `json:"missing_fields,omitempty"`
}

// Listing lifecycle states.
const (
	StatusVerified    = "verified"
	StatusNeedsReview = "needs_review"
)

// The fields a usable record really needs. A listing missing any of them
// is flagged for follow-up; a listing missing all of them is not worth
// persisting.
var essentialFields = []string{"property_type", "location", "price", "area", "contact"}

func (l *Listing) essentialPresent() map[string]bool {
	return map[string]bool{
		"property_type": l.PropertyType != "",
		"location":      !l.Location.IsZero(),
		"price":         !l.Price.IsZero(),
		"area":          !l.Area.IsZero(),
		"contact":       l.ContactPhone != "",
	}
}

// Confidence scores extraction completeness as the percentage of
// populated fields, 0 to 100.
func (l *Listing) Confidence() float64 {
	populated := 0
	fields := []bool{
		l.PropertyType != "",
		!l.Location.IsZero(),
		!l.Price.IsZero(),
		!l.Area.IsZero(),
		l.BHK > 0,
		l.ListingType != "" && l.ListingType != "unknown",
		l.Description != "",
		l.ContactPhone != "",
		len(l.Amenities) > 0,
	}
	for _, ok := range fields {
		if ok {
			populated++
		}
	}
	return float64(populated) / float64(len(fields)) * 100
}

// Status maps a confidence score to a review state: above the threshold
// the record is trusted, otherwise a human should look at it.
func (l *Listing) Status(threshold float64) string {
	if l.Confidence() > threshold {
		return StatusVerified
	}
	return StatusNeedsReview
}

// MissingEssentials lists the essential fields the extraction failed to
// populate, in a fixed order.
func (l *Listing) MissingEssentials() []string {
	present := l.essentialPresent()
	var missing []string
	for _, f := range essentialFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// NeedsFollowup reports whether any essential field is missing.
func (l *Listing) NeedsFollowup() bool {
	return len(l.MissingEssentials()) > 0
}

// HasEssentialData reports whether at least one essential field is
// populated. Records with none are dropped rather than persisted.
func (l *Listing) HasEssentialData() bool {
	for _, ok := range l.essentialPresent() {
		if ok {
			return true
		}
	}
	return false
}
