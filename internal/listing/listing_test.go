package listing_test

import (
	"encoding/json"
	"testing"

	"github.com/anerudhh/Realistly-mvp/internal/listing"
)

func TestFingerprintStability(t *testing.T) {
	t.Parallel()

	a := listing.Listing{
		Description:  "2 BHK in Koramangala",
		PropertyType: "apartment",
		Location: listing.StructuredValue(map[string]any{
			"area": "Koramangala",
			"city": "Bengaluru",
		}),
		Price:        listing.StructuredValue(map[string]any{"value": 8500000, "currency": "INR"}),
		BHK:          2,
		ContactPhone: "+91 98765-43210",
	}

	// Same content, construction order of the structured fields reversed.
	b := listing.Listing{
		Description:  "  2 BHK in Koramangala  ",
		PropertyType: "Apartment",
		Location: listing.StructuredValue(map[string]any{
			"city": "Bengaluru",
			"area": "Koramangala",
		}),
		Price:        listing.StructuredValue(map[string]any{"currency": "INR", "value": 8500000}),
		BHK:          2,
		ContactPhone: "919876543210",
	}

	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("fingerprints differ:\n%q\n%q", a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintDistinguishesListings(t *testing.T) {
	t.Parallel()

	a := listing.Listing{Description: "2 BHK in Koramangala", BHK: 2}
	b := listing.Listing{Description: "2 BHK in Koramangala", BHK: 3}

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different BHK values produced the same fingerprint")
	}
}

func TestSeenSetSuppressesWithinBatch(t *testing.T) {
	t.Parallel()

	l := listing.Listing{Description: "3 BHK villa", PropertyType: "villa"}
	seen := listing.NewSeenSet(nil)

	if !seen.Observe(l.Fingerprint()) {
		t.Fatal("first observation reported as duplicate")
	}
	if seen.Observe(l.Fingerprint()) {
		t.Error("second observation in the same batch not suppressed")
	}
}

func TestSeenSetPrimedWithExisting(t *testing.T) {
	t.Parallel()

	l := listing.Listing{Description: "3 BHK villa", PropertyType: "villa"}
	seen := listing.NewSeenSet([]string{l.Fingerprint()})

	if seen.Observe(l.Fingerprint()) {
		t.Error("fingerprint known from storage not suppressed")
	}
}

func TestConfidenceAndStatus(t *testing.T) {
	t.Parallel()

	empty := listing.Listing{}
	if got := empty.Confidence(); got != 0 {
		t.Errorf("empty listing confidence = %v, want 0", got)
	}
	if got := empty.Status(70); got != listing.StatusNeedsReview {
		t.Errorf("empty listing status = %q, want %q", got, listing.StatusNeedsReview)
	}

	full := listing.Listing{
		PropertyType: "apartment",
		Location:     listing.ScalarValue("Koramangala"),
		Price:        listing.ScalarValue("85 lakh"),
		Area:         listing.ScalarValue("1200 sq ft"),
		BHK:          2,
		ListingType:  "sale",
		Description:  "2 BHK in Koramangala",
		ContactPhone: "9876543210",
		Amenities:    []string{"parking"},
	}
	if got := full.Confidence(); got != 100 {
		t.Errorf("full listing confidence = %v, want 100", got)
	}
	if got := full.Status(70); got != listing.StatusVerified {
		t.Errorf("full listing status = %q, want %q", got, listing.StatusVerified)
	}
}

func TestEssentialFieldTracking(t *testing.T) {
	t.Parallel()

	l := listing.Listing{
		PropertyType: "apartment",
		Location:     listing.ScalarValue("Koramangala"),
	}

	if !l.HasEssentialData() {
		t.Error("HasEssentialData = false with two essential fields set")
	}
	if !l.NeedsFollowup() {
		t.Error("NeedsFollowup = false with price, area and contact missing")
	}

	missing := l.MissingEssentials()
	want := []string{"price", "area", "contact"}
	if len(missing) != len(want) {
		t.Fatalf("MissingEssentials = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("MissingEssentials[%d] = %q, want %q", i, missing[i], want[i])
		}
	}

	if (&listing.Listing{}).HasEssentialData() {
		t.Error("HasEssentialData = true for empty listing")
	}
}

func TestFieldValueJSONRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "scalar", in: `"Koramangala"`},
		{name: "structured", in: `{"area":"Koramangala","city":"Bengaluru"}`},
		{name: "null", in: `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var v listing.FieldValue
			if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tc.in, err)
			}
			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tc.in {
				t.Errorf("round trip = %s, want %s", out, tc.in)
			}
		})
	}
}

func TestFieldValueCanonical(t *testing.T) {
	t.Parallel()

	a := listing.StructuredValue(map[string]any{"area": "Koramangala", "city": "Bengaluru"})
	want := `{"area":"koramangala","city":"bengaluru"}`
	if got := a.Canonical(); got != want {
		t.Errorf("Canonical = %q, want %q", got, want)
	}

	if got := (listing.FieldValue{}).Canonical(); got != `""` {
		t.Errorf("zero Canonical = %q, want %q", got, `""`)
	}

	if got := listing.ScalarValue("Koramangala").Canonical(); got != `"koramangala"` {
		t.Errorf("scalar Canonical = %q, want %q", got, `"koramangala"`)
	}
}

func TestFieldValueDisplay(t *testing.T) {
	t.Parallel()

	if got := listing.ScalarValue("Koramangala").Display(); got != "Koramangala" {
		t.Errorf("scalar Display = %q", got)
	}

	v := listing.StructuredValue(map[string]any{"value": 1200, "unit": "sq ft", "formatted": "1200 sq ft"})
	if got := v.Display(); got != "1200 sq ft" {
		t.Errorf("formatted Display = %q", got)
	}

	v = listing.StructuredValue(map[string]any{"area": "Koramangala", "city": "Bengaluru"})
	if got := v.Display(); got != "Koramangala, Bengaluru" {
		t.Errorf("joined Display = %q", got)
	}
}
