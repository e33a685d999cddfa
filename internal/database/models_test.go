package database_test

import (
	"testing"
	"time"

	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/listing"
	"github.com/anerudhh/Realistly-mvp/internal/whatsapp"
)

func TestNewRawMessage(t *testing.T) {
	t.Parallel()

	msg := &whatsapp.ParsedMessage{
		SenderName:  "Ravi",
		SenderPhone: "9876543210",
		Content:     "2 BHK for sale, see https://example.com/flat.jpg",
		Source:      "chat-export",
		SourceGroup: "bangalore-flats",
		Timestamp:   time.Date(2023, 12, 25, 10, 30, 0, 0, time.UTC),
		MediaURLs:   []string{"https://example.com/flat.jpg"},
	}

	rec, err := database.NewRawMessage("m1", "b1", msg)
	if err != nil {
		t.Fatalf("NewRawMessage: %v", err)
	}

	if rec.ID != "m1" || rec.BatchID != "b1" {
		t.Errorf("ids = %q/%q", rec.ID, rec.BatchID)
	}
	if !rec.SenderPhone.Valid || rec.SenderPhone.String != "9876543210" {
		t.Errorf("sender phone = %+v", rec.SenderPhone)
	}
	if !rec.MediaURLs.Valid || rec.MediaURLs.String != `["https://example.com/flat.jpg"]` {
		t.Errorf("media urls = %+v", rec.MediaURLs)
	}
}

func TestNewRawMessageWithoutOptionals(t *testing.T) {
	t.Parallel()

	rec, err := database.NewRawMessage("m1", "b1", &whatsapp.ParsedMessage{
		SenderName: whatsapp.UnknownSender,
		Content:    "hello",
	})
	if err != nil {
		t.Fatalf("NewRawMessage: %v", err)
	}
	if rec.SenderPhone.Valid {
		t.Error("sender phone should be null when absent")
	}
	if rec.MediaURLs.Valid {
		t.Error("media urls should be null when absent")
	}
}

func TestStoredListingRoundTrip(t *testing.T) {
	t.Parallel()

	original := &listing.Listing{
		PropertyType: "apartment",
		ListingType:  "sale",
		BHK:          2,
		Location: listing.StructuredValue(map[string]any{
			"area": "Koramangala",
			"city": "Bengaluru",
		}),
		Price: listing.StructuredValue(map[string]any{
			"value":     float64(8500000),
			"currency":  "INR",
			"formatted": "₹85 lakh",
		}),
		Area:          listing.ScalarValue("1200 sqft"),
		Description:   "2 BHK apartment in Koramangala",
		ContactPerson: "Ravi",
		ContactPhone:  "9876543210",
		Amenities:     []string{"parking", "gym"},
	}

	rec, err := database.NewStoredListing("l1", "m1", "b1", original, 70)
	if err != nil {
		t.Fatalf("NewStoredListing: %v", err)
	}

	if rec.Fingerprint != original.Fingerprint() {
		t.Error("record fingerprint differs from listing fingerprint")
	}
	if rec.Status != listing.StatusVerified {
		t.Errorf("status = %q, want %q", rec.Status, listing.StatusVerified)
	}
	if !rec.BHK.Valid || rec.BHK.Int64 != 2 {
		t.Errorf("bhk = %+v", rec.BHK)
	}
	if rec.SearchText == "" {
		t.Error("search text is empty")
	}

	restored, err := rec.Listing()
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}

	if restored.PropertyType != original.PropertyType ||
		restored.ListingType != original.ListingType ||
		restored.BHK != original.BHK ||
		restored.ContactPhone != original.ContactPhone {
		t.Errorf("restored scalar fields differ: %+v", restored)
	}
	if restored.Location.Canonical() != original.Location.Canonical() {
		t.Errorf("location = %q, want %q", restored.Location.Canonical(), original.Location.Canonical())
	}
	if restored.Price.Canonical() != original.Price.Canonical() {
		t.Errorf("price = %q, want %q", restored.Price.Canonical(), original.Price.Canonical())
	}
	if restored.Area.Canonical() != original.Area.Canonical() {
		t.Errorf("area = %q, want %q", restored.Area.Canonical(), original.Area.Canonical())
	}
	if len(restored.Amenities) != 2 {
		t.Errorf("amenities = %v", restored.Amenities)
	}
	if restored.Fingerprint() != original.Fingerprint() {
		t.Error("fingerprint changed across storage round trip")
	}
}

func TestStoredListingLowConfidenceNeedsReview(t *testing.T) {
	t.Parallel()

	rec, err := database.NewStoredListing("l1", "m1", "b1", &listing.Listing{
		Description: "plot wanted",
	}, 70)
	if err != nil {
		t.Fatalf("NewStoredListing: %v", err)
	}
	if rec.Status != listing.StatusNeedsReview {
		t.Errorf("status = %q, want %q", rec.Status, listing.StatusNeedsReview)
	}
	if !rec.NeedsFollowup {
		t.Error("expected needs_followup for listing missing essentials")
	}
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain path", "realistly.db", "realistly.db"},
		{"file scheme", "file:data/realistly.db", "data/realistly.db"},
		{"with params", "realistly.db?cache=shared", "realistly.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := database.ExtractDBNameFromPath(tt.path); got != tt.want {
				t.Errorf("ExtractDBNameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
