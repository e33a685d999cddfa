package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anerudhh/Realistly-mvp/internal/listing"
	"github.com/anerudhh/Realistly-mvp/internal/whatsapp"
)

// RawMessage stores one parsed chat message as received, before field
// extraction. It is the provenance record every listing points back to.
type RawMessage struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	BatchID     string         `db:"batch_id"`
	SenderName  string         `db:"sender_name"`
	SenderPhone sql.NullString `db:"sender_phone"`
	Content     string         `db:"content"`
	Source      string         `db:"source"`
	SourceGroup string         `db:"source_group"`
	Timestamp   time.Time      `db:"timestamp"`
	MediaURLs   sql.NullString `db:"media_urls"`
}

// NewRawMessage converts a parsed message into its storage record.
func NewRawMessage(id, batchID string, msg *whatsapp.ParsedMessage) (*RawMessage, error) {
	rec := &RawMessage{
		ID:          id,
		BatchID:     batchID,
		SenderName:  msg.SenderName,
		SenderPhone: nullString(msg.SenderPhone),
		Content:     msg.Content,
		Source:      msg.Source,
		SourceGroup: msg.SourceGroup,
		Timestamp:   msg.Timestamp,
	}

	if len(msg.MediaURLs) > 0 {
		b, err := json.Marshal(msg.MediaURLs)
		if err != nil {
			return nil, fmt.Errorf("marshaling media URLs: %w", err)
		}
		rec.MediaURLs = nullString(string(b))
	}

	return rec, nil
}

// StoredListing is the persisted form of a structured listing. The
// shape-tolerant fields (location, price, area) are stored as their JSON
// serialization; search_text carries a flattened lower-case rendering
// for LIKE queries.
type StoredListing struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	RawMessageID  string         `db:"raw_message_id"`
	BatchID       string         `db:"batch_id"`
	PropertyType  sql.NullString `db:"property_type"`
	ListingType   sql.NullString `db:"listing_type"`
	BHK           sql.NullInt64  `db:"bhk"`
	Location      sql.NullString `db:"location"`
	Price         sql.NullString `db:"price"`
	Area          sql.NullString `db:"area"`
	Description   string         `db:"description"`
	ContactPerson sql.NullString `db:"contact_person"`
	ContactPhone  sql.NullString `db:"contact_phone"`
	Amenities     sql.NullString `db:"amenities"`
	MissingFields sql.NullString `db:"missing_fields"`
	NeedsFollowup bool           `db:"needs_followup"`

	Fingerprint     string  `db:"fingerprint"`
	ConfidenceScore float64 `db:"confidence_score"`
	Status          string  `db:"status"`
	SearchText      string  `db:"search_text"`

	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	FormattedAddress sql.NullString  `db:"formatted_address"`
}

// NewStoredListing flattens a structured listing into its storage record.
// The confidence threshold decides the initial review status.
func NewStoredListing(id, rawMessageID, batchID string, l *listing.Listing, confidenceThreshold float64) (*StoredListing, error) {
	rec := &StoredListing{
		ID:              id,
		RawMessageID:    rawMessageID,
		BatchID:         batchID,
		PropertyType:    nullString(l.PropertyType),
		ListingType:     nullString(l.ListingType),
		Description:     l.Description,
		ContactPerson:   nullString(l.ContactPerson),
		ContactPhone:    nullString(l.ContactPhone),
		NeedsFollowup:   l.NeedsFollowup(),
		Fingerprint:     l.Fingerprint(),
		ConfidenceScore: l.Confidence(),
		Status:          l.Status(confidenceThreshold),
		SearchText:      searchText(l),
	}

	if l.BHK > 0 {
		rec.BHK = sql.NullInt64{Int64: int64(l.BHK), Valid: true}
	}

	var err error
	if rec.Location, err = nullField(l.Location); err != nil {
		return nil, fmt.Errorf("marshaling location: %w", err)
	}
	if rec.Price, err = nullField(l.Price); err != nil {
		return nil, fmt.Errorf("marshaling price: %w", err)
	}
	if rec.Area, err = nullField(l.Area); err != nil {
		return nil, fmt.Errorf("marshaling area: %w", err)
	}
	if rec.Amenities, err = nullJSON(l.Amenities); err != nil {
		return nil, fmt.Errorf("marshaling amenities: %w", err)
	}
	if rec.MissingFields, err = nullJSON(l.MissingFields); err != nil {
		return nil, fmt.Errorf("marshaling missing fields: %w", err)
	}

	return rec, nil
}

// Listing reconstructs the structured listing from a storage record.
func (r *StoredListing) Listing() (*listing.Listing, error) {
	l := &listing.Listing{
		PropertyType:  r.PropertyType.String,
		ListingType:   r.ListingType.String,
		BHK:           int(r.BHK.Int64),
		Description:   r.Description,
		ContactPerson: r.ContactPerson.String,
		ContactPhone:  r.ContactPhone.String,
	}

	for _, f := range []struct {
		src sql.NullString
		dst *listing.FieldValue
	}{
		{r.Location, &l.Location},
		{r.Price, &l.Price},
		{r.Area, &l.Area},
	} {
		if !f.src.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(f.src.String), f.dst); err != nil {
			return nil, fmt.Errorf("unmarshaling field value: %w", err)
		}
	}

	if r.Amenities.Valid {
		if err := json.Unmarshal([]byte(r.Amenities.String), &l.Amenities); err != nil {
			return nil, fmt.Errorf("unmarshaling amenities: %w", err)
		}
	}
	if r.MissingFields.Valid {
		if err := json.Unmarshal([]byte(r.MissingFields.String), &l.MissingFields); err != nil {
			return nil, fmt.Errorf("unmarshaling missing fields: %w", err)
		}
	}

	return l, nil
}

// searchText flattens the searchable fields into one lower-case string.
func searchText(l *listing.Listing) string {
	parts := []string{
		l.Description,
		l.PropertyType,
		l.ListingType,
		l.Location.Display(),
		l.Price.Display(),
		l.Area.Display(),
		l.ContactPhone,
	}
	parts = append(parts, l.Amenities...)

	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.ToLower(strings.Join(nonEmpty, " "))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullField(v listing.FieldValue) (sql.NullString, error) {
	if v.IsZero() {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return nullString(string(b)), nil
}

func nullJSON(values []string) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return nullString(string(b)), nil
}
