package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveRawMessage inserts a parsed message record.
	SaveRawMessage(ctx context.Context, msg *RawMessage) error

	// SaveListing inserts a processed listing record.
	SaveListing(ctx context.Context, rec *StoredListing) error

	// ListFingerprints returns the fingerprints of all stored listings,
	// used to prime duplicate detection before a batch.
	ListFingerprints(ctx context.Context) ([]string, error)

	// ListListings retrieves listings ordered newest first.
	ListListings(ctx context.Context, limit, offset int) ([]StoredListing, error)

	// CountListings returns the total number of stored listings.
	CountListings(ctx context.Context) (int, error)

	// SearchListings retrieves listings matching the query filters.
	SearchListings(ctx context.Context, q SearchQuery) ([]StoredListing, error)

	// ListUngeocodedListings retrieves listings with a location but no
	// coordinates yet, for geocoding backfill.
	ListUngeocodedListings(ctx context.Context, limit int) ([]StoredListing, error)

	// UpdateListingCoordinates stores geocoding results for a listing.
	UpdateListingCoordinates(ctx context.Context, id string, lat, lng float64, formattedAddress string) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// SearchQuery carries search filters. Zero values mean "no filter".
type SearchQuery struct {
	Text         string
	PropertyType string
	ListingType  string
	BHK          int
	Status       string
	Limit        int
	Offset       int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveRawMessage inserts a parsed message record.
func (s *sqlxStore) SaveRawMessage(ctx context.Context, msg *RawMessage) error {
	if msg == nil {
		return fmt.Errorf("cannot save nil raw message")
	}
	if msg.ID == "" {
		return fmt.Errorf("raw message must have an id")
	}
	if msg.Content == "" {
		return fmt.Errorf("raw message must have non-empty content")
	}

	msg.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving raw message",
			"message_id", msg.ID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT INTO raw_messages (id, created_at, batch_id, sender_name, sender_phone, content, source, source_group, timestamp, media_urls)
        VALUES (:id, :created_at, :batch_id, :sender_name, :sender_phone, :content, :source, :source_group, :timestamp, :media_urls);
    `

	if _, err := tx.NamedExecContext(ctx, query, msg); err != nil {
		s.logger.ErrorContext(ctx, "Error saving raw message", "message_id", msg.ID, "error", err)
		return fmt.Errorf("failed to save raw message %s: %w", msg.ID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "message_id", msg.ID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Raw message saved", "message_id", msg.ID, "batch_id", msg.BatchID)
	return nil
}

// SaveListing inserts a processed listing record.
func (s *sqlxStore) SaveListing(ctx context.Context, rec *StoredListing) error {
	if rec == nil {
		return fmt.Errorf("cannot save nil listing")
	}
	if rec.ID == "" {
		return fmt.Errorf("listing must have an id")
	}
	if rec.Fingerprint == "" {
		return fmt.Errorf("listing must have a fingerprint")
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving listing",
			"listing_id", rec.ID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT INTO listings (id, created_at, updated_at, raw_message_id, batch_id, property_type, listing_type, bhk,
                              location, price, area, description, contact_person, contact_phone, amenities,
                              missing_fields, needs_followup, fingerprint, confidence_score, status, search_text,
                              latitude, longitude, formatted_address)
        VALUES (:id, :created_at, :updated_at, :raw_message_id, :batch_id, :property_type, :listing_type, :bhk,
                :location, :price, :area, :description, :contact_person, :contact_phone, :amenities,
                :missing_fields, :needs_followup, :fingerprint, :confidence_score, :status, :search_text,
                :latitude, :longitude, :formatted_address);
    `

	if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
		s.logger.ErrorContext(ctx, "Error saving listing", "listing_id", rec.ID, "error", err)
		return fmt.Errorf("failed to save listing %s: %w", rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "listing_id", rec.ID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Listing saved", "listing_id", rec.ID, "status", rec.Status)
	return nil
}

// ListFingerprints returns the fingerprints of all stored listings.
func (s *sqlxStore) ListFingerprints(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var fingerprints []string
	err := s.db.SelectContext(ctx, &fingerprints, `SELECT fingerprint FROM listings;`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing fingerprints", "error", err)
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	return fingerprints, nil
}

// ListListings retrieves listings ordered newest first.
func (s *sqlxStore) ListListings(ctx context.Context, limit, offset int) ([]StoredListing, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var listings []StoredListing
	query := `SELECT * FROM listings ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	if err := s.db.SelectContext(ctx, &listings, query, limit, offset); err != nil {
		s.logger.ErrorContext(ctx, "Error listing listings", "limit", limit, "offset", offset, "error", err)
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched listings", "count", len(listings))
	return listings, nil
}

// CountListings returns the total number of stored listings.
func (s *sqlxStore) CountListings(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listings;`); err != nil {
		s.logger.ErrorContext(ctx, "Error counting listings", "error", err)
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// SearchListings retrieves listings matching the query filters. Free
// text matches against the flattened search_text column; the remaining
// filters are exact.
func (s *sqlxStore) SearchListings(ctx context.Context, q SearchQuery) ([]StoredListing, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	conditions := []string{"1=1"}
	args := []any{}

	if q.Text != "" {
		// Each word must appear somewhere in the search text.
		for _, word := range strings.Fields(strings.ToLower(q.Text)) {
			conditions = append(conditions, "search_text LIKE ?")
			args = append(args, "%"+word+"%")
		}
	}
	if q.PropertyType != "" {
		conditions = append(conditions, "property_type = ?")
		args = append(args, strings.ToLower(q.PropertyType))
	}
	if q.ListingType != "" {
		conditions = append(conditions, "listing_type = ?")
		args = append(args, strings.ToLower(q.ListingType))
	}
	if q.BHK > 0 {
		conditions = append(conditions, "bhk = ?")
		args = append(args, q.BHK)
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, q.Status)
	}

	query := `SELECT * FROM listings WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	args = append(args, clampLimit(q.Limit), max(q.Offset, 0))

	var listings []StoredListing
	if err := s.db.SelectContext(ctx, &listings, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Error searching listings", "error", err)
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	s.logger.DebugContext(ctx, "Search complete", "count", len(listings))
	return listings, nil
}

// ListUngeocodedListings retrieves listings that have a location but no
// coordinates yet.
func (s *sqlxStore) ListUngeocodedListings(ctx context.Context, limit int) ([]StoredListing, error) {
	limit = clampLimit(limit)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var listings []StoredListing
	query := `
        SELECT * FROM listings
        WHERE location IS NOT NULL AND latitude IS NULL
        ORDER BY created_at ASC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &listings, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error listing ungeocoded listings", "error", err)
		return nil, fmt.Errorf("failed to list ungeocoded listings: %w", err)
	}
	return listings, nil
}

// UpdateListingCoordinates stores geocoding results for a listing.
func (s *sqlxStore) UpdateListingCoordinates(ctx context.Context, id string, lat, lng float64, formattedAddress string) error {
	if id == "" {
		return fmt.Errorf("listing id cannot be empty")
	}

	query := `
        UPDATE listings
        SET latitude = ?, longitude = ?, formatted_address = ?, updated_at = ?
        WHERE id = ?;
    `
	result, err := s.db.ExecContext(ctx, query, lat, lng, nullString(formattedAddress), time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating listing coordinates", "listing_id", id, "error", err)
		return fmt.Errorf("failed to update coordinates for listing %s: %w", id, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when updating coordinates",
			"listing_id", id, "affected", affected)
	}

	s.logger.DebugContext(ctx, "Listing coordinates updated", "listing_id", id)
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
