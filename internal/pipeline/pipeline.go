// Package pipeline wires the parsing, classification, extraction and
// persistence stages into the batch ingestion flow. Extraction calls run
// sequentially with a courtesy delay between them; a failure on one
// message never aborts the batch, and the report always carries the
// counts even when parts of a batch failed.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anerudhh/Realistly-mvp/internal/config"
	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/extract"
	"github.com/anerudhh/Realistly-mvp/internal/geocode"
	"github.com/anerudhh/Realistly-mvp/internal/listing"
	"github.com/anerudhh/Realistly-mvp/internal/ocr"
	"github.com/anerudhh/Realistly-mvp/internal/relevance"
	"github.com/anerudhh/Realistly-mvp/internal/whatsapp"
)

// Report summarizes one ingestion batch. Counts are reported even on
// partial failure so operators can tell "nothing relevant in this
// export" from "pipeline broke".
type Report struct {
	BatchID             string `json:"batch_id"`
	TotalMessages       int    `json:"total_messages"`
	CandidateMessages   int    `json:"candidate_messages"`
	StoredListings      int    `json:"stored_listings"`
	DuplicatesSkipped   int    `json:"duplicates_skipped"`
	FallbackExtractions int    `json:"fallback_extractions"`
	FailedMessages      int    `json:"failed_messages"`
	SkippedImages       int    `json:"skipped_images,omitempty"`
}

// ImageInput is one uploaded image file.
type ImageInput struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Pipeline runs chat exports and image batches through parsing,
// relevance gating, extraction, deduplication and persistence. The
// geocoder and OCR reader are optional; without them the corresponding
// enrichment steps are skipped.
type Pipeline struct {
	log        *slog.Logger
	store      database.Store
	parser     *whatsapp.Parser
	classifier *relevance.Classifier
	extractor  extract.Extractor
	geocoder   *geocode.Client
	reader     ocr.Reader
	cfg        config.PipelineConfig

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a pipeline. geocoder and reader may be nil.
func New(
	log *slog.Logger,
	store database.Store,
	parser *whatsapp.Parser,
	classifier *relevance.Classifier,
	extractor extract.Extractor,
	geocoder *geocode.Client,
	reader ocr.Reader,
	cfg config.PipelineConfig,
) *Pipeline {
	return &Pipeline{
		log:        log.With("component", "pipeline"),
		store:      store,
		parser:     parser,
		classifier: classifier,
		extractor:  extractor,
		geocoder:   geocoder,
		reader:     reader,
		cfg:        cfg,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// ProcessChat ingests a chat export. The returned report is valid even
// when individual messages failed downstream.
func (p *Pipeline) ProcessChat(ctx context.Context, content, sourceGroup string) (*Report, error) {
	report := &Report{BatchID: uuid.NewString()}

	messages := p.parser.Parse(content, sourceGroup)
	report.TotalMessages = len(messages)

	if len(messages) == 0 {
		p.log.InfoContext(ctx, "no messages parsed from export",
			"batch_id", report.BatchID, "source_group", sourceGroup)
		return report, nil
	}

	seen, err := p.primeSeenSet(ctx)
	if err != nil {
		return report, err
	}

	for _, msg := range messages {
		if !p.classifier.IsCandidate(msg.Content) {
			continue
		}
		// The courtesy delay spaces extraction calls; the first one
		// starts immediately.
		if report.CandidateMessages > 0 && p.cfg.ExtractionDelay > 0 {
			p.sleep(p.cfg.ExtractionDelay)
		}
		report.CandidateMessages++

		p.processMessage(ctx, &msg, seen, report)
	}

	p.log.InfoContext(ctx, "chat batch processed",
		"batch_id", report.BatchID,
		"total", report.TotalMessages,
		"candidates", report.CandidateMessages,
		"stored", report.StoredListings,
		"duplicates", report.DuplicatesSkipped,
		"fallbacks", report.FallbackExtractions,
		"failed", report.FailedMessages)

	return report, nil
}

// ProcessImages ingests uploaded images: OCR text recovery, then the
// same per-message flow as chat exports. Unsupported formats and images
// without enough readable text are counted, not errors.
func (p *Pipeline) ProcessImages(ctx context.Context, images []ImageInput) (*Report, error) {
	report := &Report{BatchID: uuid.NewString()}

	if p.reader == nil {
		p.log.WarnContext(ctx, "image processing requested but OCR is not configured",
			"batch_id", report.BatchID)
		report.SkippedImages = len(images)
		return report, nil
	}

	seen, err := p.primeSeenSet(ctx)
	if err != nil {
		return report, err
	}

	ocrCalls := 0
	for _, img := range images {
		if !ocr.IsSupportedImage(img.Filename, img.MIMEType) {
			p.log.InfoContext(ctx, "skipping unsupported image",
				"filename", img.Filename, "mime_type", img.MIMEType)
			report.SkippedImages++
			continue
		}

		if ocrCalls > 0 && p.cfg.ExtractionDelay > 0 {
			p.sleep(p.cfg.ExtractionDelay)
		}
		ocrCalls++

		mimeType := img.MIMEType
		if mimeType == "" {
			mimeType = ocr.MIMETypeFor(img.Filename)
		}

		text, err := p.reader.ExtractText(ctx, img.Data, mimeType)
		if err != nil {
			p.log.WarnContext(ctx, "image text recovery failed",
				"filename", img.Filename, "error", err)
			report.FailedMessages++
			continue
		}
		if len(strings.TrimSpace(text)) < p.cfg.MinImageTextLength {
			p.log.InfoContext(ctx, "image has no usable text", "filename", img.Filename)
			report.SkippedImages++
			continue
		}

		msg := whatsapp.NewImageMessage(img.Filename, text, p.now)
		report.TotalMessages++

		if !p.classifier.IsCandidate(msg.Content) {
			continue
		}
		report.CandidateMessages++

		p.processMessage(ctx, &msg, seen, report)
	}

	p.log.InfoContext(ctx, "image batch processed",
		"batch_id", report.BatchID,
		"images", len(images),
		"skipped", report.SkippedImages,
		"stored", report.StoredListings)

	return report, nil
}

// GeocodeBackfill resolves coordinates for stored listings that have a
// location but no coordinates yet. Used by the scheduled backfill task.
func (p *Pipeline) GeocodeBackfill(ctx context.Context, limit int) (int, error) {
	if p.geocoder == nil || !p.geocoder.Enabled() {
		return 0, nil
	}

	records, err := p.store.ListUngeocodedListings(ctx, limit)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i, rec := range records {
		if i > 0 && p.geocoder.CallDelay() > 0 {
			p.sleep(p.geocoder.CallDelay())
		}

		l, err := rec.Listing()
		if err != nil {
			p.log.WarnContext(ctx, "skipping listing with unreadable fields",
				"listing_id", rec.ID, "error", err)
			continue
		}

		address := geocode.StandardizeAddress(l.Location)
		if address == "" {
			continue
		}

		loc, err := p.geocoder.Lookup(ctx, address)
		if err != nil {
			p.log.WarnContext(ctx, "geocoding lookup failed",
				"listing_id", rec.ID, "address", address, "error", err)
			continue
		}
		if loc == nil {
			continue
		}

		if err := p.store.UpdateListingCoordinates(ctx, rec.ID, loc.Latitude, loc.Longitude, loc.FormattedAddress); err != nil {
			p.log.WarnContext(ctx, "failed to store coordinates",
				"listing_id", rec.ID, "error", err)
			continue
		}
		updated++
	}

	p.log.InfoContext(ctx, "geocode backfill complete",
		"candidates", len(records), "updated", updated)
	return updated, nil
}

func (p *Pipeline) primeSeenSet(ctx context.Context) (*listing.SeenSet, error) {
	fingerprints, err := p.store.ListFingerprints(ctx)
	if err != nil {
		return nil, err
	}
	return listing.NewSeenSet(fingerprints), nil
}

// processMessage runs one candidate message through persistence of the
// raw record, extraction, dedup and listing storage. Failures are
// counted and logged, never propagated: the batch continues.
func (p *Pipeline) processMessage(ctx context.Context, msg *whatsapp.ParsedMessage, seen *listing.SeenSet, report *Report) {
	raw, err := database.NewRawMessage(uuid.NewString(), report.BatchID, msg)
	if err != nil {
		p.log.WarnContext(ctx, "failed to build raw message record", "error", err)
		report.FailedMessages++
		return
	}
	if err := p.store.SaveRawMessage(ctx, raw); err != nil {
		p.log.WarnContext(ctx, "failed to save raw message", "error", err)
		report.FailedMessages++
		return
	}

	res := p.extractor.Extract(ctx, msg.Content)
	if res.Fallback {
		report.FallbackExtractions++
		p.log.DebugContext(ctx, "extraction used fallback", "reason", res.Reason)
	}

	l := res.Listing
	l.ContactPerson = msg.SenderName
	if l.ContactPhone == "" {
		l.ContactPhone = msg.SenderPhone
	}
	if len(l.MissingFields) == 0 {
		l.MissingFields = l.MissingEssentials()
	}

	if !l.HasEssentialData() {
		p.log.DebugContext(ctx, "extraction found no essential fields, dropping message",
			"raw_message_id", raw.ID)
		return
	}

	if !seen.Observe(l.Fingerprint()) {
		report.DuplicatesSkipped++
		p.log.DebugContext(ctx, "duplicate listing skipped", "raw_message_id", raw.ID)
		return
	}

	rec, err := database.NewStoredListing(uuid.NewString(), raw.ID, report.BatchID, &l, p.cfg.ConfidenceThreshold)
	if err != nil {
		p.log.WarnContext(ctx, "failed to build listing record", "raw_message_id", raw.ID, "error", err)
		report.FailedMessages++
		return
	}

	if err := p.store.SaveListing(ctx, rec); err != nil {
		p.log.WarnContext(ctx, "failed to save listing", "raw_message_id", raw.ID, "error", err)
		report.FailedMessages++
		return
	}
	report.StoredListings++
}

// SetClock overrides the pipeline's clock and sleep functions, for tests.
func (p *Pipeline) SetClock(now func() time.Time, sleep func(time.Duration)) {
	if now != nil {
		p.now = now
	}
	if sleep != nil {
		p.sleep = sleep
	}
}
