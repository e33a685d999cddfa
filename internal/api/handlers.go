package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/listing"
	"github.com/anerudhh/Realistly-mvp/internal/pipeline"
)

// listingResponse is the external shape of a stored listing.
type listingResponse struct {
	ID               string           `json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	Listing          *listing.Listing `json:"listing"`
	ConfidenceScore  float64          `json:"confidence_score"`
	Status           string           `json:"status"`
	NeedsFollowup    bool             `json:"needs_followup"`
	Latitude         *float64         `json:"latitude,omitempty"`
	Longitude        *float64         `json:"longitude,omitempty"`
	FormattedAddress string           `json:"formatted_address,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// processChat accepts a multipart upload of a chat export text file and
// runs it through the full pipeline. An export that parses to zero
// messages is not an error; the report says so.
func (s *Server) processChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := s.uploadedFile(r, "chatFile")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing chat export file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read chat export")
		return
	}

	sourceGroup := r.FormValue("groupName")
	if sourceGroup == "" {
		sourceGroup = strings.TrimSuffix(header.Filename, ".txt")
	}

	report, err := s.ingestor.ProcessChat(r.Context(), string(content), sourceGroup)
	if err != nil {
		s.log.ErrorContext(r.Context(), "chat processing failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	msg := "chat export processed"
	if report.TotalMessages == 0 {
		msg = "no messages found in chat export"
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"report":  report,
	})
}

// processImages accepts a multipart upload of one or more listing
// screenshots and runs them through OCR and the pipeline.
func (s *Server) processImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var images []pipeline.ImageInput
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			img, err := readImage(header)
			if err != nil {
				s.respondError(w, http.StatusBadRequest, "failed to read uploaded image")
				return
			}
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		s.respondError(w, http.StatusBadRequest, "no images uploaded")
		return
	}

	report, err := s.ingestor.ProcessImages(r.Context(), images)
	if err != nil {
		s.log.ErrorContext(r.Context(), "image processing failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "image processing failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "images processed",
		"report":  report,
	})
}

func (s *Server) listings(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	records, err := s.store.ListListings(r.Context(), limit, offset)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to list listings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	total, err := s.store.CountListings(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to count listings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	results, err := toResponses(records)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to decode stored listing", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"listings": results,
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := database.SearchQuery{
		Text:         r.URL.Query().Get("q"),
		PropertyType: r.URL.Query().Get("property_type"),
		ListingType:  r.URL.Query().Get("listing_type"),
		BHK:          queryInt(r, "bhk", 0),
		Status:       r.URL.Query().Get("status"),
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
	}

	records, err := s.store.SearchListings(r.Context(), q)
	if err != nil {
		s.log.ErrorContext(r.Context(), "search failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	results, err := toResponses(records)
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to decode stored listing", "error", err)
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(results),
		"listings": results,
	})
}

// uploadedFile returns the file uploaded under the given field name,
// falling back to the first file of any field when the expected name is
// absent.
func (s *Server) uploadedFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err == nil {
		return file, header, nil
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return nil, nil, err
	}

	for _, headers := range r.MultipartForm.File {
		for _, h := range headers {
			f, openErr := h.Open()
			if openErr != nil {
				return nil, nil, openErr
			}
			return f, h, nil
		}
	}
	return nil, nil, http.ErrMissingFile
}

func readImage(header *multipart.FileHeader) (pipeline.ImageInput, error) {
	f, err := header.Open()
	if err != nil {
		return pipeline.ImageInput{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return pipeline.ImageInput{}, err
	}
	return pipeline.ImageInput{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func toResponses(records []database.StoredListing) ([]listingResponse, error) {
	results := make([]listingResponse, 0, len(records))
	for i := range records {
		rec := &records[i]
		l, err := rec.Listing()
		if err != nil {
			return nil, err
		}
		resp := listingResponse{
			ID:               rec.ID,
			CreatedAt:        rec.CreatedAt,
			Listing:          l,
			ConfidenceScore:  rec.ConfidenceScore,
			Status:           rec.Status,
			NeedsFollowup:    rec.NeedsFollowup,
			FormattedAddress: rec.FormattedAddress.String,
		}
		if rec.Latitude.Valid && rec.Longitude.Valid {
			resp.Latitude = &rec.Latitude.Float64
			resp.Longitude = &rec.Longitude.Float64
		}
		results = append(results, resp)
	}
	return results, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
