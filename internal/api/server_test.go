package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anerudhh/Realistly-mvp/internal/api"
	"github.com/anerudhh/Realistly-mvp/internal/config"
	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/pipeline"
)

type stubStore struct {
	pingErr  error
	listings []database.StoredListing
	lastQ    database.SearchQuery
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func (s *stubStore) SaveRawMessage(context.Context, *database.RawMessage) error { return nil }

func (s *stubStore) SaveListing(context.Context, *database.StoredListing) error { return nil }

func (s *stubStore) ListFingerprints(context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) ListListings(context.Context, int, int) ([]database.StoredListing, error) {
	return s.listings, nil
}

func (s *stubStore) CountListings(context.Context) (int, error) { return len(s.listings), nil }

func (s *stubStore) SearchListings(_ context.Context, q database.SearchQuery) ([]database.StoredListing, error) {
	s.lastQ = q
	return s.listings, nil
}

func (s *stubStore) ListUngeocodedListings(context.Context, int) ([]database.StoredListing, error) {
	return nil, nil
}

func (s *stubStore) UpdateListingCoordinates(context.Context, string, float64, float64, string) error {
	return nil
}

func (s *stubStore) RunSQLMaintenance(context.Context) error { return nil }

type stubIngestor struct {
	lastContent string
	lastGroup   string
	lastImages  []pipeline.ImageInput
	report      *pipeline.Report
}

func (i *stubIngestor) ProcessChat(_ context.Context, content, sourceGroup string) (*pipeline.Report, error) {
	i.lastContent = content
	i.lastGroup = sourceGroup
	return i.report, nil
}

func (i *stubIngestor) ProcessImages(_ context.Context, images []pipeline.ImageInput) (*pipeline.Report, error) {
	i.lastImages = images
	return i.report, nil
}

func newTestServer(store *stubStore, ingestor *stubIngestor) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := api.NewServer(log, store, ingestor, config.ServerConfig{
		Port:           8080,
		MaxUploadBytes: 1 << 20,
	})
	return httptest.NewServer(s.Handler())
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStore{}, &stubIngestor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if body := decodeBody(t, resp); body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStore{pingErr: context.DeadlineExceeded}, &stubIngestor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestProcessChat(t *testing.T) {
	t.Parallel()

	ingestor := &stubIngestor{report: &pipeline.Report{BatchID: "b1", TotalMessages: 3, StoredListings: 2}}
	srv := newTestServer(&stubStore{}, ingestor)
	defer srv.Close()

	body, contentType := multipartBody(t, "chatFile", "bangalore-flats.txt", "25/12/23, 10:30 AM - Ravi: hi")

	resp, err := http.Post(srv.URL+"/api/v1/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /api/v1/process: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if ingestor.lastContent != "25/12/23, 10:30 AM - Ravi: hi" {
		t.Errorf("pipeline received content %q", ingestor.lastContent)
	}
	if ingestor.lastGroup != "bangalore-flats" {
		t.Errorf("source group = %q, want filename stem", ingestor.lastGroup)
	}
	if body := decodeBody(t, resp); body["message"] != "chat export processed" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestProcessChatAnyFieldName(t *testing.T) {
	t.Parallel()

	ingestor := &stubIngestor{report: &pipeline.Report{BatchID: "b1"}}
	srv := newTestServer(&stubStore{}, ingestor)
	defer srv.Close()

	body, contentType := multipartBody(t, "file", "export.txt", "some chat")

	resp, err := http.Post(srv.URL+"/api/v1/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /api/v1/process: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ingestor.lastContent != "some chat" {
		t.Errorf("pipeline received content %q", ingestor.lastContent)
	}
}

func TestProcessChatMissingFile(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStore{}, &stubIngestor{})
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("groupName", "g"); err != nil {
		t.Fatalf("writing field: %v", err)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/process", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /api/v1/process: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestProcessChatZeroMessages(t *testing.T) {
	t.Parallel()

	ingestor := &stubIngestor{report: &pipeline.Report{BatchID: "b1", TotalMessages: 0}}
	srv := newTestServer(&stubStore{}, ingestor)
	defer srv.Close()

	body, contentType := multipartBody(t, "chatFile", "export.txt", "not a chat export")

	resp, err := http.Post(srv.URL+"/api/v1/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /api/v1/process: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if body := decodeBody(t, resp); body["message"] != "no messages found in chat export" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestProcessImages(t *testing.T) {
	t.Parallel()

	ingestor := &stubIngestor{report: &pipeline.Report{BatchID: "b1", StoredListings: 1}}
	srv := newTestServer(&stubStore{}, ingestor)
	defer srv.Close()

	body, contentType := multipartBody(t, "images", "flat.jpg", "fakejpegbytes")

	resp, err := http.Post(srv.URL+"/api/v1/process-images", contentType, body)
	if err != nil {
		t.Fatalf("POST /api/v1/process-images: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if len(ingestor.lastImages) != 1 {
		t.Fatalf("pipeline received %d images, want 1", len(ingestor.lastImages))
	}
	if ingestor.lastImages[0].Filename != "flat.jpg" {
		t.Errorf("image filename = %q", ingestor.lastImages[0].Filename)
	}
}

func TestProcessImagesEmpty(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStore{}, &stubIngestor{})
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/process-images", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /api/v1/process-images: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestSearchMapsQueryParams(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	srv := newTestServer(store, &stubIngestor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/search?q=koramangala&property_type=apartment&listing_type=sale&bhk=2&status=verified&limit=5&offset=10")
	if err != nil {
		t.Fatalf("GET /api/v1/search: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	want := database.SearchQuery{
		Text:         "koramangala",
		PropertyType: "apartment",
		ListingType:  "sale",
		BHK:          2,
		Status:       "verified",
		Limit:        5,
		Offset:       10,
	}
	if store.lastQ != want {
		t.Errorf("search query = %+v, want %+v", store.lastQ, want)
	}
}

func TestListings(t *testing.T) {
	t.Parallel()

	store := &stubStore{listings: []database.StoredListing{
		{ID: "l1", Status: "verified", ConfidenceScore: 80, Description: "2 bhk in hsr"},
	}}
	srv := newTestServer(store, &stubIngestor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/listings")
	if err != nil {
		t.Fatalf("GET /api/v1/listings: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := decodeBody(t, resp)
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}
	returned, ok := body["listings"].([]any)
	if !ok || len(returned) != 1 {
		t.Fatalf("listings = %v, want one entry", body["listings"])
	}
	entry := returned[0].(map[string]any)
	if entry["id"] != "l1" {
		t.Errorf("listing id = %v, want l1", entry["id"])
	}
}
