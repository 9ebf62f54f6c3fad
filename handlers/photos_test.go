package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"github.com/lensloft/gallerybackend/database"
	"github.com/lensloft/gallerybackend/ingest"
	"github.com/lensloft/gallerybackend/media"
	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

type apiEnv struct {
	router   chi.Router
	photos   *repository.PhotoRepository
	albums   *repository.AlbumRepository
	ingestor *ingest.Ingestor
	storage  string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	root := t.TempDir()
	storage := filepath.Join(root, "public")
	photosDir := filepath.Join(storage, "photos")
	thumbsDir := filepath.Join(storage, "thumbnails")
	scanDir := filepath.Join(root, "inbox")
	for _, dir := range []string{photosDir, thumbsDir, scanDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	db, err := database.Init(filepath.Join(root, "test.db"))
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}

	photoRepo := repository.NewPhotoRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	tagRepo := repository.NewTagRepository(db)
	analyticsRepo, err := repository.NewAnalyticsRepository(db)
	if err != nil {
		t.Fatalf("failed to init analytics repository: %v", err)
	}

	processor := media.NewProcessor(thumbsDir)
	ingestor := ingest.NewIngestor(photoRepo, processor, scanDir, storage, photosDir)
	photoHandler := NewPhotoHandler(photoRepo, albumRepo, tagRepo, analyticsRepo, ingestor, storage)
	albumHandler := NewAlbumHandler(albumRepo, photoRepo)

	r := chi.NewRouter()
	r.Get("/api/photos", photoHandler.List)
	r.Get("/api/photos/{id}", photoHandler.Get)
	r.Patch("/api/photos/{id}", photoHandler.Update)
	r.Delete("/api/photos/{id}", photoHandler.Delete)
	r.Get("/api/albums", albumHandler.List)
	r.Post("/api/albums", albumHandler.Create)

	return &apiEnv{
		router:   r,
		photos:   photoRepo,
		albums:   albumRepo,
		ingestor: ingestor,
		storage:  storage,
	}
}

func (env *apiEnv) seedPhoto(t *testing.T) *models.Photo {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	photo, err := env.ingestor.IngestUpload(buf.Bytes(), "seed.jpg", 0, nil)
	if err != nil {
		t.Fatalf("failed to seed photo: %v", err)
	}
	return photo
}

func (env *apiEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestPhotoListEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	photo := env.seedPhoto(t)

	rec := env.do(t, http.MethodGet, "/api/photos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/photos -> %d", rec.Code)
	}

	var resp struct {
		Photos []struct {
			ID    int64 `json:"id"`
			Views int64 `json:"views"`
		} `json:"photos"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 1 || len(resp.Photos) != 1 || resp.Photos[0].ID != photo.ID {
		t.Errorf("unexpected listing: %s", rec.Body.String())
	}

	if rec := env.do(t, http.MethodGet, "/api/photos?limit=banana", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit -> %d, want 400", rec.Code)
	}
}

func TestPhotoPatchAlbumAssignment(t *testing.T) {
	env := newAPIEnv(t)
	photo := env.seedPhoto(t)

	rec := env.do(t, http.MethodPost, "/api/albums", `{"name":"Trip"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/albums -> %d: %s", rec.Code, rec.Body.String())
	}
	var album models.Album
	if err := json.Unmarshal(rec.Body.Bytes(), &album); err != nil {
		t.Fatalf("invalid album body: %v", err)
	}

	// move into the album
	path := "/api/photos/" + itoa(photo.ID)
	rec = env.do(t, http.MethodPatch, path, `{"albumId":`+itoa(album.ID)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH into album -> %d: %s", rec.Code, rec.Body.String())
	}
	refreshed, err := env.photos.GetByID(photo.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.AlbumID == nil || *refreshed.AlbumID != album.ID {
		t.Error("photo not assigned to album")
	}

	// explicit null clears the assignment
	rec = env.do(t, http.MethodPatch, path, `{"albumId":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH null album -> %d", rec.Code)
	}
	refreshed, err = env.photos.GetByID(photo.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.AlbumID != nil {
		t.Error("album assignment not cleared")
	}

	// a body without albumId leaves the assignment alone
	rec = env.do(t, http.MethodPatch, path, `{"albumId":`+itoa(album.ID)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH -> %d", rec.Code)
	}
	rec = env.do(t, http.MethodPatch, path, `{"filename":"renamed.jpg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH filename -> %d", rec.Code)
	}
	refreshed, _ = env.photos.GetByID(photo.ID)
	if refreshed.AlbumID == nil {
		t.Error("absent albumId key cleared the assignment")
	}
	if refreshed.Filename != "renamed.jpg" {
		t.Errorf("filename = %q", refreshed.Filename)
	}

	// nonexistent album is rejected
	rec = env.do(t, http.MethodPatch, path, `{"albumId":99999}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PATCH ghost album -> %d, want 400", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/albums", `{"name":"trip!"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate album slug -> %d, want 409", rec.Code)
	}
}

func TestPhotoDeleteRemovesFiles(t *testing.T) {
	env := newAPIEnv(t)
	photo := env.seedPhoto(t)

	originalPath := filepath.Join(env.storage, photo.Path)
	thumbPath := filepath.Join(env.storage, photo.ThumbnailPath)
	if _, err := os.Stat(originalPath); err != nil {
		t.Fatalf("seed original missing: %v", err)
	}

	rec := env.do(t, http.MethodDelete, "/api/photos/"+itoa(photo.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE -> %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := os.Stat(originalPath); !os.IsNotExist(err) {
		t.Error("original file survived delete")
	}
	if _, err := os.Stat(thumbPath); !os.IsNotExist(err) {
		t.Error("thumbnail survived delete")
	}
	if rec := env.do(t, http.MethodGet, "/api/photos/"+itoa(photo.ID), ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete -> %d, want 404", rec.Code)
	}
}

func TestPhotoGetNotFound(t *testing.T) {
	env := newAPIEnv(t)
	if rec := env.do(t, http.MethodGet, "/api/photos/12345", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET missing photo -> %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/photos/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("GET bad id -> %d, want 400", rec.Code)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
