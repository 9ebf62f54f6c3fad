package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/ingest"
	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

type PhotoHandler struct {
	Photos      repository.PhotoRepositoryInterface
	Albums      repository.AlbumRepositoryInterface
	Tags        repository.TagRepositoryInterface
	Analytics   repository.AnalyticsRepositoryInterface
	Ingestor    *ingest.Ingestor
	StoragePath string
}

func NewPhotoHandler(photos repository.PhotoRepositoryInterface, albums repository.AlbumRepositoryInterface,
	tags repository.TagRepositoryInterface, analytics repository.AnalyticsRepositoryInterface,
	ingestor *ingest.Ingestor, storagePath string) *PhotoHandler {
	return &PhotoHandler{
		Photos:      photos,
		Albums:      albums,
		Tags:        tags,
		Analytics:   analytics,
		Ingestor:    ingestor,
		StoragePath: storagePath,
	}
}

// photoResponse is a photo annotated with its deduplicated view count
// and, on detail requests, its tags.
type photoResponse struct {
	models.Photo
	Views int64        `json:"views"`
	Tags  []models.Tag `json:"tags,omitempty"`
}

type photoListResponse struct {
	Photos []photoResponse `json:"photos"`
	Total  int64           `json:"total"`
}

// List returns cataloged photos, filterable by album and tag and
// orderable by age, popularity or color.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := repository.PhotoListOptions{
		TagSlug: r.URL.Query().Get("tag"),
		Sort:    r.URL.Query().Get("sort"),
	}

	if albumParam := r.URL.Query().Get("albumId"); albumParam != "" {
		albumID, err := strconv.ParseInt(albumParam, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid albumId")
			return
		}
		opts.AlbumID = &albumID
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		opts.Limit = limit
	}
	if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "Invalid offset")
			return
		}
		opts.Offset = offset
	}

	photos, err := h.Photos.List(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list photos")
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}
	total, err := h.Photos.Count(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count photos")
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}
	viewCounts, err := h.Analytics.PhotoViewCounts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load view counts")
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}

	items := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		items = append(items, photoResponse{Photo: p, Views: viewCounts[p.ID]})
	}
	writeJSON(w, http.StatusOK, photoListResponse{Photos: items, Total: total})
}

// Get returns one photo with views and tags.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.photoFromURL(w, r)
	if !ok {
		return
	}

	tags, err := h.Tags.ListByPhoto(photo.ID)
	if err != nil {
		log.Error().Err(err).Int64("photo_id", photo.ID).Msg("Failed to load photo tags")
		writeError(w, http.StatusInternalServerError, "Failed to load photo")
		return
	}
	viewCounts, err := h.Analytics.PhotoViewCounts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load view counts")
		writeError(w, http.StatusInternalServerError, "Failed to load photo")
		return
	}

	writeJSON(w, http.StatusOK, photoResponse{Photo: *photo, Views: viewCounts[photo.ID], Tags: tags})
}

type scanResponse struct {
	Added          int `json:"added"`
	Skipped        int `json:"skipped"`
	Backfilled     int `json:"backfilled"`
	ExifBackfilled int `json:"exifBackfilled"`
	HueBackfilled  int `json:"hueBackfilled"`
}

// Scan ingests the inbox directory, then runs the catalog backfills
// for rows predating size, EXIF or hue extraction.
func (h *PhotoHandler) Scan(w http.ResponseWriter, r *http.Request) {
	result, err := h.Ingestor.Scan()
	if err != nil {
		log.Error().Err(err).Msg("Inbox scan failed")
		writeError(w, http.StatusInternalServerError, "Scan failed")
		return
	}

	resp := scanResponse{Added: result.Added, Skipped: result.Skipped}
	if resp.Backfilled, err = h.Ingestor.BackfillFileSizes(); err != nil {
		log.Error().Err(err).Msg("File size backfill failed")
		writeError(w, http.StatusInternalServerError, "Scan failed")
		return
	}
	if resp.ExifBackfilled, err = h.Ingestor.BackfillExif(); err != nil {
		log.Error().Err(err).Msg("EXIF backfill failed")
		writeError(w, http.StatusInternalServerError, "Scan failed")
		return
	}
	if resp.HueBackfilled, err = h.Ingestor.BackfillHues(); err != nil {
		log.Error().Err(err).Msg("Hue backfill failed")
		writeError(w, http.StatusInternalServerError, "Scan failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// updatePhotoRequest distinguishes three albumId shapes: key absent
// (leave alone), explicit null (remove from album), number (move).
type updatePhotoRequest struct {
	Filename *string         `json:"filename"`
	AlbumID  json.RawMessage `json:"albumId"`
}

// Update applies a partial photo update.
func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}

	var req updatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := repository.PhotoUpdates{Filename: req.Filename}
	if len(req.AlbumID) > 0 {
		updates.SetAlbum = true
		if !bytes.Equal(bytes.TrimSpace(req.AlbumID), []byte("null")) {
			var albumID int64
			if err := json.Unmarshal(req.AlbumID, &albumID); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid albumId")
				return
			}
			if _, err := h.Albums.GetByID(albumID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					writeError(w, http.StatusBadRequest, "Album does not exist")
					return
				}
				log.Error().Err(err).Int64("album_id", albumID).Msg("Failed to check album")
				writeError(w, http.StatusInternalServerError, "Failed to update photo")
				return
			}
			updates.AlbumID = &albumID
		}
	}

	photo, err := h.Photos.Update(id, updates)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Photo not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to update photo")
		writeError(w, http.StatusInternalServerError, "Failed to update photo")
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// Delete removes the photo's stored files and its catalog row. View
// records go with the row via the cascading foreign keys.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.photoFromURL(w, r)
	if !ok {
		return
	}

	for _, publicPath := range []string{photo.Path, photo.ThumbnailPath, photo.ThumbnailLargePath} {
		if publicPath == "" {
			continue
		}
		if err := os.Remove(filepath.Join(h.StoragePath, publicPath)); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", publicPath).Msg("Failed to remove photo file")
		}
	}

	if err := h.Photos.Delete(photo.ID); err != nil {
		log.Error().Err(err).Int64("photo_id", photo.ID).Msg("Failed to delete photo")
		writeError(w, http.StatusInternalServerError, "Failed to delete photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *PhotoHandler) photoFromURL(w http.ResponseWriter, r *http.Request) (*models.Photo, bool) {
	id, ok := idFromURL(w, r)
	if !ok {
		return nil, false
	}
	photo, err := h.Photos.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Photo not found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to load photo")
		writeError(w, http.StatusInternalServerError, "Failed to load photo")
		return nil, false
	}
	return photo, true
}

func idFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}
