package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
	"github.com/lensloft/gallerybackend/utils"
)

type AlbumHandler struct {
	Albums repository.AlbumRepositoryInterface
	Photos repository.PhotoRepositoryInterface
}

func NewAlbumHandler(albums repository.AlbumRepositoryInterface, photos repository.PhotoRepositoryInterface) *AlbumHandler {
	return &AlbumHandler{Albums: albums, Photos: photos}
}

type createAlbumRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type albumListResponse struct {
	Albums []models.AlbumWithCount `json:"albums"`
}

type albumDetailResponse struct {
	Album  models.Album   `json:"album"`
	Photos []models.Photo `json:"photos"`
}

// List returns all albums with their photo counts, newest first.
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	albums, err := h.Albums.ListAllWithCounts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list albums")
		writeError(w, http.StatusInternalServerError, "Failed to list albums")
		return
	}
	writeJSON(w, http.StatusOK, albumListResponse{Albums: albums})
}

// Create makes a new album. The slug derives from the name; a name
// collapsing to an already-used slug is a conflict.
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAlbumRequest
	if !decodeBody(w, r, &req) {
		return
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Album name yields an empty slug")
		return
	}

	album := models.Album{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   time.Now().Unix(),
	}
	err := h.Albums.Create(&album)
	if errors.Is(err, repository.ErrDuplicateSlug) {
		writeError(w, http.StatusConflict, "An album with this name already exists")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to create album")
		writeError(w, http.StatusInternalServerError, "Failed to create album")
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

// Get resolves an album by slug and returns it with its photos.
func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	album, err := h.Albums.GetBySlug(slug)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to load album")
		writeError(w, http.StatusInternalServerError, "Failed to load album")
		return
	}

	photos, err := h.Photos.List(repository.PhotoListOptions{AlbumID: &album.ID})
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to load album photos")
		writeError(w, http.StatusInternalServerError, "Failed to load album")
		return
	}
	writeJSON(w, http.StatusOK, albumDetailResponse{Album: *album, Photos: photos})
}

type setCoverRequest struct {
	PhotoID int64 `json:"photoId" validate:"required,gt=0"`
}

// SetCover picks the album's cover photo. The photo must exist and
// belong to the album.
func (h *AlbumHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}

	var req setCoverRequest
	if !decodeBody(w, r, &req) {
		return
	}

	photo, err := h.Photos.GetByID(req.PhotoID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Photo does not exist")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("photo_id", req.PhotoID).Msg("Failed to check cover photo")
		writeError(w, http.StatusInternalServerError, "Failed to set cover")
		return
	}
	if photo.AlbumID == nil || *photo.AlbumID != id {
		writeError(w, http.StatusBadRequest, "Photo is not in this album")
		return
	}

	err = h.Albums.SetCover(id, req.PhotoID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("album_id", id).Msg("Failed to set album cover")
		writeError(w, http.StatusInternalServerError, "Failed to set cover")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// Delete removes an album. Its photos stay cataloged, just unfiled.
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}

	err := h.Albums.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("album_id", id).Msg("Failed to delete album")
		writeError(w, http.StatusInternalServerError, "Failed to delete album")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
