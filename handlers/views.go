package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/analytics"
	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

type ViewHandler struct {
	Photos    repository.PhotoRepositoryInterface
	Analytics repository.AnalyticsRepositoryInterface
	Service   *analytics.Service
}

func NewViewHandler(photos repository.PhotoRepositoryInterface, analyticsRepo repository.AnalyticsRepositoryInterface,
	service *analytics.Service) *ViewHandler {
	return &ViewHandler{Photos: photos, Analytics: analyticsRepo, Service: service}
}

type viewersResponse struct {
	Viewers []models.PhotoViewer `json:"viewers"`
}

// Record counts a photo view for the requesting visitor. Repeat views
// from the same visitor do not inflate the count.
func (h *ViewHandler) Record(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}
	if _, err := h.Photos.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to load photo")
		writeError(w, http.StatusInternalServerError, "Failed to record view")
		return
	}

	if err := h.Service.RecordPhotoView(id, ClientIP(r), r.UserAgent()); err != nil {
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to record photo view")
		writeError(w, http.StatusInternalServerError, "Failed to record view")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

// Viewers returns the per-visitor view history for one photo.
func (h *ViewHandler) Viewers(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}
	if _, err := h.Photos.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to load photo")
		writeError(w, http.StatusInternalServerError, "Failed to load viewers")
		return
	}

	viewers, err := h.Analytics.PhotoViewers(id)
	if err != nil {
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to load photo viewers")
		writeError(w, http.StatusInternalServerError, "Failed to load viewers")
		return
	}
	writeJSON(w, http.StatusOK, viewersResponse{Viewers: viewers})
}
