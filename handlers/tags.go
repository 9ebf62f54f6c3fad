package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

type TagHandler struct {
	Tags   repository.TagRepositoryInterface
	Photos repository.PhotoRepositoryInterface
}

func NewTagHandler(tags repository.TagRepositoryInterface, photos repository.PhotoRepositoryInterface) *TagHandler {
	return &TagHandler{Tags: tags, Photos: photos}
}

type createTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type tagListResponse struct {
	Tags []models.Tag `json:"tags"`
}

// List returns every tag, alphabetically.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Tags.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tags")
		writeError(w, http.StatusInternalServerError, "Failed to list tags")
		return
	}
	writeJSON(w, http.StatusOK, tagListResponse{Tags: tags})
}

// Create makes a tag, or returns the existing one when the name slugs
// to a tag that already exists.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tag, err := h.Tags.CreateByName(req.Name)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create tag")
		writeError(w, http.StatusBadRequest, "Failed to create tag")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

type setPhotoTagsRequest struct {
	TagIDs []int64 `json:"tagIds" validate:"required"`
}

// SetPhotoTags replaces a photo's tag set.
func (h *TagHandler) SetPhotoTags(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, http.StatusInternalServerError, "Failed to set tags")
		return
	}

	var req setPhotoTagsRequest
	if !decodeTagIDs(w, r, &req) {
		return
	}

	if err := h.Tags.SetPhotoTags(id, req.TagIDs); err != nil {
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to set photo tags")
		writeError(w, http.StatusInternalServerError, "Failed to set tags")
		return
	}

	tags, err := h.Tags.ListByPhoto(id)
	if err != nil {
		log.Error().Err(err).Int64("photo_id", id).Msg("Failed to reload photo tags")
		writeError(w, http.StatusInternalServerError, "Failed to set tags")
		return
	}
	writeJSON(w, http.StatusOK, tagListResponse{Tags: tags})
}

// decodeTagIDs accepts an empty tagIds array, which the required
// validator would otherwise reject; clearing all tags is legitimate.
func decodeTagIDs(w http.ResponseWriter, r *http.Request, req *setPhotoTagsRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if req.TagIDs == nil {
		writeError(w, http.StatusBadRequest, "tagIds is required")
		return false
	}
	return true
}
