package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

const maxUploadBytes = 256 << 20

type uploadResponse struct {
	Photos []models.Photo `json:"photos"`
	Count  int            `json:"count"`
}

// Upload ingests one or more images from a multipart form. Files that
// fail to process are skipped; the response reports what made it in.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	var albumID *int64
	if albumParam := r.FormValue("albumId"); albumParam != "" {
		parsed, err := strconv.ParseInt(albumParam, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid albumId")
			return
		}
		if _, err := h.Albums.GetByID(parsed); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "Album does not exist")
				return
			}
			log.Error().Err(err).Int64("album_id", parsed).Msg("Failed to check album")
			writeError(w, http.StatusInternalServerError, "Upload failed")
			return
		}
		albumID = &parsed
	}

	uploaded := make([]models.Photo, 0, len(files))
	for i, header := range files {
		file, err := header.Open()
		if err != nil {
			log.Warn().Err(err).Str("file", header.Filename).Msg("Failed to open upload part")
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			log.Warn().Err(err).Str("file", header.Filename).Msg("Failed to read upload part")
			continue
		}

		photo, err := h.Ingestor.IngestUpload(data, header.Filename, i, albumID)
		if err != nil {
			log.Warn().Err(err).Str("file", header.Filename).Msg("Skipping unprocessable upload")
			continue
		}
		uploaded = append(uploaded, *photo)
	}

	if len(uploaded) == 0 {
		writeError(w, http.StatusBadRequest, "No uploadable images in request")
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Photos: uploaded, Count: len(uploaded)})
}
