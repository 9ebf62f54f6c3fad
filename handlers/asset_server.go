package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AssetHandler serves stored originals and thumbnails with immutable
// cache headers. Stored files never change in place, so a hit on a
// matching ETag is always safe to 304.
type AssetHandler struct {
	StoragePath string
}

func NewAssetHandler(storagePath string) *AssetHandler {
	return &AssetHandler{StoragePath: storagePath}
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleaned := filepath.Clean("/" + r.URL.Path)
	fullPath := filepath.Join(h.StoragePath, cleaned)

	// Clean plus the join keeps traversal inside the storage root,
	// but verify anyway.
	if !strings.HasPrefix(fullPath, filepath.Clean(h.StoragePath)+string(os.PathSeparator)) {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	etag := fmt.Sprintf(`"%s-%s"`,
		strconv.FormatInt(info.ModTime().Unix(), 36),
		strconv.FormatInt(info.Size(), 36))

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=2592000, immutable")
	if contentType := mime.TypeByExtension(filepath.Ext(fullPath)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	http.ServeFile(w, r, fullPath)
}
