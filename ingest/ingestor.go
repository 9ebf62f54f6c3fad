package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/disintegration/imaging"
	"github.com/facette/natsort"
	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/config"
	"github.com/lensloft/gallerybackend/media"
	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ScanResult summarizes one pass over the inbox directory.
type ScanResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Ingestor moves images from the inbox (or an upload) into managed
// storage, derives their renditions and metadata, and catalogs them.
type Ingestor struct {
	Photos      repository.PhotoRepositoryInterface
	Processor   *media.Processor
	ScanDir     string
	StoragePath string
	PhotosDir   string
}

func NewIngestor(photos repository.PhotoRepositoryInterface, processor *media.Processor, scanDir, storagePath, photosDir string) *Ingestor {
	return &Ingestor{
		Photos:      photos,
		Processor:   processor,
		ScanDir:     scanDir,
		StoragePath: storagePath,
		PhotosDir:   photosDir,
	}
}

// inboxFile pairs a discovered image's full source path with its base
// name; the base name drives ordering and the stored filename.
type inboxFile struct {
	path string
	name string
}

// Scan walks the inbox recursively in natural filename order and
// ingests every supported image not already cataloged. A file that
// fails to process is logged and skipped; one bad image never aborts
// the batch.
func (ing *Ingestor) Scan() (*ScanResult, error) {
	var files []inboxFile
	err := filepath.WalkDir(ing.ScanDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && media.IsRasterImage(d.Name()) {
			files = append(files, inboxFile{path: path, name: d.Name()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk scan directory %s: %w", ing.ScanDir, err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return natsort.Compare(files[i].name, files[j].name)
	})

	result := &ScanResult{}
	for _, file := range files {
		exists, err := ing.Photos.ExistsByPath(publicPhotoPath(file.name))
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		if _, err := ing.ingestFile(file.path, file.name, nil); err != nil {
			log.Warn().Err(err).Str("file", file.path).Msg("Skipping unprocessable image")
			result.Skipped++
			continue
		}
		result.Added++
	}

	log.Info().Int("added", result.Added).Int("skipped", result.Skipped).Msg("Inbox scan complete")
	return result, nil
}

// IngestUpload catalogs one uploaded image under a collision-safe
// generated filename.
func (ing *Ingestor) IngestUpload(data []byte, originalName string, ordinal int, albumID *int64) (*models.Photo, error) {
	if !media.IsRasterImage(originalName) {
		return nil, fmt.Errorf("unsupported image type: %s", originalName)
	}

	filename := SafeFilename(originalName, ordinal)
	destination := filepath.Join(ing.PhotosDir, filename)
	if err := os.MkdirAll(ing.PhotosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}
	if err := os.WriteFile(destination, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to store upload %s: %w", filename, err)
	}

	photo, err := ing.catalog(data, filename, albumID)
	if err != nil {
		os.Remove(destination)
		return nil, err
	}
	return photo, nil
}

// ingestFile copies a scanned inbox file into managed storage and
// catalogs it. The inbox copy is left in place.
func (ing *Ingestor) ingestFile(sourcePath, filename string, albumID *int64) (*models.Photo, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}

	if err := os.MkdirAll(ing.PhotosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}
	destination := filepath.Join(ing.PhotosDir, filename)
	if err := os.WriteFile(destination, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to copy %s into storage: %w", filename, err)
	}

	photo, err := ing.catalog(data, filename, albumID)
	if err != nil {
		os.Remove(destination)
		return nil, err
	}
	return photo, nil
}

// catalog derives renditions and metadata from the stored bytes and
// inserts the photo row.
func (ing *Ingestor) catalog(data []byte, filename string, albumID *int64) (*models.Photo, error) {
	processed, err := ing.Processor.Process(data, filename)
	if err != nil {
		return nil, err
	}

	exifData := media.ExtractExif(bytes.NewReader(data))
	exifJSON, err := json.Marshal(exifData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode exif for %s: %w", filename, err)
	}

	photo := &models.Photo{
		Filename:           filename,
		Path:               publicPhotoPath(filename),
		Width:              processed.Width,
		Height:             processed.Height,
		ThumbnailPath:      publicThumbnailPath(processed.ThumbnailFilename),
		ThumbnailLargePath: publicThumbnailPath(processed.ThumbnailLargeFilename),
		BlurDataURL:        processed.BlurDataURL,
		AlbumID:            albumID,
		ExifJSON:           string(exifJSON),
		FileSizeBytes:      int64(len(data)),
		DominantHue:        processed.DominantHue,
		CreatedAt:          time.Now().Unix(),
	}
	if err := ing.Photos.Create(photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// BackfillFileSizes fills in file_size_bytes for photos cataloged
// before sizes were tracked. Returns how many rows were updated.
func (ing *Ingestor) BackfillFileSizes() (int, error) {
	photos, err := ing.Photos.ListMissingFileSize()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, photo := range photos {
		info, err := os.Stat(ing.absolutePath(photo.Path))
		if err != nil {
			log.Warn().Err(err).Str("path", photo.Path).Msg("Cannot stat photo for size backfill")
			continue
		}
		if err := ing.Photos.UpdateFileSize(photo.ID, info.Size()); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// BackfillExif re-extracts capture metadata for photos whose exif_json
// is still empty. Photos without any EXIF stay as they are.
func (ing *Ingestor) BackfillExif() (int, error) {
	photos, err := ing.Photos.ListMissingExif()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, photo := range photos {
		exifData := media.ExtractExifFile(ing.absolutePath(photo.Path))
		if exifData.IsEmpty() {
			continue
		}
		exifJSON, err := json.Marshal(exifData)
		if err != nil {
			continue
		}
		if err := ing.Photos.UpdateExifJSON(photo.ID, string(exifJSON)); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// BackfillHues computes the dominant hue for photos that predate hue
// extraction. Null results (grayscale images, missing files) are
// written back as null rather than skipped.
func (ing *Ingestor) BackfillHues() (int, error) {
	photos, err := ing.Photos.ListMissingHue()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, photo := range photos {
		var hue *int
		if img, err := imaging.Open(ing.absolutePath(photo.Path)); err == nil {
			hue = media.DominantHue(img)
		} else {
			log.Warn().Err(err).Str("path", photo.Path).Msg("Cannot open photo for hue backfill")
		}
		if err := ing.Photos.UpdateDominantHue(photo.ID, hue); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (ing *Ingestor) absolutePath(publicPath string) string {
	return filepath.Join(ing.StoragePath, publicPath)
}

// SafeFilename generates a collision-free stored filename for an
// upload: millisecond timestamp, batch ordinal, then the original name
// stripped to a safe character set.
func SafeFilename(originalName string, ordinal int) string {
	base := unsafeFilenameChars.ReplaceAllString(filepath.Base(originalName), "_")
	return fmt.Sprintf("%d_%d_%s", time.Now().UnixMilli(), ordinal, base)
}

// Public paths are built from the fixed storage subdirectory names so
// stored rows, the on-disk layout and the asset routes always agree.
func publicPhotoPath(filename string) string {
	return "/" + config.PhotosSubDir + "/" + filename
}

func publicThumbnailPath(filename string) string {
	return "/" + config.ThumbnailsSubDir + "/" + filename
}
