package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lensloft/gallerybackend/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortViews  = "views"
	SortColor  = "color"
)

// PhotoListOptions narrows and orders a photo listing. A nil AlbumID
// means no album filter; Limit <= 0 means no pagination.
type PhotoListOptions struct {
	AlbumID *int64
	TagSlug string
	Sort    string
	Limit   int
	Offset  int
}

// PhotoUpdates carries the mutable photo fields for a partial update.
// SetAlbum distinguishes "move to album / clear album" from "leave the
// album untouched", which a bare *int64 cannot express.
type PhotoUpdates struct {
	Filename *string
	AlbumID  *int64
	SetAlbum bool
}

type PhotoRepository struct {
	DB *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

// ExistsByPath reports whether a photo with the given relative path is
// already cataloged. Path is the ingestion identity key.
func (r *PhotoRepository) ExistsByPath(path string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Photo{}).Where("path = ?", path).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check photo path %s: %w", path, err)
	}
	return count > 0, nil
}

func (r *PhotoRepository) Create(photo *models.Photo) error {
	if photo.CreatedAt == 0 {
		photo.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(photo).Error; err != nil {
		return fmt.Errorf("failed to create photo %s: %w", photo.Path, err)
	}
	return nil
}

func (r *PhotoRepository) GetByID(id int64) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.First(&photo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo %d: %w", id, err)
	}
	return &photo, nil
}

// List returns photos matching opts in the requested order. The views
// sort counts deduplicated photo views; the color sort walks the hue
// wheel with unknown-hue photos last.
func (r *PhotoRepository) List(opts PhotoListOptions) ([]models.Photo, error) {
	q := r.applyFilters(r.DB.Model(&models.Photo{}), opts)

	switch opts.Sort {
	case SortOldest:
		q = q.Order("photos.created_at ASC, photos.id ASC")
	case SortViews:
		q = q.Order("(SELECT COUNT(*) FROM photo_views WHERE photo_views.photo_id = photos.id) DESC, photos.created_at DESC, photos.id DESC")
	case SortColor:
		q = q.Order("photos.dominant_hue IS NULL, photos.dominant_hue ASC, photos.id ASC")
	default:
		q = q.Order("photos.created_at DESC, photos.id DESC")
	}

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
	}

	var photos []models.Photo
	if err := q.Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// Count returns the total number of photos matching the filters in
// opts, ignoring pagination.
func (r *PhotoRepository) Count(opts PhotoListOptions) (int64, error) {
	var count int64
	q := r.applyFilters(r.DB.Model(&models.Photo{}), opts)
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

func (r *PhotoRepository) applyFilters(q *gorm.DB, opts PhotoListOptions) *gorm.DB {
	if opts.AlbumID != nil {
		q = q.Where("photos.album_id = ?", *opts.AlbumID)
	}
	if opts.TagSlug != "" {
		q = q.Joins("INNER JOIN photo_tags ON photo_tags.photo_id = photos.id").
			Joins("INNER JOIN tags ON tags.id = photo_tags.tag_id").
			Where("tags.slug = ?", opts.TagSlug)
	}
	return q
}

// Update applies a partial update and returns the fresh row.
func (r *PhotoRepository) Update(id int64, updates PhotoUpdates) (*models.Photo, error) {
	fields := map[string]interface{}{}
	if updates.Filename != nil {
		fields["filename"] = *updates.Filename
	}
	if updates.SetAlbum {
		fields["album_id"] = updates.AlbumID
	}
	if len(fields) == 0 {
		return r.GetByID(id)
	}

	result := r.DB.Model(&models.Photo{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update photo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PhotoRepository) Delete(id int64) error {
	result := r.DB.Delete(&models.Photo{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete photo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) ListMissingFileSize() ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("file_size_bytes IS NULL OR file_size_bytes = 0").Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos missing file size: %w", err)
	}
	return photos, nil
}

func (r *PhotoRepository) UpdateFileSize(id int64, sizeBytes int64) error {
	err := r.DB.Model(&models.Photo{}).Where("id = ?", id).
		Update("file_size_bytes", sizeBytes).Error
	if err != nil {
		return fmt.Errorf("failed to update file size for photo %d: %w", id, err)
	}
	return nil
}

func (r *PhotoRepository) ListMissingExif() ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("exif_json IS NULL OR exif_json = '' OR exif_json = '{}'").Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos missing exif: %w", err)
	}
	return photos, nil
}

func (r *PhotoRepository) UpdateExifJSON(id int64, exifJSON string) error {
	err := r.DB.Model(&models.Photo{}).Where("id = ?", id).
		Update("exif_json", exifJSON).Error
	if err != nil {
		return fmt.Errorf("failed to update exif for photo %d: %w", id, err)
	}
	return nil
}

func (r *PhotoRepository) ListMissingHue() ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("dominant_hue IS NULL").Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos missing hue: %w", err)
	}
	return photos, nil
}

// UpdateDominantHue writes the computed hue, nil included: a grayscale
// photo legitimately has no hue and must not be re-picked by the next
// backfill selection alone.
func (r *PhotoRepository) UpdateDominantHue(id int64, hue *int) error {
	err := r.DB.Model(&models.Photo{}).Where("id = ?", id).
		Update("dominant_hue", hue).Error
	if err != nil {
		return fmt.Errorf("failed to update dominant hue for photo %d: %w", id, err)
	}
	return nil
}
