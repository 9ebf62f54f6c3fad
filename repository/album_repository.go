package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lensloft/gallerybackend/models"
)

// ErrDuplicateSlug is returned when an album create collides with an
// existing slug.
var ErrDuplicateSlug = errors.New("slug already exists")

type AlbumRepository struct {
	DB *gorm.DB
}

func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{DB: db}
}

func (r *AlbumRepository) Create(album *models.Album) error {
	if album.CreatedAt == 0 {
		album.CreatedAt = time.Now().Unix()
	}

	var existing int64
	if err := r.DB.Model(&models.Album{}).Where("slug = ?", album.Slug).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check album slug %s: %w", album.Slug, err)
	}
	if existing > 0 {
		return ErrDuplicateSlug
	}

	if err := r.DB.Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album %s: %w", album.Slug, err)
	}
	return nil
}

// ListAllWithCounts returns every album, newest first, each annotated
// with its photo count.
func (r *AlbumRepository) ListAllWithCounts() ([]models.AlbumWithCount, error) {
	var albums []models.Album
	if err := r.DB.Order("created_at DESC, id DESC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}

	type albumCount struct {
		AlbumID int64
		Count   int64
	}
	var counts []albumCount
	err := r.DB.Model(&models.Photo{}).
		Select("album_id AS album_id, COUNT(*) AS count").
		Where("album_id IS NOT NULL").
		Group("album_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count album photos: %w", err)
	}

	countByID := make(map[int64]int64, len(counts))
	for _, c := range counts {
		countByID[c.AlbumID] = c.Count
	}

	result := make([]models.AlbumWithCount, 0, len(albums))
	for _, a := range albums {
		result = append(result, models.AlbumWithCount{Album: a, PhotoCount: countByID[a.ID]})
	}
	return result, nil
}

func (r *AlbumRepository) GetByID(id int64) (*models.Album, error) {
	var album models.Album
	err := r.DB.First(&album, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album %d: %w", id, err)
	}
	return &album, nil
}

func (r *AlbumRepository) GetBySlug(slug string) (*models.Album, error) {
	var album models.Album
	err := r.DB.Where("slug = ?", slug).First(&album).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album by slug %s: %w", slug, err)
	}
	return &album, nil
}

// SetCover points the album at one of its photos for grid display.
func (r *AlbumRepository) SetCover(albumID, photoID int64) error {
	result := r.DB.Model(&models.Album{}).Where("id = ?", albumID).
		Update("cover_photo_id", photoID)
	if result.Error != nil {
		return fmt.Errorf("failed to set cover for album %d: %w", albumID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the album; member photos keep their rows and drop
// back to unfiled via the set-null foreign key.
func (r *AlbumRepository) Delete(id int64) error {
	result := r.DB.Delete(&models.Album{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete album %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
