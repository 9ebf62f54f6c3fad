package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/utils"
)

type TagRepository struct {
	DB *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

func (r *TagRepository) ListAll() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.DB.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateByName creates a tag, or returns the existing one when the
// derived slug is already taken. Tag identity is the slug, so "Street"
// and "street!" resolve to the same tag.
func (r *TagRepository) CreateByName(name string) (*models.Tag, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("tag name %q yields an empty slug", name)
	}

	var existing models.Tag
	err := r.DB.Where("slug = ?", slug).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up tag slug %s: %w", slug, err)
	}

	tag := models.Tag{
		Name:      strings.TrimSpace(name),
		Slug:      slug,
		CreatedAt: time.Now().Unix(),
	}
	if err := r.DB.Create(&tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag %s: %w", slug, err)
	}
	return &tag, nil
}

func (r *TagRepository) ListByPhoto(photoID int64) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.DB.
		Joins("INNER JOIN photo_tags ON photo_tags.tag_id = tags.id").
		Where("photo_tags.photo_id = ?", photoID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for photo %d: %w", photoID, err)
	}
	return tags, nil
}

// SetPhotoTags replaces a photo's tag assignments wholesale.
func (r *TagRepository) SetPhotoTags(photoID int64, tagIDs []int64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", photoID).Delete(&models.PhotoTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags for photo %d: %w", photoID, err)
		}
		for _, tagID := range tagIDs {
			link := models.PhotoTag{PhotoID: photoID, TagID: tagID}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
			if err != nil {
				return fmt.Errorf("failed to tag photo %d with %d: %w", photoID, tagID, err)
			}
		}
		return nil
	})
}
