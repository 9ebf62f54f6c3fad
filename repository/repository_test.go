package repository

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/lensloft/gallerybackend/database"
	"github.com/lensloft/gallerybackend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	return db
}

func seedPhoto(t *testing.T, repo *PhotoRepository, path string, albumID *int64, createdAt int64, hue *int) *models.Photo {
	t.Helper()
	photo := &models.Photo{
		Filename:  filepath.Base(path),
		Path:      path,
		Width:     100,
		Height:    100,
		AlbumID:   albumID,
		ExifJSON:  "{}",
		CreatedAt: createdAt,
	}
	photo.DominantHue = hue
	if err := repo.Create(photo); err != nil {
		t.Fatalf("failed to seed photo %s: %v", path, err)
	}
	return photo
}

func seedAlbum(t *testing.T, repo *AlbumRepository, name, slug string) *models.Album {
	t.Helper()
	album := &models.Album{Name: name, Slug: slug, CreatedAt: time.Now().Unix()}
	if err := repo.Create(album); err != nil {
		t.Fatalf("failed to seed album %s: %v", slug, err)
	}
	return album
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
