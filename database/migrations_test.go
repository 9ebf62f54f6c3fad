package database

import (
	"path/filepath"
	"testing"

	"github.com/lensloft/gallerybackend/models"
)

func TestInitAppliesAllMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Init(dbPath)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	for _, model := range []interface{}{
		&models.Photo{}, &models.Album{}, &models.Tag{}, &models.PhotoTag{},
		&models.PageView{}, &models.PhotoView{}, &models.PhotoViewLog{},
	} {
		if !db.Migrator().HasTable(model) {
			t.Errorf("missing table for %T", model)
		}
	}
	if !db.Migrator().HasColumn(&models.Photo{}, "file_size_bytes") {
		t.Error("photos.file_size_bytes missing")
	}
	if !db.Migrator().HasColumn(&models.Photo{}, "dominant_hue") {
		t.Error("photos.dominant_hue missing")
	}

	var applied int64
	if err := db.Model(&SchemaMigration{}).Count(&applied).Error; err != nil {
		t.Fatalf("failed to count applied migrations: %v", err)
	}
	if applied != int64(len(migrations)) {
		t.Errorf("applied %d migrations, want %d", applied, len(migrations))
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := Init(dbPath); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	db, err := Init(dbPath)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}

	var applied int64
	if err := db.Model(&SchemaMigration{}).Count(&applied).Error; err != nil {
		t.Fatalf("failed to count applied migrations: %v", err)
	}
	if applied != int64(len(migrations)) {
		t.Errorf("applied %d migrations after rerun, want %d", applied, len(migrations))
	}
}
