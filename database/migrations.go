package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lensloft/gallerybackend/models"
)

// SchemaMigration records an applied migration in the schema_migrations
// table.
type SchemaMigration struct {
	ID        string `gorm:"primaryKey"`
	AppliedAt int64  `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	ID  string
	Run func(db *gorm.DB) error
}

// migrations is the ordered schema history. Every step checks its own
// precondition, so the whole list is safe to apply repeatedly and on
// databases created before a given step existed.
var migrations = []migration{
	{
		ID: "001_create_base_tables",
		Run: func(db *gorm.DB) error {
			for _, model := range []interface{}{
				&models.Album{},
				&models.Photo{},
				&models.PageView{},
				&models.PhotoView{},
			} {
				if db.Migrator().HasTable(model) {
					continue
				}
				if err := db.Migrator().CreateTable(model); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		ID: "002_add_photo_file_size",
		Run: func(db *gorm.DB) error {
			if db.Migrator().HasColumn(&models.Photo{}, "file_size_bytes") {
				return nil
			}
			return db.Migrator().AddColumn(&models.Photo{}, "FileSizeBytes")
		},
	},
	{
		ID: "003_add_photo_dominant_hue",
		Run: func(db *gorm.DB) error {
			if db.Migrator().HasColumn(&models.Photo{}, "dominant_hue") {
				return nil
			}
			return db.Migrator().AddColumn(&models.Photo{}, "DominantHue")
		},
	},
	{
		ID: "004_create_tag_tables",
		Run: func(db *gorm.DB) error {
			for _, model := range []interface{}{&models.Tag{}, &models.PhotoTag{}} {
				if db.Migrator().HasTable(model) {
					continue
				}
				if err := db.Migrator().CreateTable(model); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		ID: "005_create_photo_view_log",
		Run: func(db *gorm.DB) error {
			if db.Migrator().HasTable(&models.PhotoViewLog{}) {
				return nil
			}
			return db.Migrator().CreateTable(&models.PhotoViewLog{})
		},
	},
}

// Migrate applies all pending migrations in order, recording each one
// in schema_migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int64
		if err := db.Model(&SchemaMigration{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.ID, err)
		}
		if count > 0 {
			continue
		}

		if err := m.Run(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.ID, err)
		}
		record := SchemaMigration{ID: m.ID, AppliedAt: time.Now().Unix()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		log.Info().Str("migration", m.ID).Msg("applied schema migration")
	}
	return nil
}
