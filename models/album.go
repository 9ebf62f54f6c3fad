package models

// Album represents a named photo collection in the database using GORM.
// It corresponds to the 'albums' table.
type Album struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Slug         string `gorm:"not null;uniqueIndex:idx_albums_slug" json:"slug"`
	Description  string `gorm:"not null;default:''" json:"description"`
	CoverPhotoID *int64 `json:"cover_photo_id"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Album) TableName() string {
	return "albums"
}

// AlbumWithCount is an Album plus its derived photo count, as returned
// by album listings.
type AlbumWithCount struct {
	Album
	PhotoCount int64 `json:"photo_count"`
}
