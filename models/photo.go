package models

// Photo represents a cataloged image in the database using GORM.
// It corresponds to the 'photos' table. The canonical Path is the
// de-duplication key: re-scanning a folder never creates duplicates.
type Photo struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename           string `gorm:"not null" json:"filename"`
	Path               string `gorm:"not null;uniqueIndex:idx_photos_path" json:"path"`
	Width              int    `gorm:"not null;default:0" json:"width"`
	Height             int    `gorm:"not null;default:0" json:"height"`
	ThumbnailPath      string `gorm:"not null;default:''" json:"thumbnail_path"`
	ThumbnailLargePath string `gorm:"not null;default:''" json:"thumbnail_large_path"`
	BlurDataURL        string `gorm:"column:blur_data_url;not null;default:''" json:"blur_data_url"`
	AlbumID            *int64 `gorm:"index:idx_photos_album" json:"album_id"`
	ExifJSON           string `gorm:"column:exif_json;not null;default:'{}'" json:"exif_json"`
	FileSizeBytes      int64  `gorm:"not null;default:0" json:"file_size_bytes"`
	DominantHue        *int   `json:"dominant_hue"` // 0-359, nil when achromatic or unknown
	CreatedAt          int64  `gorm:"not null;index" json:"created_at"` // Unix timestamp

	Album *Album `gorm:"foreignKey:AlbumID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}
