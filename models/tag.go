package models

// Tag represents a photo tag. Tags relate to photos many-to-many via
// the photo_tags join table; creating a tag by name is idempotent on
// the derived slug.
type Tag struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Slug      string `gorm:"not null;uniqueIndex:idx_tags_slug" json:"slug"`
	CreatedAt int64  `gorm:"not null" json:"created_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

// PhotoTag is the photo/tag join relation.
type PhotoTag struct {
	PhotoID int64 `gorm:"primaryKey" json:"photo_id"`
	TagID   int64 `gorm:"primaryKey;index:idx_photo_tags_tag" json:"tag_id"`

	Photo Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE" json:"-"`
	Tag   Tag   `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoTag) TableName() string {
	return "photo_tags"
}
