package models

// PageView is one tracked page load. Rows are append-only and carry a
// pseudonymous visitor hash, never a raw IP.
type PageView struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Path      string `gorm:"not null;index:idx_pv_path" json:"path"`
	Referrer  string `gorm:"not null;default:''" json:"referrer"`
	UserAgent string `gorm:"not null;default:''" json:"user_agent"`
	IPHash    string `gorm:"column:ip_hash;not null;default:''" json:"ip_hash"`
	Country   string `gorm:"not null;default:''" json:"country"`
	Browser   string `gorm:"not null;default:''" json:"browser"`
	Device    string `gorm:"not null;default:''" json:"device"`
	CreatedAt int64  `gorm:"not null;index:idx_pv_created" json:"created_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (PageView) TableName() string {
	return "page_views"
}

// PhotoView is the deduplicated per-visitor view counter: the unique
// (photo_id, ip_hash) pair makes a second view from the same visitor a
// no-op.
type PhotoView struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PhotoID   int64  `gorm:"not null;uniqueIndex:idx_photo_views_dedup;index:idx_photo_views_photo" json:"photo_id"`
	IPHash    string `gorm:"column:ip_hash;not null;uniqueIndex:idx_photo_views_dedup" json:"ip_hash"`
	CreatedAt int64  `gorm:"not null" json:"created_at"` // Unix timestamp

	Photo Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoView) TableName() string {
	return "photo_views"
}

// PhotoViewLog is the full, non-deduplicated photo view event log used
// for per-visitor audience breakdowns.
type PhotoViewLog struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PhotoID   int64  `gorm:"not null;index:idx_pvl_photo" json:"photo_id"`
	IPHash    string `gorm:"column:ip_hash;not null" json:"ip_hash"`
	Browser   string `gorm:"not null;default:''" json:"browser"`
	Device    string `gorm:"not null;default:''" json:"device"`
	Country   string `gorm:"not null;default:''" json:"country"`
	CreatedAt int64  `gorm:"not null;index:idx_pvl_created" json:"created_at"` // Unix timestamp

	Photo Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoViewLog) TableName() string {
	return "photo_view_log"
}

// PhotoViewer is a grouped audience row for one photo, keyed by visitor
// hash. It is derived from photo_view_log and has no table of its own.
type PhotoViewer struct {
	IPHash     string `json:"ip_hash"`
	Browser    string `json:"browser"`
	Device     string `json:"device"`
	Country    string `json:"country"`
	TotalViews int64  `json:"total_views"`
	FirstSeen  int64  `json:"first_seen"`
	LastSeen   int64  `json:"last_seen"`
}
