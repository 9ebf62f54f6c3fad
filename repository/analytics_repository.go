package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lensloft/gallerybackend/models"
)

// builder configured for SQLite's ? placeholders
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// columns allowed as a breakdown dimension; anything else is a caller
// bug, not user input
var validBreakdownColumns = map[string]bool{
	"path":     true,
	"referrer": true,
	"browser":  true,
	"device":   true,
	"country":  true,
}

// BreakdownItem is one row of a top-N aggregation (top pages, top
// browsers, ...).
type BreakdownItem struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DailyViews is the page-view count for one UTC calendar day.
type DailyViews struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// TopViewedPhoto pairs a photo with its deduplicated view count for
// the dashboard ranking.
type TopViewedPhoto struct {
	PhotoID       int64  `json:"photoId"`
	Filename      string `json:"filename"`
	ThumbnailPath string `json:"thumbnailPath"`
	Views         int64  `json:"views"`
}

// AnalyticsRepository records views through GORM and aggregates them
// with hand-built SQL over the underlying connection.
type AnalyticsRepository struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

func NewAnalyticsRepository(db *gorm.DB) (*AnalyticsRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB for analytics: %w", err)
	}
	return &AnalyticsRepository{DB: db, sqlDB: sqlDB}, nil
}

func (r *AnalyticsRepository) RecordPageView(pv *models.PageView) error {
	if pv.CreatedAt == 0 {
		pv.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(pv).Error; err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}
	return nil
}

// RecordPhotoView inserts a (photo, visitor) view, silently keeping
// the first one on repeat views from the same visitor.
func (r *AnalyticsRepository) RecordPhotoView(photoID int64, ipHash string) error {
	view := models.PhotoView{
		PhotoID:   photoID,
		IPHash:    ipHash,
		CreatedAt: time.Now().Unix(),
	}
	err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error
	if err != nil {
		return fmt.Errorf("failed to record photo view %d: %w", photoID, err)
	}
	return nil
}

// LogPhotoView appends to the undeduplicated per-photo audit trail.
func (r *AnalyticsRepository) LogPhotoView(entry *models.PhotoViewLog) error {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log photo view %d: %w", entry.PhotoID, err)
	}
	return nil
}

// PhotoViewCounts returns deduplicated view counts keyed by photo ID.
func (r *AnalyticsRepository) PhotoViewCounts() (map[int64]int64, error) {
	query, args, err := sqlite.
		Select("photo_id", "COUNT(*)").
		From("photo_views").
		GroupBy("photo_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build photo view count query: %w", err)
	}

	rows, err := r.sqlDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photo view counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var photoID, count int64
		if err := rows.Scan(&photoID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan photo view count: %w", err)
		}
		counts[photoID] = count
	}
	return counts, rows.Err()
}

// TopViewedPhotos ranks photos by deduplicated views, most viewed
// first.
func (r *AnalyticsRepository) TopViewedPhotos(limit uint64) ([]TopViewedPhoto, error) {
	query, args, err := sqlite.
		Select("p.id", "p.filename", "p.thumbnail_path", "COUNT(v.id) AS views").
		From("photo_views v").
		Join("photos p ON p.id = v.photo_id").
		GroupBy("p.id").
		OrderBy("views DESC", "p.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top photos query: %w", err)
	}

	rows, err := r.sqlDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top photos: %w", err)
	}
	defer rows.Close()

	var top []TopViewedPhoto
	for rows.Next() {
		var item TopViewedPhoto
		if err := rows.Scan(&item.PhotoID, &item.Filename, &item.ThumbnailPath, &item.Views); err != nil {
			return nil, fmt.Errorf("failed to scan top photo: %w", err)
		}
		top = append(top, item)
	}
	return top, rows.Err()
}

// PhotoViewers aggregates the audit trail per visitor, most recently
// seen first. Browser, device and country come from an arbitrary log
// row of each visitor; they are stable per visitor in practice.
func (r *AnalyticsRepository) PhotoViewers(photoID int64) ([]models.PhotoViewer, error) {
	query, args, err := sqlite.
		Select("ip_hash", "browser", "device", "country",
			"COUNT(*) AS total_views", "MIN(created_at) AS first_seen", "MAX(created_at) AS last_seen").
		From("photo_view_log").
		Where(sq.Eq{"photo_id": photoID}).
		GroupBy("ip_hash").
		OrderBy("last_seen DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build photo viewers query: %w", err)
	}

	rows, err := r.sqlDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photo viewers: %w", err)
	}
	defer rows.Close()

	var viewers []models.PhotoViewer
	for rows.Next() {
		var v models.PhotoViewer
		err := rows.Scan(&v.IPHash, &v.Browser, &v.Device, &v.Country,
			&v.TotalViews, &v.FirstSeen, &v.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo viewer: %w", err)
		}
		viewers = append(viewers, v)
	}
	return viewers, rows.Err()
}

// CountPageViews counts page views in the inclusive [since, until]
// window.
func (r *AnalyticsRepository) CountPageViews(since, until int64) (int64, error) {
	return r.countPageViews(sq.And{
		sq.GtOrEq{"created_at": since},
		sq.LtOrEq{"created_at": until},
	})
}

// CountUniqueVisitors counts distinct visitor hashes in the window.
func (r *AnalyticsRepository) CountUniqueVisitors(since, until int64) (int64, error) {
	query, args, err := sqlite.
		Select("COUNT(DISTINCT ip_hash)").
		From("page_views").
		Where(sq.And{
			sq.GtOrEq{"created_at": since},
			sq.LtOrEq{"created_at": until},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unique visitors query: %w", err)
	}

	var count int64
	if err := r.sqlDB.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}
	return count, nil
}

// CountPageViewsSince counts page views from since to now, for the
// fixed today / 7-day / 30-day summary windows.
func (r *AnalyticsRepository) CountPageViewsSince(since int64) (int64, error) {
	return r.countPageViews(sq.GtOrEq{"created_at": since})
}

func (r *AnalyticsRepository) countPageViews(where sq.Sqlizer) (int64, error) {
	query, args, err := sqlite.
		Select("COUNT(*)").
		From("page_views").
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build page view count query: %w", err)
	}

	var count int64
	if err := r.sqlDB.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count page views: %w", err)
	}
	return count, nil
}

// TopBreakdown returns the ten most frequent values of one page-view
// column within the window. excludeEmpty drops rows where the column
// was never populated (unknown country, empty referrer).
func (r *AnalyticsRepository) TopBreakdown(column string, since, until int64, excludeEmpty bool) ([]BreakdownItem, error) {
	if !validBreakdownColumns[column] {
		return nil, fmt.Errorf("invalid breakdown column: %s", column)
	}

	builder := sqlite.
		Select(column, "COUNT(*) AS count").
		From("page_views").
		Where(sq.And{
			sq.GtOrEq{"created_at": since},
			sq.LtOrEq{"created_at": until},
		}).
		GroupBy(column).
		OrderBy("count DESC").
		Limit(10)
	if excludeEmpty {
		builder = builder.Where(sq.NotEq{column: ""})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s breakdown query: %w", column, err)
	}

	rows, err := r.sqlDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s breakdown: %w", column, err)
	}
	defer rows.Close()

	var items []BreakdownItem
	for rows.Next() {
		var item BreakdownItem
		if err := rows.Scan(&item.Name, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s breakdown: %w", column, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ViewsByDay buckets page views per UTC calendar day across the
// window, oldest day first. Days with no views are absent.
func (r *AnalyticsRepository) ViewsByDay(since, until int64) ([]DailyViews, error) {
	query, args, err := sqlite.
		Select("date(created_at, 'unixepoch') AS day", "COUNT(*) AS views").
		From("page_views").
		Where(sq.And{
			sq.GtOrEq{"created_at": since},
			sq.LtOrEq{"created_at": until},
		}).
		GroupBy("day").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build daily views query: %w", err)
	}

	rows, err := r.sqlDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily views: %w", err)
	}
	defer rows.Close()

	var days []DailyViews
	for rows.Next() {
		var d DailyViews
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, fmt.Errorf("failed to scan daily views: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
