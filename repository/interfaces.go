package repository

import (
	"github.com/lensloft/gallerybackend/models"
)

// PhotoRepositoryInterface defines the methods for photo data operations
type PhotoRepositoryInterface interface {
	ExistsByPath(path string) (bool, error)
	Create(photo *models.Photo) error
	GetByID(id int64) (*models.Photo, error)
	List(opts PhotoListOptions) ([]models.Photo, error)
	Count(opts PhotoListOptions) (int64, error)
	Update(id int64, updates PhotoUpdates) (*models.Photo, error)
	Delete(id int64) error

	// backfill support
	ListMissingFileSize() ([]models.Photo, error)
	UpdateFileSize(id int64, sizeBytes int64) error
	ListMissingExif() ([]models.Photo, error)
	UpdateExifJSON(id int64, exifJSON string) error
	ListMissingHue() ([]models.Photo, error)
	UpdateDominantHue(id int64, hue *int) error
}

// AlbumRepositoryInterface defines the methods for album data operations
type AlbumRepositoryInterface interface {
	Create(album *models.Album) error
	ListAllWithCounts() ([]models.AlbumWithCount, error)
	GetByID(id int64) (*models.Album, error)
	GetBySlug(slug string) (*models.Album, error)
	SetCover(albumID, photoID int64) error
	Delete(id int64) error
}

// TagRepositoryInterface defines the methods for tag data operations
type TagRepositoryInterface interface {
	ListAll() ([]models.Tag, error)
	CreateByName(name string) (*models.Tag, error)
	ListByPhoto(photoID int64) ([]models.Tag, error)
	SetPhotoTags(photoID int64, tagIDs []int64) error
}

// AnalyticsRepositoryInterface defines the methods for view recording
// and aggregation
type AnalyticsRepositoryInterface interface {
	RecordPageView(pv *models.PageView) error
	RecordPhotoView(photoID int64, ipHash string) error
	LogPhotoView(entry *models.PhotoViewLog) error

	PhotoViewCounts() (map[int64]int64, error)
	TopViewedPhotos(limit uint64) ([]TopViewedPhoto, error)
	PhotoViewers(photoID int64) ([]models.PhotoViewer, error)

	CountPageViews(since, until int64) (int64, error)
	CountUniqueVisitors(since, until int64) (int64, error)
	CountPageViewsSince(since int64) (int64, error)
	TopBreakdown(column string, since, until int64, excludeEmpty bool) ([]BreakdownItem, error)
	ViewsByDay(since, until int64) ([]DailyViews, error)
}

var (
	_ PhotoRepositoryInterface     = (*PhotoRepository)(nil)
	_ AlbumRepositoryInterface     = (*AlbumRepository)(nil)
	_ TagRepositoryInterface       = (*TagRepository)(nil)
	_ AnalyticsRepositoryInterface = (*AnalyticsRepository)(nil)
)
