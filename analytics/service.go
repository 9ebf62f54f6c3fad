package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/models"
	"github.com/lensloft/gallerybackend/repository"
)

// PageViewInput is one tracked page load as reported by the client.
type PageViewInput struct {
	Path      string
	Referrer  string
	UserAgent string
	IP        string
}

// Summary is the dashboard payload for one reporting window. The
// today / 7-day / 30-day counters are always relative to now,
// independent of the selected window.
type Summary struct {
	TotalViews     int64                       `json:"totalViews"`
	UniqueVisitors int64                       `json:"uniqueVisitors"`
	ViewsToday     int64                       `json:"viewsToday"`
	Views7d        int64                       `json:"views7d"`
	Views30d       int64                       `json:"views30d"`
	TopPages       []repository.BreakdownItem  `json:"topPages"`
	TopReferrers   []repository.BreakdownItem  `json:"topReferrers"`
	TopBrowsers    []repository.BreakdownItem  `json:"topBrowsers"`
	TopDevices     []repository.BreakdownItem  `json:"topDevices"`
	TopCountries   []repository.BreakdownItem  `json:"topCountries"`
	TopPhotos      []repository.TopViewedPhoto `json:"topPhotos"`
}

// Service ties visitor classification, geo lookup and the analytics
// store together.
type Service struct {
	Repo       repository.AnalyticsRepositoryInterface
	Geo        *CountryResolver
	GeoTimeout time.Duration
}

func NewService(repo repository.AnalyticsRepositoryInterface, geo *CountryResolver, geoTimeout time.Duration) *Service {
	return &Service{Repo: repo, Geo: geo, GeoTimeout: geoTimeout}
}

// RecordPageView classifies and stores one page load. Bot traffic is
// dropped. The country lookup runs inside the request but is bounded
// by the resolver timeout, so a slow geo API cannot stall tracking for
// long.
func (s *Service) RecordPageView(ctx context.Context, input PageViewInput) error {
	if IsBot(input.UserAgent) {
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.GeoTimeout)
	defer cancel()

	pv := models.PageView{
		Path:      input.Path,
		Referrer:  input.Referrer,
		UserAgent: input.UserAgent,
		IPHash:    HashVisitor(input.IP, input.UserAgent),
		Country:   s.Geo.Resolve(lookupCtx, input.IP),
		Browser:   ParseBrowser(input.UserAgent),
		Device:    ParseDevice(input.UserAgent),
		CreatedAt: time.Now().Unix(),
	}
	return s.Repo.RecordPageView(&pv)
}

// RecordPhotoView stores a deduplicated photo view synchronously and
// appends the audit-trail entry in the background, so the response
// never waits on the country lookup.
func (s *Service) RecordPhotoView(photoID int64, ip, userAgent string) error {
	if IsBot(userAgent) {
		return nil
	}

	ipHash := HashVisitor(ip, userAgent)
	if err := s.Repo.RecordPhotoView(photoID, ipHash); err != nil {
		return err
	}

	browser := ParseBrowser(userAgent)
	device := ParseDevice(userAgent)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.GeoTimeout)
		defer cancel()

		entry := models.PhotoViewLog{
			PhotoID:   photoID,
			IPHash:    ipHash,
			Browser:   browser,
			Device:    device,
			Country:   s.Geo.Resolve(ctx, ip),
			CreatedAt: time.Now().Unix(),
		}
		if err := s.Repo.LogPhotoView(&entry); err != nil {
			log.Error().Err(err).Int64("photo_id", photoID).Msg("Failed to log photo view")
		}
	}()

	return nil
}

// Summary assembles the dashboard numbers for the requested window.
func (s *Service) Summary(opts RangeOptions, now time.Time) (*Summary, error) {
	since, until, err := ResolveRange(opts, now)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	if summary.TotalViews, err = s.Repo.CountPageViews(since, until); err != nil {
		return nil, err
	}
	if summary.UniqueVisitors, err = s.Repo.CountUniqueVisitors(since, until); err != nil {
		return nil, err
	}

	// the daily series buckets by UTC day, so "today" must be the
	// UTC calendar day even on hosts in another zone
	utcNow := now.UTC()
	todayStart := time.Date(utcNow.Year(), utcNow.Month(), utcNow.Day(), 0, 0, 0, 0, time.UTC)
	if summary.ViewsToday, err = s.Repo.CountPageViewsSince(todayStart.Unix()); err != nil {
		return nil, err
	}
	if summary.Views7d, err = s.Repo.CountPageViewsSince(now.Add(-7 * 24 * time.Hour).Unix()); err != nil {
		return nil, err
	}
	if summary.Views30d, err = s.Repo.CountPageViewsSince(now.Add(-30 * 24 * time.Hour).Unix()); err != nil {
		return nil, err
	}

	if summary.TopPages, err = s.Repo.TopBreakdown("path", since, until, false); err != nil {
		return nil, err
	}
	if summary.TopReferrers, err = s.Repo.TopBreakdown("referrer", since, until, true); err != nil {
		return nil, err
	}
	if summary.TopBrowsers, err = s.Repo.TopBreakdown("browser", since, until, false); err != nil {
		return nil, err
	}
	if summary.TopDevices, err = s.Repo.TopBreakdown("device", since, until, false); err != nil {
		return nil, err
	}
	if summary.TopCountries, err = s.Repo.TopBreakdown("country", since, until, true); err != nil {
		return nil, err
	}
	if summary.TopPhotos, err = s.Repo.TopViewedPhotos(10); err != nil {
		return nil, err
	}

	return summary, nil
}

// ViewsOverTime returns the per-day page view series for the window.
func (s *Service) ViewsOverTime(opts RangeOptions, now time.Time) ([]repository.DailyViews, error) {
	since, until, err := ResolveRange(opts, now)
	if err != nil {
		return nil, err
	}
	return s.Repo.ViewsByDay(since, until)
}
