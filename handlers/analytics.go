package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/analytics"
	"github.com/lensloft/gallerybackend/repository"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type AnalyticsHandler struct {
	Service *analytics.Service
}

func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

type dashboardResponse struct {
	analytics.Summary
	ViewsOverTime []repository.DailyViews `json:"viewsOverTime"`
}

// Dashboard returns the analytics summary and the daily view series
// for the requested window: either ?days=N or ?from=&to= as
// YYYY-MM-DD dates.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	opts, ok := rangeFromQuery(w, r)
	if !ok {
		return
	}

	now := time.Now()
	summary, err := h.Service.Summary(opts, now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build analytics summary")
		writeError(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}
	series, err := h.Service.ViewsOverTime(opts, now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build view series")
		writeError(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{Summary: *summary, ViewsOverTime: series})
}

type trackRequest struct {
	Path     string `json:"path" validate:"required,max=500"`
	Referrer string `json:"referrer" validate:"max=2000"`
}

// Track records one page view reported by the public site.
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.Service.RecordPageView(r.Context(), analytics.PageViewInput{
		Path:      req.Path,
		Referrer:  req.Referrer,
		UserAgent: r.UserAgent(),
		IP:        ClientIP(r),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to record page view")
		writeError(w, http.StatusInternalServerError, "Failed to record view")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

// rangeFromQuery validates the window parameters. from and to must
// come as a pair of well-formed dates; days must be a positive
// integer.
func rangeFromQuery(w http.ResponseWriter, r *http.Request) (analytics.RangeOptions, bool) {
	opts := analytics.RangeOptions{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	if (opts.From == "") != (opts.To == "") {
		writeError(w, http.StatusBadRequest, "from and to must be provided together")
		return opts, false
	}
	if opts.From != "" {
		if !datePattern.MatchString(opts.From) || !datePattern.MatchString(opts.To) {
			writeError(w, http.StatusBadRequest, "Dates must be YYYY-MM-DD")
			return opts, false
		}
	}
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid days")
			return opts, false
		}
		opts.Days = days
	}
	return opts, true
}
