package analytics

import (
	"fmt"
	"time"
)

const defaultRangeDays = 30

// RangeOptions selects a reporting window. An explicit From/To date
// pair (YYYY-MM-DD, both required) wins over Days; with neither set
// the window is the trailing 30 days.
type RangeOptions struct {
	Days int
	From string
	To   string
}

// ResolveRange turns the options into an inclusive [since, until]
// Unix-seconds window. A date pair spans From 00:00:00 UTC through To
// 23:59:59 UTC; a day count is a trailing window ending at now.
func ResolveRange(opts RangeOptions, now time.Time) (since, until int64, err error) {
	if opts.From != "" && opts.To != "" {
		fromDay, err := time.ParseInLocation("2006-01-02", opts.From, time.UTC)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid from date %q: %w", opts.From, err)
		}
		toDay, err := time.ParseInLocation("2006-01-02", opts.To, time.UTC)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid to date %q: %w", opts.To, err)
		}
		if toDay.Before(fromDay) {
			return 0, 0, fmt.Errorf("date range ends before it starts: %s > %s", opts.From, opts.To)
		}
		return fromDay.Unix(), toDay.Add(24*time.Hour - time.Second).Unix(), nil
	}

	days := opts.Days
	if days <= 0 {
		days = defaultRangeDays
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour).Unix(), now.Unix(), nil
}
