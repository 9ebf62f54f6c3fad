package analytics

import "strings"

var botMarkers = []string{
	"bot",
	"crawler",
	"spider",
	"crawling",
	"facebookexternalhit",
	"bingpreview",
	"headlesschrome",
	"lighthouse",
	"python-requests",
	"curl/",
	"wget/",
}

// IsBot reports whether the user agent looks like an automated client.
// Empty user agents are treated as bots: no real browser omits the
// header.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return true
	}
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// ParseBrowser classifies the user agent into a browser family.
// Ordering matters: Edge ships a Chrome token and Chrome ships a
// Safari token, so Edge is checked first and Safari after Chrome.
// Chromium-based Opera carries a Chrome token and lands in the
// Chrome bucket; only pre-Chromium Opera reaches the Opera check.
func ParseBrowser(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Edg/"):
		return "Edge"
	case strings.Contains(userAgent, "Chrome/") && !strings.Contains(userAgent, "Chromium"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox/"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari/") && !strings.Contains(userAgent, "Chrome"):
		return "Safari"
	case strings.Contains(userAgent, "OPR/") || strings.Contains(userAgent, "Opera"):
		return "Opera"
	default:
		return "Other"
	}
}

// ParseDevice classifies the user agent as Mobile, Tablet or Desktop.
// Mobile is checked first so that Android phones (which carry both
// "Android" and "Mobile") do not land in the tablet bucket.
func ParseDevice(userAgent string) string {
	if strings.Contains(userAgent, "Mobile") && !strings.Contains(userAgent, "iPad") {
		return "Mobile"
	}
	if strings.Contains(userAgent, "iPad") ||
		strings.Contains(userAgent, "Android") ||
		strings.Contains(userAgent, "Tablet") {
		return "Tablet"
	}
	return "Desktop"
}
