package analytics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	geoUserAgent = "gallerybackend/1.0"
	// anything longer than this is an error page, not a country name
	maxCountryLength = 100
)

// CountryResolver resolves an IP address to a country name over a
// per-IP HTTP lookup. Every failure mode degrades to an empty country;
// analytics never blocks on geo data being available.
type CountryResolver struct {
	BaseURL string
	Client  *http.Client
}

// NewCountryResolver builds a resolver with a hard per-lookup timeout.
func NewCountryResolver(baseURL string, timeout time.Duration) *CountryResolver {
	return &CountryResolver{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Resolve returns the country name for ip, or "" when the IP is
// private, unparseable, or the lookup fails or times out.
func (cr *CountryResolver) Resolve(ctx context.Context, ip string) string {
	if ip == "" || ip == "unknown" || !isPublicIP(ip) {
		return ""
	}

	url := fmt.Sprintf("%s/%s/country_name/", cr.BaseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", geoUserAgent)

	resp, err := cr.Client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("ip_prefix", ipLogPrefix(ip)).Msg("Country lookup failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCountryLength+1))
	if err != nil {
		return ""
	}

	country := strings.TrimSpace(string(body))
	if country == "" || len(country) > maxCountryLength ||
		strings.Contains(strings.ToLower(country), "invalid") {
		return ""
	}
	return country
}

// isPublicIP reports whether the address is worth a geo lookup.
// Private, loopback, link-local and unparseable addresses are not.
func isPublicIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsPrivate() &&
		!parsed.IsLoopback() &&
		!parsed.IsLinkLocalUnicast() &&
		!parsed.IsLinkLocalMulticast() &&
		!parsed.IsUnspecified()
}

// ipLogPrefix truncates an IP for log lines so raw addresses stay out
// of the logs.
func ipLogPrefix(ip string) string {
	if len(ip) <= 7 {
		return ip
	}
	return ip[:7] + "..."
}
