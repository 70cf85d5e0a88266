package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultContentSecurityPolicy applies to every response unless a handler
// replaces it. JSON and metrics responses never load sub-resources.
const DefaultContentSecurityPolicy = "default-src 'self'"

// PageContentSecurityPolicy is set by the HTML page handlers. The trip map is
// drawn by Leaflet from unpkg, tiles come from the origin of tileURL, and the
// map is bootstrapped by one inline script that carries the trip's GeoJSON.
// A tile URL without a usable origin leaves only unpkg and data: images.
func PageContentSecurityPolicy(tileURL string) string {
	img := "img-src 'self' data: https://unpkg.com"
	if origin := TileOrigin(tileURL); origin != "" {
		img += " " + origin
	}
	return "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
		"style-src 'self' 'unsafe-inline' https://unpkg.com https://cdnjs.cloudflare.com; " +
		"font-src https://cdnjs.cloudflare.com; " +
		img
}

// TileOrigin returns the scheme and host of a Leaflet tile URL template.
// A "{s}." subdomain placeholder becomes a "*." wildcard.
func TileOrigin(tileURL string) string {
	wildcard := strings.Contains(tileURL, "{s}.")
	u, err := url.Parse(strings.Replace(tileURL, "{s}.", "", 1))
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return ""
	}
	host := u.Host
	if wildcard {
		host = "*." + host
	}
	return u.Scheme + "://" + host
}

// SecurityHeaders is an HTTP middleware that adds a standard set of
// security-related headers to every response:
//
//   - X-Content-Type-Options: nosniff
//   - Cache-Control / Pragma: no-store. Fare predictions depend on the
//     moment they were asked for and must not be replayed from a cache.
//   - Cross-Origin-Opener-Policy and Cross-Origin-Resource-Policy: same-origin
//   - X-XSS-Protection: 1; mode=block, for older browsers
//   - Content-Security-Policy: DefaultContentSecurityPolicy
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", DefaultContentSecurityPolicy)
		next.ServeHTTP(w, r)
	})
}
