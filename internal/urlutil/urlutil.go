package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// ErrUnsupportedURL is returned for URLs that cannot point at a recipe page.
var ErrUnsupportedURL = errors.New("unsupported recipe url")

var staticExtensions = map[string]struct{}{
	".css":   {},
	".gif":   {},
	".ico":   {},
	".jpeg":  {},
	".jpg":   {},
	".js":    {},
	".json":  {},
	".mp3":   {},
	".mp4":   {},
	".pdf":   {},
	".png":   {},
	".svg":   {},
	".ttf":   {},
	".webp":  {},
	".woff":  {},
	".woff2": {},
	".zip":   {},
}

// Normalize cleans a submitted recipe page URL and returns it with its host.
// A missing scheme defaults to https; other schemes than http and https are
// rejected, as are links to static assets.
func Normalize(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("%w: empty url", ErrUnsupportedURL)
	}
	if !hasScheme(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
	u.Host = normalizeHost(u.Host)
	if u.Hostname() == "" {
		return "", "", fmt.Errorf("%w: missing host", ErrUnsupportedURL)
	}
	if isStaticAssetPath(u.Path) {
		return "", "", fmt.Errorf("%w: static asset %s", ErrUnsupportedURL, path.Ext(u.Path))
	}

	u.User = nil
	u.Fragment = ""
	u.Path = normalizePath(u.Path)
	u.RawPath = ""
	u.RawQuery = normalizeQuery(u.RawQuery)
	return u.String(), u.Hostname(), nil
}

// hasScheme reports whether raw starts with "scheme:". A host followed by a
// port number does not count.
func hasScheme(raw string) bool {
	i := strings.Index(raw, ":")
	if i <= 0 {
		return false
	}
	for _, r := range raw[:i] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && r != '+' && r != '-' {
			return false
		}
	}
	rest := raw[i+1:]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	return clean
}

// normalizeQuery drops tracking parameters and sorts the rest.
func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	for key := range values {
		lk := strings.ToLower(key)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" || lk == "ref" {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := url.Values{}
	for _, k := range keys {
		normalized[k] = values[k]
	}
	return normalized.Encode()
}

func isStaticAssetPath(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	_, ok := staticExtensions[ext]
	return ok
}
