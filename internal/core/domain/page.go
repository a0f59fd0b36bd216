package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// StorageKeyPrefix namespaces page keys inside shared stores
const StorageKeyPrefix = "pixelOverlayState_"

// PageKey derives the page identity "<host><path>" from a URL. Scheme,
// port, query and fragment do not contribute, so every view of the same
// document shares one snapshot. Scheme-less input such as
// "example.com/pricing" is accepted.
func PageKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty page", ErrInvalidPage)
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}

	host := strings.ToLower(u.Hostname())
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if host == "" && u.Scheme != "file" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidPage, raw)
	}

	return host + path, nil
}

// StorageKey is the namespaced form of a page key
func StorageKey(pageKey string) string {
	return StorageKeyPrefix + pageKey
}
