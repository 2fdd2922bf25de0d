package platform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/browser"
)

// OpenURL opens one http(s) URL with the desktop's default handler.
func OpenURL(raw string) error {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("refusing to open non-web url %q", raw)
	}
	return browser.OpenURL(parsed.String())
}
