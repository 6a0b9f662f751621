// Package device turns raw User-Agent strings into human-readable session
// descriptions shown in audit logs.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent produces a "Browser on Platform" description from a raw
// User-Agent header. Unknown parts degrade gracefully.
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown Platform"
	}

	return fmt.Sprintf("%s on %s", browser, platform)
}
