// Package device classifies raw client-agent strings into coarse device,
// browser and OS labels for click analytics.
package device

import "strings"

// Info is the classification result. Every field is always populated;
// unmatched categories fall back to their defaults.
type Info struct {
	Device  string
	Browser string
	OS      string
}

// Classify maps a raw User-Agent string to coarse labels. Matching is
// case-insensitive, first match wins per category, and the categories are
// independent of each other.
//
// The OS precedence checks "mac" before "ios", so agents carrying
// "macintosh" resolve to MacOS even when an iOS hint follows. This ordering
// is a compatibility contract with existing stored clicks; do not reorder.
func Classify(userAgent string) Info {
	ua := strings.ToLower(userAgent)

	device := "desktop"
	if containsAny(ua, "iphone", "android", "mobile") {
		device = "mobile"
	} else if containsAny(ua, "tablet", "ipad") {
		device = "tablet"
	}

	browser := "Unknown"
	switch {
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "edge"):
		browser = "Edge"
	}

	os := "Unknown"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "mac"):
		os = "MacOS"
	case strings.Contains(ua, "ios"):
		os = "iOS"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	}

	return Info{Device: device, Browser: browser, OS: os}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
