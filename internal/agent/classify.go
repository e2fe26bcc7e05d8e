// Package agent classifies raw user-agent strings into the coarse buckets
// the audience counters are keyed by. Classification is best effort: an
// agent we cannot place lands in the Unknown bucket, never in an error.
package agent

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

const (
	Unknown = "Unknown"

	DeviceMobile  = "Mobile"
	DeviceDesktop = "Desktop"
)

// Classification is the per-event audience breakdown derived from one
// user-agent string.
type Classification struct {
	Browser string
	OS      string
	Device  string
}

// Classify parses a user-agent string into browser family, OS family and a
// binary mobile/desktop device class. Tablets count as mobile.
func Classify(userAgent string) Classification {
	c := Classification{Browser: Unknown, OS: Unknown, Device: DeviceDesktop}
	if strings.TrimSpace(userAgent) == "" {
		return c
	}

	parsed := ua.Parse(userAgent)
	if parsed.Name != "" {
		c.Browser = parsed.Name
	}
	if parsed.OS != "" {
		c.OS = parsed.OS
	}
	if parsed.Mobile || parsed.Tablet {
		c.Device = DeviceMobile
	}
	return c
}
