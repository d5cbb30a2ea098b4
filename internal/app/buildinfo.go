package app

import (
	"strings"
	"time"
)

var (
	// Version is stamped by ldflags in release builds.
	Version = "dev"
	// BuildDate is stamped by ldflags in release builds, RFC 3339.
	BuildDate = ""
)

// VersionString renders the version for logs, "1.2.0 (2026-05-14)"
// when a build date is known.
func VersionString() string {
	version := strings.TrimSpace(Version)
	if version == "" {
		version = "dev"
	}

	if date := buildDateYMD(); date != "" {
		return version + " (" + date + ")"
	}

	return version
}

func buildDateYMD() string {
	raw := strings.TrimSpace(BuildDate)
	if raw == "" {
		return ""
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Format(time.DateOnly)
	}
	if len(raw) >= len(time.DateOnly) {
		date := raw[:len(time.DateOnly)]
		if _, err := time.Parse(time.DateOnly, date); err == nil {
			return date
		}
	}

	return raw
}
