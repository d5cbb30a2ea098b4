package app

import "testing"

func TestVersionString(t *testing.T) {
	originalVersion := Version
	originalBuildDate := BuildDate
	t.Cleanup(func() {
		Version = originalVersion
		BuildDate = originalBuildDate
	})

	tests := []struct {
		name      string
		version   string
		buildDate string
		want      string
	}{
		{name: "defaults to dev", version: "", buildDate: "", want: "dev"},
		{name: "version only", version: "0.3.0", buildDate: "", want: "0.3.0"},
		{name: "trims value", version: " 1.2.3 ", buildDate: "", want: "1.2.3"},
		{name: "version with date", version: "0.1.2", buildDate: "2026-01-30T14:55:03Z", want: "0.1.2 (2026-01-30)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version
			BuildDate = tt.buildDate
			if got := VersionString(); got != tt.want {
				t.Fatalf("VersionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDateYMD(t *testing.T) {
	original := BuildDate
	t.Cleanup(func() {
		BuildDate = original
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty stays empty", in: "", want: ""},
		{name: "rfc3339 formatted", in: "2026-01-30T14:55:03Z", want: "2026-01-30"},
		{name: "date only", in: "2026-01-30", want: "2026-01-30"},
		{name: "date prefix", in: "2026-01-30 14:55:03", want: "2026-01-30"},
		{name: "unknown format returns as is", in: "not-a-date", want: "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			BuildDate = tt.in
			if got := buildDateYMD(); got != tt.want {
				t.Fatalf("buildDateYMD() = %q, want %q", got, tt.want)
			}
		})
	}
}
