package format

import (
	"testing"
	"time"
)

func TestSI(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"zero", 0, "0"},
		{"units", 42, "42"},
		{"thousands", 1500, "1.5k"},
		{"millions", 1234567, "1.2M"},
		{"billions", 2.6e9, "2.6G"},
		{"rounds into next prefix", 999700, "1M"},
		{"negative", -1500, "-1.5k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SI(tt.v, 2); got != tt.want {
				t.Errorf("SI(%v, 2) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{2.6e9, "2.6B"},
		{1500, "1.5K"},
		{3.1e6, "3.1M"},
		{12, "12"},
	}

	for _, tt := range tests {
		if got := Abbreviate(tt.v); got != tt.want {
			t.Errorf("Abbreviate(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestThousands(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{1234567.8, 0, "1,234,568"},
		{999, 0, "999"},
		{1234.5678, 2, "1,234.57"},
	}

	for _, tt := range tests {
		if got := Thousands(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Thousands(%v, %d) = %q, want %q", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func TestNamedFormatters(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"currency", 40000, "$40000"},
		{"millions", 1439323.776, "1,439,324 mil."},
		{"percent", 61.44, "61.4%"},
		{"abbrev", 2.6e9, "2.6B"},
		{"unknown", 2.5, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Named(tt.name)(tt.v); got != tt.want {
				t.Errorf("Named(%q)(%v) = %q, want %q", tt.name, tt.v, got, tt.want)
			}
		})
	}
}

func TestSuffix(t *testing.T) {
	if got := Suffix(" mil")(250); got != "250 mil" {
		t.Errorf("Suffix(\" mil\")(250) = %q, want %q", got, "250 mil")
	}
}

func TestParseAndFormatTime(t *testing.T) {
	got, err := ParseTime("%d/%m/%Y", "28/04/2013")
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	want := time.Date(2013, time.April, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTime = %v, want %v", got, want)
	}

	if s := FormatTime("%d/%m/%Y", want); s != "28/04/2013" {
		t.Errorf("FormatTime = %q, want %q", s, "28/04/2013")
	}

	if _, err := ParseTime("%Y", "nineteen"); err == nil {
		t.Error("ParseTime(\"%Y\", \"nineteen\") error = nil, want error")
	}
}
