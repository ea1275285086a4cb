package errors

import (
	"strings"
	"testing"
)

func TestValidateChartName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "revenues", false},
		{"valid with dash", "coin-prices", false},
		{"valid with underscore", "world_population", false},
		{"valid with digits", "population2020", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"uppercase", "Revenues", true},
		{"leading dash", "-revenues", true},
		{"slash", "charts/revenues", true},
		{"dot", "revenues.svg", true},
		{"space", "coin prices", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChartName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChartName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidChart) {
				t.Errorf("ValidateChartName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidChart)
			}
		})
	}
}

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "revenue", false},
		{"with digits", "24h_vol", false},
		{"with space", "market cap", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"control char", "rev\x01enue", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFieldName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "data/revenues.csv", false},
		{"absolute file", "/srv/vizlab/data/coins.json", false},
		{"nested", "examples/data/population/2020.csv", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"traversal", "data/../../etc/passwd", true},
		{"backslash", "data\\coins.json", true},
		{"null byte", "data/coins\x00.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/coins.json", false},
		{"http", "http://localhost:8080/data.csv", false},
		{"empty", "", true},
		{"file scheme", "file:///etc/passwd", true},
		{"bare path", "data/coins.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
