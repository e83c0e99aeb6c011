package reader

import "testing"

func TestBaseFontName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ABCDEF+Helvetica-Bold", "Helvetica-Bold"},
		{"Helvetica", "Helvetica"},
		{"abcdef+Times", "abcdef+Times"},
		{"ABC+Times", "ABC+Times"},
		{"ABCDEF+", "ABCDEF+"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BaseFontName(tt.input); got != tt.expected {
			t.Errorf("BaseFontName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsBoldFont(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"Helvetica-Bold", true},
		{"Times-BoldItalic", true},
		{"ABCDEF+Arial-BoldMT", true},
		{"Roboto-Black", true},
		{"SourceSansPro-Semibold", true},
		{"OpenSans-Heavy", true},
		{"Garamond-DemiBold", true},
		{"Helvetica", false},
		{"Times-Italic", false},
		{"ABCDEF+Arial", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsBoldFont(tt.name); got != tt.expected {
			t.Errorf("IsBoldFont(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}
