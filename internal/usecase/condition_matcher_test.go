package usecase

import "testing"

func TestMatchCondition(t *testing.T) {
	tests := []struct {
		name     string
		observed string
		expected string
		want     bool
	}{
		{"exact match", "Sunny", "Sunny", true},
		{"case-insensitive equality", "Sunny", "sunny", true},
		{"substring match", "Partly Cloudy", "Cloudy", true},
		{"substring match ignores case", "LIGHT RAIN SHOWERS", "rain", true},
		{"whitespace is collapsed", "Partly\n  Cloudy", "partly cloudy", true},
		{"expected surrounded by spaces", "Clear", "  clear ", true},
		{"no match", "Clear", "Rain", false},
		{"expected longer than observed", "Rain", "Rain showers", false},
		{"empty observed", "", "Sunny", false},
		{"blank expected", "Sunny", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchCondition(tt.observed, tt.expected); got != tt.want {
				t.Errorf("MatchCondition(%q, %q) = %v, want %v", tt.observed, tt.expected, got, tt.want)
			}
		})
	}
}
