package cmd

import (
	"testing"
	"time"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "plain seconds",
			input:    "90",
			expected: 90 * time.Second,
		},
		{
			name:     "minutes and seconds",
			input:    "1:30",
			expected: 90 * time.Second,
		},
		{
			name:     "zero",
			input:    "0",
			expected: 0,
		},
		{
			name:     "negative offset",
			input:    "-10",
			expected: -10 * time.Second,
		},
		{
			name:    "seconds out of range",
			input:   "1:75",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "soon",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parsePosition(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePosition(%q) expected error, got %v", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePosition(%q) returned error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("parsePosition(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}
