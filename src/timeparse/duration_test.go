package timeparse

import (
	"errors"
	"testing"
	"time"
)

func TestParseMillis_ValidUnits(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"30s", 30 * 1000},
		{"15m", 15 * 60 * 1000},
		{"1h", 60 * 60 * 1000},
		{"7d", 7 * 24 * 60 * 60 * 1000},
		{"0s", 0},
		{"007m", 7 * 60 * 1000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMillis(tt.input)
			if err != nil {
				t.Fatalf("ParseMillis(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMillis(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMillis_RejectsOtherShapes(t *testing.T) {
	inputs := []string{
		"",
		"15",
		"m",
		"1.5h",
		"-5m",
		"+5m",
		" 5m",
		"5m ",
		"2w",
		"1y",
		"10M",
		"5ms",
		"abc",
		"99999999999999999999d",
		"9223372036854775807d",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMillis(input)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("ParseMillis(%q) error = %v, want ErrInvalidFormat", input, err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	got, err := ParseDuration("15m")
	if err != nil {
		t.Fatalf("ParseDuration failed: %v", err)
	}
	if got != 15*time.Minute {
		t.Errorf("expected 15m, got %s", got)
	}

	if _, err := ParseDuration("7x"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}
