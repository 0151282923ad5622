package finddup

import (
	"strings"
	"testing"
)

func TestParseHumanSize(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
	}{
		{"1k", 1024},
		{"1K", 1024},
		{"1.5K", 1536},
		{"2m", 2097152},
		{"2M", 2097152},
		{"2.5M", 2621440},
		{"10B", 10},
		{"10b", 10},
		{"4K", 4096},
		{"1G", 1073741824},
		{"1T", 1 << 40},
		{"1P", 1 << 50},
		{"1E", 1 << 60},
		{"0B", 0},
		{"0.5B", 1}, // rounds to nearest byte
		{"512", 512},
		{" 4K ", 4096},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseHumanSize(tc.input)
			if err != nil {
				t.Fatalf("ParseHumanSize(%q) failed: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("ParseHumanSize(%q) = %d, expected %d", tc.input, got, tc.expected)
			}
		})
	}
}

func TestParseHumanSize_Invalid(t *testing.T) {
	testCases := []struct {
		input   string
		errText string
	}{
		{"", "empty size string"},
		{"K", "no numeric part"},
		{"4Q", "unknown size suffix"},
		{"abcK", "invalid numeric part"},
		{"-1K", "non-negative"},
		{"1Z", "too large"},
		{"1Y", "too large"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseHumanSize(tc.input)
			if err == nil {
				t.Fatalf("ParseHumanSize(%q) should fail", tc.input)
			}
			if !strings.Contains(err.Error(), tc.errText) {
				t.Errorf("ParseHumanSize(%q) error %q should mention %q", tc.input, err, tc.errText)
			}
		})
	}
}

func TestValidateBlockSize(t *testing.T) {
	if size, err := ValidateBlockSize("4K"); err != nil || size != 4096 {
		t.Errorf("ValidateBlockSize(4K) = %d, %v; expected 4096, nil", size, err)
	}

	for _, input := range []string{"0B", "0.4B", "bogus", ""} {
		if _, err := ValidateBlockSize(input); err == nil {
			t.Errorf("ValidateBlockSize(%q) should fail", input)
		}
	}
}
