package finddup

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// sizeSuffixes are the recognised unit letters, each a further factor of 1024
const sizeSuffixes = "BKMGTPEZY"

// ParseHumanSize parses human-readable size strings (e.g., "10B", "4K", "1.5k", "2M").
// The unit letter is case-insensitive and a bare number is taken as bytes. Fractional
// multipliers are rounded to the nearest byte.
func ParseHumanSize(sizeStr string) (int64, error) {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	numPart := sizeStr
	exponent := 0
	last := sizeStr[len(sizeStr)-1]
	if last < '0' || last > '9' {
		idx := strings.IndexByte(sizeSuffixes, last)
		if idx == -1 {
			return 0, fmt.Errorf("unknown size suffix %q in size string: %s", string(last), sizeStr)
		}
		exponent = idx
		numPart = strings.TrimSpace(sizeStr[:len(sizeStr)-1])
	}

	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}
	if num < 0 || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("size must be a non-negative number: %s", sizeStr)
	}

	result := math.Round(num * math.Pow(1024, float64(exponent)))
	if result >= math.MaxInt64 {
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}

	return int64(result), nil
}

// ValidateBlockSize parses a block size and requires it to be at least one byte
func ValidateBlockSize(sizeStr string) (int64, error) {
	size, err := ParseHumanSize(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid block size: %w", err)
	}
	if size < 1 {
		return 0, fmt.Errorf("invalid block size: %s is smaller than one byte", sizeStr)
	}
	return size, nil
}
