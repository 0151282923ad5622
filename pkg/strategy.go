package finddup

import (
	"fmt"
	"os"
	"strings"
)

// asciiWhitespace and asciiPunctuation are the characters removed by fuzzy normalization
const (
	asciiWhitespace  = " \t\n\r\v\f"
	asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Strategy selects how a FileLocation is turned into a comparison key.
// Exactly one Kind is active per run.
type Strategy struct {
	Kind      string         // StrategyName, StrategyFuzzy or StrategyMD5
	BlockSize int64          // Prefix length for StrategyMD5
	Algorithm *HashAlgorithm // Digest used by StrategyFuzzy and StrategyMD5

	shutdownChan <-chan struct{}
}

// KeyOutcome is the result of applying a Strategy to one file.
// Unreadable is set when the content strategy could not read a regular file at the location;
// Key is then NotARegularFile.
type KeyOutcome struct {
	Key        string
	Unreadable bool
}

// NewStrategy builds a validated strategy
func NewStrategy(kind string, blockSize int64, algorithm *HashAlgorithm) (*Strategy, error) {
	switch kind {
	case StrategyName:
	case StrategyFuzzy, StrategyMD5:
		if algorithm == nil {
			return nil, fmt.Errorf("%s strategy requires a digest algorithm", kind)
		}
		if kind == StrategyMD5 && blockSize < 1 {
			return nil, fmt.Errorf("md5 strategy requires a positive block size, got %d", blockSize)
		}
	default:
		return nil, fmt.Errorf("unsupported strategy: %s (supported: name, fuzzy, md5)", kind)
	}

	return &Strategy{
		Kind:      kind,
		BlockSize: blockSize,
		Algorithm: algorithm,
	}, nil
}

// WithShutdown returns a copy of the strategy whose content reads stop when shutdownChan closes
func (s *Strategy) WithShutdown(shutdownChan <-chan struct{}) *Strategy {
	c := *s
	c.shutdownChan = shutdownChan
	return &c
}

// Key computes the comparison key for a location
func (s *Strategy) Key(loc FileLocation) (KeyOutcome, error) {
	switch s.Kind {
	case StrategyName:
		return KeyOutcome{Key: loc.Name}, nil
	case StrategyFuzzy:
		return KeyOutcome{Key: HashStringToHexString(NormalizeName(loc.Name), s.Algorithm)}, nil
	case StrategyMD5:
		return s.contentKey(loc)
	default:
		return KeyOutcome{}, fmt.Errorf("unsupported strategy: %s", s.Kind)
	}
}

// String describes the strategy for logs
func (s *Strategy) String() string {
	switch s.Kind {
	case StrategyMD5:
		return fmt.Sprintf("%s(%s, %d bytes)", s.Kind, s.Algorithm.Name, s.BlockSize)
	case StrategyFuzzy:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Algorithm.Name)
	default:
		return s.Kind
	}
}

func (s *Strategy) contentKey(loc FileLocation) (KeyOutcome, error) {
	path := loc.Path()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		if IsDebugEnabled("hash") {
			VerboseLog(2, "contentKey: %s is not a regular file (stat error: %v)", path, err)
		}
		return KeyOutcome{Key: NotARegularFile, Unreadable: true}, nil
	}

	digest, err := HashFilePrefixToHexString(path, s.Algorithm, s.BlockSize, s.shutdownChan)
	if err != nil {
		return KeyOutcome{}, err
	}
	return KeyOutcome{Key: digest}, nil
}

// NormalizeName applies fuzzy normalization to a file name: lower-case it, strip the
// extension, spell '&' as "and", then drop ASCII whitespace and punctuation.
func NormalizeName(name string) string {
	name, _ = splitExt(strings.ToLower(name))
	name = strings.ReplaceAll(name, "&", "and")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x80 && strings.ContainsRune(asciiWhitespace+asciiPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitExt splits off the extension at the last '.'. Leading dots belong to the name,
// so ".profile" and "..." have no extension.
func splitExt(name string) (string, string) {
	start := 0
	for start < len(name) && name[start] == '.' {
		start++
	}
	idx := strings.LastIndexByte(name[start:], '.')
	if idx == -1 {
		return name, ""
	}
	idx += start
	return name[:idx], name[idx:]
}
