package finddup

import "strings"

// Strategy kinds
const (
	StrategyName  = "name"  // Exact base name
	StrategyFuzzy = "fuzzy" // Digest of the normalized base name
	StrategyMD5   = "md5"   // Digest of the first BlockSize bytes of content
)

// NotARegularFile is the key reported for entries the content strategy could not read as
// regular files (directories, dangling symlinks, devices, fifos, stat failures).
const NotARegularFile = "NotARegularFile"

// Defaults
const (
	DefaultStrategy    = StrategyName
	DefaultBlockSize   = "4K"
	DefaultDigest      = "md5"
	DefaultFormat      = "human"
	DefaultHashWorkers = 1
	MaxHashWorkers     = 64
)

// Output formats
const (
	FormatHuman  = "human"
	FormatFdupes = "fdupes"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
)

// Digest type constants
const (
	DigestMD5    uint16 = 1 // MD5 (16 bytes)
	DigestSHA1   uint16 = 2 // SHA-1 (20 bytes)
	DigestSHA256 uint16 = 3 // SHA-256 (32 bytes)
	DigestSHA512 uint16 = 4 // SHA-512 (64 bytes)
	DigestBLAKE3 uint16 = 5 // BLAKE3 (32 bytes)
)

// Digest size constants
const (
	DigestSizeMD5    = 16
	DigestSizeSHA1   = 20
	DigestSizeSHA256 = 32
	DigestSizeSHA512 = 64
	DigestSizeBLAKE3 = 32
)

// DigestTypeName returns the human-readable name for a digest type
func DigestTypeName(digestType uint16) string {
	switch digestType {
	case DigestMD5:
		return "md5"
	case DigestSHA1:
		return "sha1"
	case DigestSHA256:
		return "sha256"
	case DigestSHA512:
		return "sha512"
	case DigestBLAKE3:
		return "blake3"
	default:
		return "unknown"
	}
}

// DigestTypeFromName returns the digest type constant from a name (case-insensitive)
func DigestTypeFromName(name string) (uint16, bool) {
	switch strings.ToLower(name) {
	case "md5":
		return DigestMD5, true
	case "sha1":
		return DigestSHA1, true
	case "sha256":
		return DigestSHA256, true
	case "sha512":
		return DigestSHA512, true
	case "blake3":
		return DigestBLAKE3, true
	default:
		return 0, false
	}
}

// hashReadBuffer is the read size used while hashing a content prefix
const hashReadBuffer = 64 * 1024
