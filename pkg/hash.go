package finddup

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"
	"lukechampine.com/blake3"
)

// HashAlgorithm represents a digest algorithm configuration
type HashAlgorithm struct {
	Name    string
	TypeID  uint16
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the digest algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	typeID, ok := DigestTypeFromName(name)
	if !ok {
		return nil, fmt.Errorf("unsupported digest algorithm: %s", name)
	}
	return GetHashAlgorithmByType(typeID)
}

// GetHashAlgorithmByType returns the digest algorithm configuration for the given type ID
func GetHashAlgorithmByType(typeID uint16) (*HashAlgorithm, error) {
	switch typeID {
	case DigestMD5:
		return &HashAlgorithm{
			Name:    "md5",
			TypeID:  DigestMD5,
			Size:    DigestSizeMD5,
			NewFunc: func() hash.Hash { return md5.New() },
		}, nil
	case DigestSHA1:
		return &HashAlgorithm{
			Name:    "sha1",
			TypeID:  DigestSHA1,
			Size:    DigestSizeSHA1,
			NewFunc: func() hash.Hash { return sha1.New() },
		}, nil
	case DigestSHA256:
		return &HashAlgorithm{
			Name:    "sha256",
			TypeID:  DigestSHA256,
			Size:    DigestSizeSHA256,
			NewFunc: func() hash.Hash { return sha256.New() },
		}, nil
	case DigestSHA512:
		return &HashAlgorithm{
			Name:    "sha512",
			TypeID:  DigestSHA512,
			Size:    DigestSizeSHA512,
			NewFunc: func() hash.Hash { return sha512.New() },
		}, nil
	case DigestBLAKE3:
		return &HashAlgorithm{
			Name:    "blake3",
			TypeID:  DigestBLAKE3,
			Size:    DigestSizeBLAKE3,
			NewFunc: func() hash.Hash { return blake3.New(DigestSizeBLAKE3, nil) },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported digest type ID: %d", typeID)
	}
}

// HashStringToHexString calculates the digest of a string and returns it as a hex string
func HashStringToHexString(data string, algorithm *HashAlgorithm) string {
	hasher := algorithm.NewFunc()
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashFilePrefix calculates the digest of at most limit bytes from the start of a file.
// Files shorter than limit are hashed whole. The prefix is memory mapped; empty files and
// files that cannot be mapped are read instead. The shutdown channel is checked between chunks.
func HashFilePrefix(filePath string, algorithm *HashAlgorithm, limit int64, shutdownChan <-chan struct{}) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	// Only the prefix that exists on disk is mapped
	length := stat.Size()
	if limit < length {
		length = limit
	}
	if length <= 0 || length > math.MaxInt {
		return hashPrefixRead(file, filePath, algorithm, limit, shutdownChan)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(length), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		if IsDebugEnabled("hash") {
			VerboseLog(3, "HashFilePrefix: mmap of %s failed, reading instead: %v", filePath, err)
		}
		return hashPrefixRead(file, filePath, algorithm, limit, shutdownChan)
	}
	defer unix.Munmap(data)

	return hashMapped(data, filePath, algorithm, shutdownChan)
}

// hashMapped hashes a mapped prefix in hashReadBuffer sized chunks
func hashMapped(data []byte, filePath string, algorithm *HashAlgorithm, shutdownChan <-chan struct{}) ([]byte, error) {
	hasher := algorithm.NewFunc()
	for offset := 0; offset < len(data); offset += hashReadBuffer {
		select {
		case <-shutdownChan:
			return nil, fmt.Errorf("hashing %s: %w", filePath, ErrInterrupted)
		default:
		}

		end := offset + hashReadBuffer
		if end > len(data) {
			end = len(data)
		}
		hasher.Write(data[offset:end])
	}
	return hasher.Sum(nil), nil
}

// hashPrefixRead hashes at most limit bytes from the current offset of file with plain reads
func hashPrefixRead(file *os.File, filePath string, algorithm *HashAlgorithm, limit int64, shutdownChan <-chan struct{}) ([]byte, error) {
	hasher := algorithm.NewFunc()
	bufSize := hashReadBuffer
	if limit < int64(bufSize) {
		bufSize = int(limit)
	}
	if bufSize <= 0 {
		return hasher.Sum(nil), nil
	}
	buffer := make([]byte, bufSize)
	reader := io.LimitReader(file, limit)

	for {
		select {
		case <-shutdownChan:
			return nil, fmt.Errorf("hashing %s: %w", filePath, ErrInterrupted)
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum(nil), nil
}

// HashFilePrefixToHexString is HashFilePrefix with a hex encoded result
func HashFilePrefixToHexString(filePath string, algorithm *HashAlgorithm, limit int64, shutdownChan <-chan struct{}) (string, error) {
	digest, err := HashFilePrefix(filePath, algorithm, limit, shutdownChan)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}
