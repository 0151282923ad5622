package finddup

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkConfig defines the shape of a generated tree
type BenchmarkConfig struct {
	TotalFiles  int   // Total number of files to generate
	FileSize    int64 // Size of each file in bytes
	FilesPerDir int   // Files per directory
	Variants    int   // Distinct contents and names, so every group has TotalFiles/Variants members
}

var SmallBenchConfig = BenchmarkConfig{
	TotalFiles:  1000,
	FileSize:    8 * 1024,
	FilesPerDir: 20,
	Variants:    100,
}

// generateDeterministicData creates deterministic file content based on seed
func generateDeterministicData(size int64, seed int64) []byte {
	data := make([]byte, size)
	state := uint64(seed)*6364136223846793005 + 1442695040888963407
	for i := range data {
		state = state*6364136223846793005 + 1442695040888963407
		data[i] = byte(state >> 56)
	}
	return data
}

func createBenchTree(b *testing.B, cfg BenchmarkConfig) string {
	b.Helper()
	root := b.TempDir()

	contents := make([][]byte, cfg.Variants)
	for i := range contents {
		contents[i] = generateDeterministicData(cfg.FileSize, int64(i))
	}

	for i := 0; i < cfg.TotalFiles; i++ {
		dir := filepath.Join(root, fmt.Sprintf("dir%04d", i/cfg.FilesPerDir))
		if err := os.MkdirAll(dir, 0755); err != nil {
			b.Fatalf("Failed to create %s: %v", dir, err)
		}
		name := fmt.Sprintf("File %03d.dat", i%cfg.Variants)
		if err := os.WriteFile(filepath.Join(dir, name), contents[i%cfg.Variants], 0644); err != nil {
			b.Fatalf("Failed to write file: %v", err)
		}
	}
	return root
}

func benchmarkFind(b *testing.B, overrides ...string) {
	root := createBenchTree(b, SmallBenchConfig)

	config := NewDefaultConfig()
	if err := config.ApplyOverrides(overrides); err != nil {
		b.Fatalf("ApplyOverrides failed: %v", err)
	}
	finder, err := NewFinder(config)
	if err != nil {
		b.Fatalf("NewFinder failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := finder.FindDuplicates([]string{root}, nil)
		if err != nil {
			b.Fatalf("FindDuplicates failed: %v", err)
		}
		if len(result.Groups) != SmallBenchConfig.Variants {
			b.Fatalf("Expected %d groups, got %d", SmallBenchConfig.Variants, len(result.Groups))
		}
	}
}

func BenchmarkFindByName(b *testing.B) {
	benchmarkFind(b, "strategy:name")
}

func BenchmarkFindFuzzy(b *testing.B) {
	benchmarkFind(b, "strategy:fuzzy")
}

func BenchmarkFindMD5(b *testing.B) {
	benchmarkFind(b, "strategy:md5")
}

func BenchmarkFindMD5Parallel(b *testing.B) {
	benchmarkFind(b, "strategy:md5", "hash_workers:8")
}

func BenchmarkFindBLAKE3Parallel(b *testing.B) {
	benchmarkFind(b, "strategy:md5", "digest:blake3", "hash_workers:8")
}

func BenchmarkNormalizeName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NormalizeName("The Artist & Band - Good ol' Tune (Remastered 2011).flac")
	}
}
