package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	finddup "github.com/lonetwin/finddup/pkg"
)

// runCLI executes the root command with args and returns its stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logBuf bytes.Buffer
	finddup.SetLogOutput(&logBuf)
	defer finddup.SetLogOutput(nil)
	defer finddup.SetVerboseLevel(0)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// Test argument parsing and strategy selection
func TestArgumentParsing(t *testing.T) {
	tempDir := t.TempDir()
	writeTestFile(t, filepath.Join(tempDir, "a.txt"), "0123456789-a")
	writeTestFile(t, filepath.Join(tempDir, "b.txt"), "0123456789-b")
	writeTestFile(t, filepath.Join(tempDir, "x", "Invoice 2023.pdf"), "1")
	writeTestFile(t, filepath.Join(tempDir, "y", "invoice2023.pdf"), "2")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		errMsg  string
		want    string
	}{
		{
			name:    "No directories",
			args:    []string{},
			wantErr: true,
			errMsg:  "requires at least 1 arg",
		},
		{
			name: "Default name strategy",
			args: []string{tempDir},
			want: "Processed 4 files and found no duplicates",
		},
		{
			name: "Fuzzy strategy",
			args: []string{"-f", tempDir},
			want: "Processed 4 files and found 1 possible duplicates",
		},
		{
			name: "MD5 strategy with blocksize",
			args: []string{"--md5", "-B", "10B", tempDir},
			want: "\t" + filepath.Join(tempDir, "a.txt") + "\n\t" + filepath.Join(tempDir, "b.txt") + "\n",
		},
		{
			name: "MD5 strategy with workers",
			args: []string{"-m", "-B", "10B", "-j", "4", tempDir},
			want: "found 1 possible duplicates",
		},
		{
			name: "Only pattern",
			args: []string{"-f", "-o", `\.txt$`, tempDir},
			want: "Processed 2 files and found no duplicates",
		},
		{
			name: "Exclude pattern",
			args: []string{"-m", "-B", "10", "-e", `b\.txt$`, tempDir},
			want: "Processed 3 files and found no duplicates",
		},
		{
			name:    "Mutually exclusive strategies",
			args:    []string{"-f", "-m", tempDir},
			wantErr: true,
			errMsg:  "none of the others can be",
		},
		{
			name:    "Invalid blocksize",
			args:    []string{"-m", "-B", "4Q", tempDir},
			wantErr: true,
			errMsg:  "invalid block size",
		},
		{
			name:    "Invalid exclude regex",
			args:    []string{"-e", "(", tempDir},
			wantErr: true,
			errMsg:  "invalid exclude pattern",
		},
		{
			name:    "Invalid format",
			args:    []string{"--format", "xml", tempDir},
			wantErr: true,
			errMsg:  "unsupported output format",
		},
		{
			name:    "Missing directory",
			args:    []string{filepath.Join(tempDir, "missing")},
			wantErr: true,
			errMsg:  "cannot search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got output %q", out)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %v", tt.errMsg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected output containing %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	tempDir := t.TempDir()
	writeTestFile(t, filepath.Join(tempDir, "one", "dup.txt"), "1")
	writeTestFile(t, filepath.Join(tempDir, "two", "dup.txt"), "2")

	out, err := runCLI(t, "--format", "json", tempDir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var result finddup.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if len(result.Groups) != 1 || result.Groups[0].Key != "dup.txt" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestConfigFileAndOverrides(t *testing.T) {
	tempDir := t.TempDir()
	writeTestFile(t, filepath.Join(tempDir, "data", "a.bin"), "same prefix, different tail A")
	writeTestFile(t, filepath.Join(tempDir, "data", "b.bin"), "same prefix, different tail B")

	configPath := filepath.Join(tempDir, "finddup.ini")
	writeTestFile(t, configPath, "[match]\nstrategy = md5\nblocksize = 11B\n")
	dataDir := filepath.Join(tempDir, "data")

	out, err := runCLI(t, "-c", configPath, dataDir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "found 1 possible duplicates") {
		t.Errorf("Config file strategy not applied:\n%s", out)
	}

	// --set overrides the file
	out, err = runCLI(t, "-c", configPath, "--set", "strategy:name", dataDir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "found no duplicates") {
		t.Errorf("Override not applied:\n%s", out)
	}

	// Flags override both
	out, err = runCLI(t, "-c", configPath, "--set", "blocksize:1K", "-B", "4B", dataDir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "found 1 possible duplicates") {
		t.Errorf("Blocksize flag not applied:\n%s", out)
	}

	if _, err := runCLI(t, "--set", "bogus:1", dataDir); err == nil {
		t.Error("Expected an error for an unknown override key")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "finddup "+Version+"\n" {
		t.Errorf("Unexpected version output %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "finddup.ini")

	out, err := runCLI(t, "--set", "format:yaml", "config", "init", configPath)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote "+configPath) {
		t.Errorf("Unexpected init output %q", out)
	}

	if _, err := runCLI(t, "config", "init", configPath); err == nil {
		t.Error("config init should refuse to overwrite an existing file")
	}

	out, err = runCLI(t, "-c", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"[match]", "strategy", "format", "yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in config show output:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "--set", "strategy:sha", "config", "show"); err == nil {
		t.Error("config show should validate the configuration")
	}
}

func TestBlocksizeMinimum(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "at least 1 byte") {
		t.Errorf("Help should state the blocksize minimum:\n%s", out)
	}

	if _, err := runCLI(t, "-m", "-B", "0B", t.TempDir()); err == nil || !strings.Contains(err.Error(), "smaller than one byte") {
		t.Errorf("Expected a zero blocksize to be rejected, got %v", err)
	}
}
