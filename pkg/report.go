package finddup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/google/vectorio"
	"gopkg.in/yaml.v3"
)

// maxIovecs keeps each writev call under the Linux IOV_MAX limit
const maxIovecs = 1024

// WriteReport renders a result in the given format
func WriteReport(w io.Writer, result *Result, format string) error {
	switch strings.ToLower(format) {
	case FormatHuman:
		return writeLines(w, humanLines(result))
	case FormatFdupes:
		return writeLines(w, fdupesLines(result))
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// humanLines renders each group as its key followed by tab-indented paths, then a summary
func humanLines(result *Result) [][]byte {
	var lines [][]byte
	for _, group := range result.Groups {
		lines = append(lines, []byte(group.Key+"\n"))
		for _, file := range group.Files {
			lines = append(lines, []byte("\t"+file+"\n"))
		}
	}

	summary := result.Summary
	if result.HasDuplicates() {
		lines = append(lines, []byte(fmt.Sprintf("\nProcessed %d files and found %d possible duplicates\n",
			summary.Files, summary.Groups)))
	} else {
		lines = append(lines, []byte(fmt.Sprintf("\nProcessed %d files and found no duplicates\n", summary.Files)))
	}
	if summary.Skipped > 0 {
		lines = append(lines, []byte(fmt.Sprintf("Skipped %d files that could not be read\n", summary.Skipped)))
	}
	return lines
}

// fdupesLines renders paths only, one group per block separated by blank lines
func fdupesLines(result *Result) [][]byte {
	var lines [][]byte
	for _, group := range result.Groups {
		for _, file := range group.Files {
			lines = append(lines, []byte(file+"\n"))
		}
		lines = append(lines, []byte("\n"))
	}
	return lines
}

// writeLines writes lines in order, using a single gathered write per chunk for files
func writeLines(w io.Writer, lines [][]byte) error {
	if f, ok := w.(*os.File); ok {
		return writevLines(f, lines)
	}

	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// writevLines writes lines to a file with vectorio, finishing short writes with plain writes
func writevLines(f *os.File, lines [][]byte) error {
	defer runtime.KeepAlive(lines)

	var nonEmpty [][]byte
	for _, line := range lines {
		if len(line) > 0 {
			nonEmpty = append(nonEmpty, line)
		}
	}

	for offset := 0; offset < len(nonEmpty); offset += maxIovecs {
		end := offset + maxIovecs
		if end > len(nonEmpty) {
			end = len(nonEmpty)
		}
		chunk := nonEmpty[offset:end]

		iovecs := make([]syscall.Iovec, len(chunk))
		chunkSize := 0
		for i, line := range chunk {
			iovecs[i].Base = &line[0]
			iovecs[i].SetLen(len(line))
			chunkSize += len(line)
		}

		nw, err := vectorio.WritevRaw(f.Fd(), iovecs)
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		if nw < chunkSize {
			if err := writeRemainder(f, chunk, nw); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeRemainder writes whatever part of chunk lies beyond the first skip bytes
func writeRemainder(f *os.File, chunk [][]byte, skip int) error {
	for _, line := range chunk {
		if skip >= len(line) {
			skip -= len(line)
			continue
		}
		if _, err := f.Write(line[skip:]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		skip = 0
	}
	return nil
}
