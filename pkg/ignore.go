package finddup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which walked files reach the grouper
type Filter struct {
	exclude *regexp.Regexp // Matched against the full path; nil matches nothing
	only    *regexp.Regexp // Matched against the base name; nil matches everything
	ignore  *IgnoreMatcher // Glob patterns relative to the search root; may be nil
}

// NewFilter compiles the exclude and only patterns. Empty patterns disable the test.
func NewFilter(exclude, only string, ignore *IgnoreMatcher) (*Filter, error) {
	f := &Filter{ignore: ignore}

	if exclude != "" {
		re, err := regexp.Compile(exclude)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %s - %w", exclude, err)
		}
		f.exclude = re
	}

	if only != "" {
		re, err := regexp.Compile(only)
		if err != nil {
			return nil, fmt.Errorf("invalid only pattern: %s - %w", only, err)
		}
		f.only = re
	}

	return f, nil
}

// AcceptFile reports whether a file should be grouped. relPath is relative to the root
// being searched and is only used for ignore file patterns.
func (f *Filter) AcceptFile(loc FileLocation, relPath string) bool {
	if f.only != nil && !f.only.MatchString(loc.Name) {
		return false
	}
	if f.exclude != nil && f.exclude.MatchString(loc.Path()) {
		return false
	}
	if f.ignore != nil && f.ignore.Match(relPath, false) {
		return false
	}
	return true
}

// SkipDir reports whether a directory is pruned from the walk by the ignore file
func (f *Filter) SkipDir(relPath string) bool {
	return f.ignore != nil && relPath != "." && f.ignore.Match(relPath, true)
}

// ignorePattern is one parsed ignore file line
type ignorePattern struct {
	glob    string
	negated bool
	dirOnly bool
}

// IgnoreMatcher holds gitignore-style glob patterns
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an empty matcher
func NewIgnoreMatcher() *IgnoreMatcher {
	return &IgnoreMatcher{}
}

// LoadIgnoreFile reads patterns from a file, one per line, '#' starting a comment
func LoadIgnoreFile(path string) (*IgnoreMatcher, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	im := NewIgnoreMatcher()
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := im.AddPattern(scanner.Text()); err != nil {
			return nil, fmt.Errorf("invalid glob pattern at line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ignore file: %w", err)
	}

	return im, nil
}

// AddPattern parses and adds a single pattern line. Blank lines and comments are ignored.
func (im *IgnoreMatcher) AddPattern(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	// Unanchored patterns without a slash match at any depth
	if strings.HasPrefix(line, "/") {
		line = line[1:]
	} else if !strings.Contains(line, "/") {
		line = "**/" + line
	}

	if !doublestar.ValidatePattern(line) {
		return fmt.Errorf("bad pattern %q", line)
	}

	p.glob = line
	im.patterns = append(im.patterns, p)
	return nil
}

// Match reports whether a relative path is ignored. The last matching pattern wins.
func (im *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")

	ignored := false
	for _, p := range im.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matched, _ := doublestar.Match(p.glob, relPath); matched {
			ignored = !p.negated
		}
	}
	return ignored
}

// Len returns the number of patterns
func (im *IgnoreMatcher) Len() int {
	return len(im.patterns)
}
