package finddup

import (
	"fmt"
	"sort"
)

// DuplicateGroup represents a group of files sharing a comparison key
type DuplicateGroup struct {
	Key        string   `json:"key" yaml:"key"`
	Files      []string `json:"files" yaml:"files"`
	Count      int      `json:"count" yaml:"count"`
	Unreadable bool     `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
}

// RunSummary counts what a run looked at and found
type RunSummary struct {
	Files      int `json:"files" yaml:"files"`           // Locations consumed
	Groups     int `json:"groups" yaml:"groups"`         // Groups with more than one member
	Keys       int `json:"keys" yaml:"keys"`             // Distinct keys, singletons included
	Unreadable int `json:"unreadable" yaml:"unreadable"` // Locations given the NotARegularFile outcome
	Skipped    int `json:"skipped" yaml:"skipped"`       // Locations dropped after a read error
}

// Result is the outcome of one run
type Result struct {
	Groups  []DuplicateGroup `json:"groups" yaml:"groups"`
	Summary RunSummary       `json:"summary" yaml:"summary"`
}

// HasDuplicates reports whether any group was found
func (r *Result) HasDuplicates() bool {
	return len(r.Groups) > 0
}

// Grouper accumulates locations into buckets keyed by the active strategy.
// A Grouper is owned by a single goroutine.
type Grouper struct {
	strategy   *Strategy
	index      *keyIndex
	unreadable []string
	skipErrors bool
	files      int
	skipped    int
}

// NewGrouper creates an empty grouper for a strategy. With skipErrors a strategy error
// is reported as a warning and the location is counted as skipped instead of failing.
func NewGrouper(strategy *Strategy, skipErrors bool) *Grouper {
	return &Grouper{
		strategy:   strategy,
		index:      newKeyIndex(16, strategy.Kind),
		skipErrors: skipErrors,
	}
}

// Add computes the key for a location and records it
func (g *Grouper) Add(loc FileLocation) error {
	outcome, err := g.strategy.Key(loc)
	return g.addOutcome(loc, outcome, err)
}

// addOutcome records an already computed key. It is the single accumulation step shared
// by the sequential and the worker pool paths.
func (g *Grouper) addOutcome(loc FileLocation, outcome KeyOutcome, keyErr error) error {
	g.files++
	path := loc.Path()

	// Read errors abort the run unless they are being skipped
	if keyErr != nil {
		if !g.skipErrors {
			return fmt.Errorf("failed to compute %s key for %s: %w", g.strategy.Kind, path, keyErr)
		}
		Warn("skipping %s: %v", path, keyErr)
		g.skipped++
		return nil
	}

	// Keep unreadable entries apart so they never merge with a real key
	if outcome.Unreadable {
		g.unreadable = append(g.unreadable, path)
	} else {
		g.index.Append(outcome.Key, path)
	}

	if IsDebugEnabled("group") {
		VerboseLog(3, "group: %s -> %s", path, outcome.Key)
	}
	return nil
}

// Files returns the number of locations consumed so far
func (g *Grouper) Files() int {
	return g.files
}

// Result builds the duplicate groups from the accumulated buckets
func (g *Grouper) Result() *Result {
	defer VerboseEnter()()

	result := &Result{Groups: []DuplicateGroup{}}

	// Use skiplist iteration to collect duplicates in key order
	g.index.ForEach(func(b *keyBucket) bool {
		// Singletons are counted as keys but not reported
		if len(b.Paths) > 1 {
			result.Groups = append(result.Groups, newDuplicateGroup(b.Key, b.Paths, false))
		}
		return true
	})

	// The unreadable bucket counts as one key and is reported last
	keys := g.index.Length()
	if len(g.unreadable) > 0 {
		keys++
	}
	if len(g.unreadable) > 1 {
		result.Groups = append(result.Groups, newDuplicateGroup(NotARegularFile, g.unreadable, true))
	}

	result.Summary = RunSummary{
		Files:      g.files,
		Groups:     len(result.Groups),
		Keys:       keys,
		Unreadable: len(g.unreadable),
		Skipped:    g.skipped,
	}
	return result
}

func newDuplicateGroup(key string, paths []string, unreadable bool) DuplicateGroup {
	files := make([]string, len(paths))
	copy(files, paths)
	sort.Strings(files)
	return DuplicateGroup{
		Key:        key,
		Files:      files,
		Count:      len(files),
		Unreadable: unreadable,
	}
}

// GroupLocations runs a strategy over a fixed list of locations
func GroupLocations(locations []FileLocation, strategy *Strategy, skipErrors bool) (*Result, error) {
	grouper := NewGrouper(strategy, skipErrors)
	for _, loc := range locations {
		if err := grouper.Add(loc); err != nil {
			return nil, err
		}
	}
	return grouper.Result(), nil
}
