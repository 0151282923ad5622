package finddup

import (
	"fmt"
	"os"
)

// Finder runs duplicate searches with a validated configuration
type Finder struct {
	config      *Config
	strategy    *Strategy
	filter      *Filter
	hashWorkers int
	skipErrors  bool
}

// NewFinder validates the configuration and prepares strategy and filters.
// Every configuration error surfaces here, before any directory is read.
func NewFinder(config *Config) (*Finder, error) {
	defer VerboseEnter()()

	if config == nil {
		config = NewDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	all := config.GetAllConfig()

	blockSize, err := ValidateBlockSize(all.Match.BlockSize)
	if err != nil {
		return nil, err
	}
	algorithm, err := GetHashAlgorithm(all.Match.Digest)
	if err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(all.Match.Strategy, blockSize, algorithm)
	if err != nil {
		return nil, err
	}

	var ignore *IgnoreMatcher
	if all.Filter.IgnoreFile != "" {
		ignore, err = LoadIgnoreFile(all.Filter.IgnoreFile)
		if err != nil {
			return nil, err
		}
		VerboseLog(2, "Loaded %d ignore patterns from %s", ignore.Len(), all.Filter.IgnoreFile)
	}

	filter, err := NewFilter(all.Filter.Exclude, all.Filter.Only, ignore)
	if err != nil {
		return nil, err
	}

	VerboseLog(1, "Using %s strategy with %d hash worker(s)", strategy, all.Performance.HashWorkers)

	return &Finder{
		config:      config,
		strategy:    strategy,
		filter:      filter,
		hashWorkers: all.Performance.HashWorkers,
		skipErrors:  all.Match.SkipErrors,
	}, nil
}

// Strategy returns the active key strategy
func (f *Finder) Strategy() *Strategy {
	return f.strategy
}

// FindDuplicates walks the directories once and groups every accepted file.
// Closing shutdownChan interrupts the walk and any hashing in progress.
func (f *Finder) FindDuplicates(dirs []string, shutdownChan <-chan struct{}) (*Result, error) {
	defer VerboseEnter()()

	if len(dirs) == 0 {
		return nil, fmt.Errorf("no directories to search")
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("cannot search %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("cannot search %s: not a directory", dir)
		}
	}

	strategy := f.strategy.WithShutdown(shutdownChan)
	grouper := NewGrouper(strategy, f.skipErrors)

	var err error
	if f.hashWorkers > 1 && strategy.Kind == StrategyMD5 {
		err = f.groupParallel(dirs, grouper, strategy, shutdownChan)
	} else {
		err = f.groupSequential(dirs, grouper, shutdownChan)
	}
	if err != nil {
		return nil, err
	}

	result := grouper.Result()
	VerboseLog(1, "Processed %d files, %d distinct keys, %d groups",
		result.Summary.Files, result.Summary.Keys, result.Summary.Groups)
	if result.Summary.Unreadable > 1 {
		Warn("%d entries could not be read as regular files and are reported together under %s",
			result.Summary.Unreadable, NotARegularFile)
	}
	return result, nil
}
