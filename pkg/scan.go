package finddup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrInterrupted is returned when a shutdown signal stops a run
var ErrInterrupted = errors.New("operation interrupted by shutdown")

// stopSignal is closed when the run must end early: on shutdown or on the first error
type stopSignal struct {
	ch   chan struct{}
	once sync.Once
}

func newStopSignal(shutdownChan <-chan struct{}) *stopSignal {
	s := &stopSignal{ch: make(chan struct{})}
	if shutdownChan != nil {
		go func() {
			select {
			case <-shutdownChan:
				s.Stop()
			case <-s.ch:
			}
		}()
	}
	return s
}

func (s *stopSignal) Stop() {
	s.once.Do(func() { close(s.ch) })
}

func (s *stopSignal) Done() <-chan struct{} {
	return s.ch
}

// keyResult carries a computed key from a hash worker to the accumulating goroutine
type keyResult struct {
	loc     FileLocation
	outcome KeyOutcome
	err     error
}

// ============================================================================
// FILESYSTEM SCANNING FUNCTIONS
// ============================================================================

// scanPaths walks each directory in turn and streams accepted files in lexical order.
// out is closed when scanning ends.
func (f *Finder) scanPaths(dirs []string, out chan<- FileLocation, stop <-chan struct{}) error {
	defer VerboseEnter()()
	defer close(out)

	for _, dir := range dirs {
		if IsDebugEnabled("scan") {
			VerboseLog(3, "scanPaths: scanning %s", dir)
		}
		if err := f.scanRoot(dir, out, stop); err != nil {
			return fmt.Errorf("failed to scan path %s: %w", dir, err)
		}
	}

	return nil
}

// scanRoot walks one directory tree depth first, each directory in name order.
// Paths keep the root exactly as given, so "./music" yields "./music/a.mp3".
// Symlinks to directories below the root are listed but not followed and not grouped;
// a symlinked root is followed. Unreadable subdirectories are skipped.
func (f *Finder) scanRoot(root string, out chan<- FileLocation, stop <-chan struct{}) error {
	// A root that cannot be listed fails the run
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	return f.scanEntries(root, ".", entries, out, stop)
}

// scanDir lists one subdirectory and scans it, logging and skipping it when unreadable
func (f *Finder) scanDir(dir, relDir string, out chan<- FileLocation, stop <-chan struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		VerboseLog(1, "Skipping %s: %v", dir, err)
		return nil
	}
	return f.scanEntries(dir, relDir, entries, out, stop)
}

// scanEntries handles the entries of one directory. relDir is the directory relative to
// the search root and is only used for ignore file patterns.
func (f *Finder) scanEntries(dir, relDir string, entries []os.DirEntry, out chan<- FileLocation, stop <-chan struct{}) error {
	for _, entry := range entries {
		// Check for shutdown or an error elsewhere in the run
		select {
		case <-stop:
			return ErrInterrupted
		default:
		}

		name := entry.Name()
		path := joinPath(dir, name)
		relPath := filepath.Join(relDir, name)

		// Descend into real directories unless the ignore file prunes them
		if entry.IsDir() {
			if f.filter.SkipDir(relPath) {
				if IsDebugEnabled("scan") {
					VerboseLog(3, "scanEntries: ignoring directory %s", path)
				}
				continue
			}
			if err := f.scanDir(path, relPath, out, stop); err != nil {
				return err
			}
			continue
		}

		// Symlinks to directories are neither followed nor grouped
		if entry.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				continue
			}
		}

		loc := FileLocation{Dir: dir, Name: name}
		if !f.filter.AcceptFile(loc, relPath) {
			continue
		}

		if IsDebugEnabled("scan") {
			VerboseLog(3, "scanEntries: found file %s", path)
		}

		// Hand the location to the grouping side
		select {
		case out <- loc:
		case <-stop:
			return ErrInterrupted
		}
	}
	return nil
}

// ============================================================================
// GROUPING DRIVERS
// ============================================================================

// groupSequential computes keys on the accumulating goroutine as locations arrive
func (f *Finder) groupSequential(dirs []string, grouper *Grouper, shutdownChan <-chan struct{}) error {
	defer VerboseEnter()()

	stop := newStopSignal(shutdownChan)
	defer stop.Stop()

	locations := make(chan FileLocation, 50)

	var scanErr error
	var scanWg sync.WaitGroup
	scanWg.Add(1)
	go func() {
		defer scanWg.Done()
		scanErr = f.scanPaths(dirs, locations, stop.Done())
	}()

	// Compute keys as locations arrive; after the first error keep draining so the walker exits
	var groupErr error
	for loc := range locations {
		if groupErr != nil {
			continue
		}
		if err := grouper.Add(loc); err != nil {
			groupErr = err
			stop.Stop()
		}
	}
	scanWg.Wait()

	if groupErr != nil {
		return groupErr
	}
	return scanErr
}

// groupParallel fans key computation out to hash workers and folds the results into the
// grouper from this goroutine only
func (f *Finder) groupParallel(dirs []string, grouper *Grouper, strategy *Strategy, shutdownChan <-chan struct{}) error {
	defer VerboseEnter()()

	stop := newStopSignal(shutdownChan)
	defer stop.Stop()

	locations := make(chan FileLocation, 100)
	results := make(chan keyResult, 100)

	// Start the walker; it closes locations when done

	var scanErr error
	var scanWg sync.WaitGroup
	scanWg.Add(1)
	go func() {
		defer scanWg.Done()
		scanErr = f.scanPaths(dirs, locations, stop.Done())
	}()

	// Start the hash workers
	var workerWg sync.WaitGroup
	for i := 0; i < f.hashWorkers; i++ {
		workerWg.Add(1)
		go hashWorker(i, strategy, locations, results, stop.Done(), &workerWg)
	}
	// Close results once every worker has returned
	go func() {
		workerWg.Wait()
		close(results)
	}()

	// Fold results into the grouper; after the first error keep draining so nothing blocks
	var groupErr error
	for r := range results {
		if groupErr != nil {
			continue
		}
		if err := grouper.addOutcome(r.loc, r.outcome, r.err); err != nil {
			groupErr = err
			stop.Stop()
		}
	}
	scanWg.Wait()

	if groupErr != nil {
		return groupErr
	}
	return scanErr
}

// hashWorker computes keys until locations is closed or the run stops
func hashWorker(id int, strategy *Strategy, locations <-chan FileLocation, results chan<- keyResult, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case loc, ok := <-locations:
			if !ok {
				return
			}

			if IsDebugEnabled("hash") {
				VerboseLog(3, "hashWorker %d: hashing %s", id, loc.Path())
			}
			outcome, err := strategy.Key(loc)

			select {
			case results <- keyResult{loc: loc, outcome: outcome, err: err}:
			case <-stop:
				return
			}

		case <-stop:
			return
		}
	}
}
