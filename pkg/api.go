package finddup

// This file defines the public convenience API used by the CLI

// InitLogging applies the verbose section of a configuration to the process-wide logger
func InitLogging(verbose *VerboseConfig) {
	if verbose == nil {
		return
	}
	SetVerboseLevel(verbose.Level)
	SetDebugFlags(verbose.Debug)
	if verbose.Debug != "" {
		VerboseLog(1, "Debug flags initialised: %s", verbose.Debug)
	}
}

// Find validates cfg, searches dirs and returns the duplicate groups
func Find(dirs []string, cfg *Config, shutdownChan <-chan struct{}) (*Result, error) {
	finder, err := NewFinder(cfg)
	if err != nil {
		return nil, err
	}
	return finder.FindDuplicates(dirs, shutdownChan)
}
