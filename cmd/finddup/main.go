// Package main provides the finddup CLI.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	finddup "github.com/lonetwin/finddup/pkg"
)

// Version is the current finddup version
var Version = "1.0.0"

// options holds the flag values of one invocation
type options struct {
	configPath string
	overrides  []string

	name       bool
	fuzzy      bool
	md5        bool
	blockSize  string
	exclude    string
	only       string
	digest     string
	format     string
	ignoreFile string
	workers    int
	skipErrors bool
	verbose    int
	debug      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "finddup: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "finddup [OPTIONS] DIRECTORIES ...",
		Short: "Find duplicate files within a list of directories",
		Long: `Find duplicate files within a list of directories.

Files are compared by exact name (default), by a fuzzy match of their names, or by a
checksum of their first BLOCKSIZE bytes.`,
		Example: `  # find likely duplicates under the current directory using the md5
  # checksums of the first 1K bytes of each file
  finddup -m -B 1K ./`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.name, "name", "n", false, "use exact filenames (fastest, default)")
	flags.BoolVarP(&opts.fuzzy, "fuzzy", "f", false, "use fuzzy match of file names")
	flags.BoolVarP(&opts.md5, "md5", "m", false, "use checksums of the first BLOCKSIZE bytes (slowest)")
	flags.StringVarP(&opts.blockSize, "blocksize", "B", finddup.DefaultBlockSize, "limit checksums to the first BLOCKSIZE bytes, at least 1 byte (e.g. 512B, 4K, 1.5M)")
	flags.StringVarP(&opts.exclude, "exclude", "e", "", "exclude files where the path matches the provided regex pattern")
	flags.StringVarP(&opts.only, "only", "o", "", "only consider files where the name matches the provided regex pattern")
	flags.StringVar(&opts.digest, "digest", finddup.DefaultDigest, "digest algorithm for fuzzy and md5 keys (md5, sha1, sha256, sha512, blake3)")
	flags.StringVar(&opts.format, "format", finddup.DefaultFormat, "output format (human, fdupes, json, yaml)")
	flags.StringVar(&opts.ignoreFile, "ignore-file", "", "file of gitignore-style glob patterns to skip")
	flags.IntVarP(&opts.workers, "workers", "j", finddup.DefaultHashWorkers, "number of concurrent checksum workers")
	flags.BoolVar(&opts.skipErrors, "skip-errors", false, "warn about and skip files that cannot be read instead of stopping")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase verbosity (repeatable)")
	flags.StringVar(&opts.debug, "debug", "", "comma-separated debug flags (scan, hash, group, config)")
	rootCmd.MarkFlagsMutuallyExclusive("name", "fuzzy", "md5")

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to an INI configuration file")
	rootCmd.PersistentFlags().StringArrayVar(&opts.overrides, "set", nil, "override a configuration value as key:value (repeatable)")

	rootCmd.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return rootCmd
}

// loadConfig reads the config file and applies --set overrides
func loadConfig(opts *options) (*finddup.Config, error) {
	cfg, err := finddup.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(opts.overrides); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly given flags over the configuration
func applyFlags(cmd *cobra.Command, cfg *finddup.Config, opts *options) error {
	flags := cmd.Flags()
	set := func(key, value string) error {
		return cfg.Set(key, value)
	}

	var err error
	switch {
	case opts.md5:
		err = set("strategy", finddup.StrategyMD5)
	case opts.fuzzy:
		err = set("strategy", finddup.StrategyFuzzy)
	case opts.name:
		err = set("strategy", finddup.StrategyName)
	}
	if err != nil {
		return err
	}

	stringFlags := []struct {
		flag, key string
		value     string
	}{
		{"blocksize", "blocksize", opts.blockSize},
		{"exclude", "exclude", opts.exclude},
		{"only", "only", opts.only},
		{"digest", "digest", opts.digest},
		{"format", "format", opts.format},
		{"ignore-file", "ignore_file", opts.ignoreFile},
		{"debug", "debug", opts.debug},
	}
	for _, f := range stringFlags {
		if flags.Changed(f.flag) {
			if err := set(f.key, f.value); err != nil {
				return err
			}
		}
	}

	if flags.Changed("workers") {
		if err := set("hash_workers", strconv.Itoa(opts.workers)); err != nil {
			return err
		}
	}
	if flags.Changed("skip-errors") {
		if err := set("skip_errors", strconv.FormatBool(opts.skipErrors)); err != nil {
			return err
		}
	}
	if opts.verbose > 0 {
		level := opts.verbose
		if level > 3 {
			level = 3
		}
		if err := set("level", strconv.Itoa(level)); err != nil {
			return err
		}
	}

	return nil
}

func runFind(cmd *cobra.Command, opts *options, dirs []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}

	finddup.InitLogging(cfg.GetVerboseConfig())

	finder, err := finddup.NewFinder(cfg)
	if err != nil {
		return err
	}

	shutdown, stopSignals := setupSignalHandler()
	defer stopSignals()

	result, err := finder.FindDuplicates(dirs, shutdown)
	if err != nil {
		return err
	}

	return finddup.WriteReport(cmd.OutOrStdout(), result, cfg.GetOutputConfig().Format)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the finddup version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finddup %s\n", Version)
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration files",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file plus --set overrides)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			_, err = cfg.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write a configuration file holding the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists", path)
			}
			cfg := finddup.NewDefaultConfig()
			if err := cfg.ApplyOverrides(opts.overrides); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}
