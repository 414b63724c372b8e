/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for cyskel. Reconstructs the Python class
hierarchy of Cython-compiled binaries from their printable strings, with configuration
from flags, a config file or CYSKEL_* environment variables.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/cyskel/cmd/cyskel/commands"
	"github.com/kleascm/cyskel/pkg/extract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cyskel",
		Short: "cyskel - Cython binary skeleton reconstruction",
		Long: `cyskel recovers the package, module, class and method layout of Cython-compiled
Python extensions and executables. It reads the printable strings of each binary,
keeps the dotted symbol paths, and infers the hierarchy they describe.`,
		Version:       commands.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty = console only)")
	rootCmd.PersistentFlags().Bool("syslog", false, "Also send logs to syslog")
	rootCmd.PersistentFlags().String("syslog-network", "", "Syslog network (udp, tcp; empty = local daemon)")
	rootCmd.PersistentFlags().String("syslog-address", "", "Syslog address, e.g. localhost:514")

	rootCmd.PersistentFlags().Int("min-length", extract.DefaultMinLength, "Minimum printable run length")
	rootCmd.PersistentFlags().Bool("only-interesting", false, "Drop string runs that look like noise")
	rootCmd.PersistentFlags().String("format", "skel", "Report format (skel, json, yaml, html)")
	rootCmd.PersistentFlags().Bool("show-unknown", false, "Render UNKNOWN entities in text and HTML reports")
	rootCmd.PersistentFlags().Bool("include-raw", false, "Append the full raw string set to reports")
	rootCmd.PersistentFlags().String("cache", "", "Result cache database path (empty = disabled)")

	rootCmd.PersistentFlags().String("neo4j-uri", "", "Neo4j URI for graph export (empty = disabled)")
	rootCmd.PersistentFlags().String("neo4j-user", "neo4j", "Neo4j user")
	rootCmd.PersistentFlags().String("neo4j-password", "", "Neo4j password")
	rootCmd.PersistentFlags().String("neo4j-database", "", "Neo4j database (empty = server default)")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_syslog.enabled", rootCmd.PersistentFlags().Lookup("syslog"))
	viper.BindPFlag("log_syslog.network", rootCmd.PersistentFlags().Lookup("syslog-network"))
	viper.BindPFlag("log_syslog.address", rootCmd.PersistentFlags().Lookup("syslog-address"))
	viper.BindPFlag("extract.min_length", rootCmd.PersistentFlags().Lookup("min-length"))
	viper.BindPFlag("extract.only_interesting", rootCmd.PersistentFlags().Lookup("only-interesting"))
	viper.BindPFlag("report.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("report.show_unknown", rootCmd.PersistentFlags().Lookup("show-unknown"))
	viper.BindPFlag("report.include_raw", rootCmd.PersistentFlags().Lookup("include-raw"))
	viper.BindPFlag("cache.path", rootCmd.PersistentFlags().Lookup("cache"))
	viper.BindPFlag("graph.uri", rootCmd.PersistentFlags().Lookup("neo4j-uri"))
	viper.BindPFlag("graph.user", rootCmd.PersistentFlags().Lookup("neo4j-user"))
	viper.BindPFlag("graph.password", rootCmd.PersistentFlags().Lookup("neo4j-password"))
	viper.BindPFlag("graph.database", rootCmd.PersistentFlags().Lookup("neo4j-database"))

	// Add analyze command
	analyzeCmd := &cobra.Command{
		Use:   "analyze <binary>...",
		Short: "Reconstruct the skeleton of one or more binaries",
		Long: `Analyze each binary and print its skeleton report. Use --output to write a
single report to a file, or --save to write each report beside its binary.`,
		Args: cobra.MinimumNArgs(1),
		RunE: commands.RunAnalyze,
	}
	analyzeCmd.Flags().StringP("output", "o", "", "Write the report to this file")
	analyzeCmd.Flags().Bool("save", false, "Write each report beside its binary")
	viper.BindPFlag("analyze.output", analyzeCmd.Flags().Lookup("output"))
	viper.BindPFlag("analyze.save", analyzeCmd.Flags().Lookup("save"))
	rootCmd.AddCommand(analyzeCmd)

	// Add batch command
	batchCmd := &cobra.Command{
		Use:   "batch <source-dir> [target-dir]",
		Short: "Reconstruct every eligible binary below a directory",
		Long: `Walk the source directory, analyze every file matching the include globs and
none of the exclude globs, and write one report per binary. Reports mirror the source
layout below the target directory, or sit beside each binary when no target is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: commands.RunBatch,
	}
	batchCmd.Flags().StringSlice("include", nil, "Glob patterns of eligible files (default **.so, **.elf)")
	batchCmd.Flags().StringSlice("exclude", nil, "Glob patterns removed from the eligible set")
	batchCmd.Flags().Int("workers", 0, "Number of concurrent files (0 = auto-detect)")
	batchCmd.Flags().Bool("fail-fast", false, "Stop at the first failing file")
	batchCmd.Flags().String("summary-dir", "", "Write a JSON run summary below this directory")
	viper.BindPFlag("batch.include", batchCmd.Flags().Lookup("include"))
	viper.BindPFlag("batch.exclude", batchCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
	viper.BindPFlag("batch.fail_fast", batchCmd.Flags().Lookup("fail-fast"))
	viper.BindPFlag("batch.summary_dir", batchCmd.Flags().Lookup("summary-dir"))
	rootCmd.AddCommand(batchCmd)

	// Add rules command
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active keyword tables and type rules",
		RunE:  commands.ListRules,
	}
	rulesCmd.Flags().Bool("yaml", false, "Print the tables as a YAML config fragment")
	rootCmd.AddCommand(rulesCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Validate the configuration, the log directory, the result cache and the Neo4j
connection. Useful before long batch runs and in CI.`,
		RunE: commands.PerformSelfCheck,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
