/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Utility commands for cyskel. Provides the rules listing of the active
heuristic tables and the self-check that validates configuration, output locations,
the result cache and the graph connection before a long batch run.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/cyskel/pkg/cache"
	"github.com/kleascm/cyskel/pkg/graph"
	"github.com/kleascm/cyskel/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ListRules prints the keyword tables and type rules in effect
func ListRules(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	config, err := BuildConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// not bound to viper: a rules.* key would shadow the rules list from the config file
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		doc := struct {
			Symbols interface{} `yaml:"symbols"`
			Rules   interface{} `yaml:"rules"`
		}{config.Symbols, config.Rules}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode rules: %w", err)
		}
		return enc.Close()
	}

	fmt.Fprintln(out, "🧩 cyskel - Active Heuristics")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	tables := []struct {
		name    string
		purpose string
		entries []string
	}{
		{"loader_blocklist", "rejected from symbol paths", config.Symbols.LoaderBlocklist},
		{"compiler_markers", "dropped from the raw string set", config.Symbols.CompilerMarkers},
		{"comment_markers", "select docstring fragments", config.Symbols.CommentMarkers},
		{"library_suffixes", "shared-library filename endings", config.Symbols.LibrarySuffixes},
		{"library_infixes", "shared-library version infixes", config.Symbols.LibraryInfixes},
		{"source_suffixes", "source filename endings", config.Symbols.SourceSuffixes},
	}
	for _, t := range tables {
		fmt.Fprintf(out, "%s (%s)\n", t.name, t.purpose)
		fmt.Fprintf(out, "   %s\n", strings.Join(t.entries, ", "))
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "type rules (first match wins, everything else starts as UNKNOWN)")
	for i, r := range config.Rules {
		fmt.Fprintf(out, "%d. %s <- %s\n", i+1, r.Type, strings.Join(r.Substrings, ", "))
	}
	return nil
}

// PerformSelfCheck validates the environment before analysis
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 cyskel - System Self-Check")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	checks := []struct {
		name     string
		function func() (string, error)
	}{
		{"Configuration Validation", checkConfiguration},
		{"Log Directory", checkLogDirectory},
		{"Result Cache", checkCache},
		{"Neo4j Connectivity", func() (string, error) { return checkGraph(ctx) }},
	}

	passed := 0
	for _, check := range checks {
		fmt.Fprintf(out, "🔍 %s... ", check.name)
		note, err := check.function()
		switch {
		case err != nil:
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
		case note != "":
			fmt.Fprintf(out, "✅ PASSED (%s)\n", note)
			passed++
		default:
			fmt.Fprintln(out, "✅ PASSED")
			passed++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, len(checks))

	if passed != len(checks) {
		return fmt.Errorf("%d/%d checks failed", len(checks)-passed, len(checks))
	}
	return nil
}

// checkConfiguration validates the analysis tables and the report format
func checkConfiguration() (string, error) {
	config, err := BuildConfig()
	if err != nil {
		return "", err
	}
	if _, err := NewRenderer(config); err != nil {
		return "", err
	}
	return "format " + config.Report.Format, nil
}

// checkLogDirectory verifies the log directory is writable and reports its usage
func checkLogDirectory() (string, error) {
	dir := viper.GetString("log_dir")
	if dir == "" {
		return "console only", nil
	}
	if err := checkWritable(dir); err != nil {
		return "", err
	}

	stats, err := logging.NewLogManager(dir, 1, 1, false).GetLogStats()
	if err != nil {
		return "", err
	}
	return stats.String(), nil
}

// checkCache opens the cache database and counts its entries
func checkCache() (string, error) {
	path := viper.GetString("cache.path")
	if path == "" {
		return "disabled", nil
	}

	store, err := cache.Open(path)
	if err != nil {
		return "", err
	}
	defer store.Close()

	n, err := store.Len()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d cached results", n), nil
}

// checkGraph verifies the Neo4j credentials when an export target is configured
func checkGraph(ctx context.Context) (string, error) {
	config := BuildGraphConfig()
	if !config.Enabled() {
		return "not configured", nil
	}

	exporter, err := graph.NewExporter(config, nil)
	if err != nil {
		return "", err
	}
	defer exporter.Close(ctx)

	if err := exporter.VerifyConnectivity(ctx); err != nil {
		return "", err
	}
	return config.URI, nil
}

// checkWritable creates dir if needed and writes a probe file into it
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".cyskel_write_test")
	if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	return os.Remove(probe)
}
