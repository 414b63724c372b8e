/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: batch.go
Description: Batch command implementation for cyskel. Walks a directory of compiled
binaries, writes one report per eligible file into a mirrored output tree and prints
a summary of the run.
*/

package commands

import (
	"fmt"
	"io"

	"github.com/kleascm/cyskel/pkg/core"
	"github.com/kleascm/cyskel/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunBatch analyzes every eligible binary below args[0], mirroring reports into args[1]
func RunBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	config := core.BatchConfig{
		SourceDir: args[0],
		Include:   viper.GetStringSlice("batch.include"),
		Exclude:   viper.GetStringSlice("batch.exclude"),
		Workers:   viper.GetInt("batch.workers"),
		FailFast:  viper.GetBool("batch.fail_fast"),
	}
	if len(args) > 1 {
		config.TargetDir = args[1]
	}

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	runner := core.NewBatchRunner(config, p.analyzer, p.renderer, p.logger.GetLogger())
	runner.AddReporter(core.NewLoggerReporter(p.logger))
	if p.exporter != nil {
		runner.SetExporter(p.exporter)
	}

	summary, runErr := runner.Run(ctx)
	if summary == nil {
		return runErr
	}

	printBatchSummary(out, summary)
	p.logger.LogBatch(summary.Stats.Analyzed, summary.Stats.Cached, summary.Stats.Failed, summary.Stats.Duration, nil)

	if dir := viper.GetString("batch.summary_dir"); dir != "" {
		path, err := utils.WriteRunSummary(dir, "batch", Version, summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "📝 Summary written to %s\n", path)
	}

	if runErr != nil {
		return runErr
	}
	if n := len(summary.Failures); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, summary.Stats.Discovered)
	}
	return nil
}

// printBatchSummary prints the run statistics and any failures
func printBatchSummary(out io.Writer, summary *core.BatchSummary) {
	stats := summary.Stats

	fmt.Fprintln(out, "📊 Batch Summary")
	fmt.Fprintln(out, "================")
	fmt.Fprintf(out, "Discovered: %d\n", stats.Discovered)
	fmt.Fprintf(out, "Analyzed:   %d (%d from cache)\n", stats.Analyzed, stats.Cached)
	fmt.Fprintf(out, "Failed:     %d\n", stats.Failed)
	fmt.Fprintf(out, "Entities:   %d\n", stats.Entities)
	fmt.Fprintf(out, "Duration:   %v\n", stats.Duration)

	if len(summary.Failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "❌ Failures:")
		for _, f := range summary.Failures {
			fmt.Fprintf(out, "  %s: %s\n", f.Path, f.Err)
		}
	}
}
