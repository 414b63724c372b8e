/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyze.go
Description: Analyze command implementation for cyskel. Reconstructs the skeleton of one
or more binaries and writes the report to stdout, to an explicit file, or beside each
binary.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunAnalyze reconstructs the skeleton of every binary named in args
func RunAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	output := viper.GetString("analyze.output")
	save := viper.GetBool("analyze.save")
	if output != "" && len(args) > 1 {
		return fmt.Errorf("--output accepts a single binary, got %d", len(args))
	}
	if output != "" && save {
		return fmt.Errorf("--output and --save are mutually exclusive")
	}

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	for _, path := range args {
		result, err := p.analyzer.AnalyzeFile(ctx, path)
		if err != nil {
			p.logger.LogFailure(path, err, nil)
			return err
		}

		switch {
		case output != "":
			err = p.renderer.Render(result, output)
		case save:
			err = p.renderer.Render(result, path+p.renderer.Extension())
		default:
			err = p.renderer.Write(cmd.OutOrStdout(), result)
		}
		if err != nil {
			return fmt.Errorf("failed to write report for %s: %w", path, err)
		}

		if p.exporter != nil {
			if err := p.exporter.Export(ctx, result); err != nil {
				return fmt.Errorf("failed to export %s: %w", path, err)
			}
		}

		p.logger.LogAnalysis(path, result.Summary.Entities, result.Duration, map[string]interface{}{
			"candidates": len(result.Candidates),
			"cached":     result.Cached,
			"run_id":     result.RunID,
		})
	}

	return nil
}
