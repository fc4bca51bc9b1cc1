package cmd

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/axtract/api/schemas"
	"github.com/xkilldash9x/axtract/internal/config"
	"github.com/xkilldash9x/axtract/internal/extract"
	"github.com/xkilldash9x/axtract/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newExtractCmd creates and configures the `extract` command.
func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extracts accessibility profiles from HTML documents",
		Long: `Extract parses each HTML input and emits one result per document:
an array of element records carrying the accessible name, a unique CSS
selector, a robust XPath, and audit attributes. Pass "-" (or no
arguments) to read a single document from stdin.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so command-line values override the config file and
			// environment with the right precedence.
			if err := viper.BindPFlag("extractor.ancestor_depth_ceiling", cmd.Flags().Lookup("depth")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config with flag overrides: %w", err)
			}

			cfg.Run = config.RunConfig{
				Inputs:      args,
				Output:      viper.GetString("output"),
				Pretty:      viper.GetBool("pretty"),
				Concurrency: viper.GetInt("concurrency"),
			}
			if len(cfg.Run.Inputs) == 0 {
				cfg.Run.Inputs = []string{"-"}
			}
			if cfg.Run.Concurrency <= 0 {
				cfg.Run.Concurrency = 4
			}

			results, err := runExtraction(cfg, logger)
			if err != nil {
				return err
			}
			return writeResults(results, cfg.Run)
		},
	}

	extractCmd.Flags().StringP("output", "o", "", "Output file path. If unset, results go to stdout.")
	extractCmd.Flags().Bool("pretty", false, "Indent the JSON output.")
	extractCmd.Flags().IntP("concurrency", "j", 4, "Number of documents processed in parallel.")
	extractCmd.Flags().IntP("depth", "d", 0, "Ancestor depth ceiling for selector escalation. (Overrides config/env)")

	return extractCmd
}

// runExtraction processes every input concurrently. Each document gets its
// own extraction context; results keep input order. A failing input fails
// the run, since a silently missing document would corrupt the batch.
func runExtraction(cfg *config.Config, logger *zap.Logger) ([]schemas.Result, error) {
	extractor := extract.New(cfg.Extractor, logger)

	results := make([]schemas.Result, len(cfg.Run.Inputs))
	var g errgroup.Group
	g.SetLimit(cfg.Run.Concurrency)

	for i, input := range cfg.Run.Inputs {
		i, input := i, input
		g.Go(func() error {
			markup, err := readInput(input)
			if err != nil {
				return fmt.Errorf("reading %s: %w", input, err)
			}

			records, err := extractor.Extract(markup)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", input, err)
			}

			logger.Info("Document processed",
				zap.String("source", input),
				zap.Int("elements", len(records)))

			results[i] = schemas.Result{
				Source:   input,
				Count:    len(records),
				Elements: records,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readInput loads one document, treating "-" as stdin.
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeResults serializes the batch to the configured destination.
func writeResults(results []schemas.Result, run config.RunConfig) error {
	var (
		data []byte
		err  error
	)
	if run.Pretty {
		data, err = json.MarshalIndent(results, "", "  ")
	} else {
		data, err = json.Marshal(results)
	}
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	data = append(data, '\n')

	if run.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(run.Output, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
