// Package main provides the CLI entry point for micsync.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/config"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/logging"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/output"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/parser"
)

var (
	envFile    string
	sheetName  string
	sheetRange string
	workFile   string
	bucket     string
	objectKey  string
	region     string
	endpoint   string
	outputPath string
	pretty     bool
	dryRun     bool
	logLevel   string
	logFormat  string
)

// errRunFailed signals a failed result that has already been printed.
var errRunFailed = errors.New("run failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "micsync",
		Short: "Publish the ISO 10383 MIC registry as JSON",
		Long: `micsync converts a sheet of the ISO 10383 Market Identifier Code registry
spreadsheet into a JSON array and publishes it to S3 with public-read access.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newPublishCmd(), newConvertCmd())
	return rootCmd
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [source]",
		Short: "Fetch, convert and publish the registry",
		Long: `Fetch the registry spreadsheet from a local path or URL, convert the
configured sheet to JSON and upload it to S3. Settings come from the
environment (optionally a .env file); flags override them. The result is
printed to stdout as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPublish,
	}

	flags := cmd.Flags()
	flags.StringVar(&envFile, "env-file", "", "Dotenv file to load (default: ./.env if present)")
	flags.StringVar(&sheetName, "sheet", config.DefaultSheetName, "Sheet name (exact match)")
	flags.StringVar(&sheetRange, "range", "", "A1 range to convert (default: detect data region)")
	flags.StringVar(&workFile, "work-file", "", "Working file path for the downloaded spreadsheet")
	flags.StringVar(&bucket, "bucket", "", "Destination bucket")
	flags.StringVar(&objectKey, "key", config.DefaultObjectKey, "Destination object key")
	flags.StringVar(&region, "region", config.DefaultRegion, "Bucket region")
	flags.StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint override")
	flags.StringVarP(&outputPath, "output", "o", "", "Also write the JSON payload to this file")
	flags.BoolVar(&pretty, "pretty", false, "Pretty-print the published payload and the printed result")
	flags.BoolVar(&dryRun, "dry-run", false, "Convert without publishing (requires --output)")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "Log format: text, json")

	return cmd
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input.xlsx]",
		Short: "Convert a local workbook sheet to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}

	flags := cmd.Flags()
	flags.StringVar(&sheetName, "sheet", config.DefaultSheetName, "Sheet name (exact match)")
	flags.StringVar(&sheetRange, "range", "", "A1 range to convert (default: detect data region)")
	flags.StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		logger := logging.Setup(logLevel, logFormat)
		return printResult(cmd, micsync.ConfigFailure(err, logger))
	}

	applyFlags(cmd.Flags(), cfg, args)
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Debug("configuration loaded", "config", cfg)

	result := micsync.Execute(context.Background(), cfg, logger)
	return printResult(cmd, result)
}

// applyFlags overrides configuration with flags the user set explicitly.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config, args []string) {
	if len(args) == 1 {
		cfg.SourceLocation = args[0]
	}

	overrides := map[string]*string{
		"sheet":      &cfg.SheetName,
		"range":      &cfg.SheetRange,
		"work-file":  &cfg.WorkFile,
		"bucket":     &cfg.Bucket,
		"key":        &cfg.ObjectKey,
		"region":     &cfg.Region,
		"endpoint":   &cfg.Endpoint,
		"output":     &cfg.OutputPath,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	for name, dst := range overrides {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	// Matches the lowercasing LoadFromEnv applies to LOG_LEVEL and LOG_FORMAT.
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if flags.Changed("pretty") {
		cfg.Pretty = pretty
	}
}

func printResult(cmd *cobra.Command, result models.PipelineResult) error {
	data, err := output.ResultToJSON(result, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	if !result.Succeeded {
		return errRunFailed
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	rs, err := parser.ConvertSheet(inputPath, sheetName, parser.Options{Range: sheetRange})
	if err != nil {
		return err
	}

	// Serialize to JSON
	jsonData, err := output.ToJSON(rs, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	// Write output
	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
