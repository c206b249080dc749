// Package micsync converts the ISO 10383 MIC registry spreadsheet to JSON
// and publishes it to object storage.
package micsync

import (
	"time"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/config"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// Options configures a pipeline run.
type Options struct {
	// SourceLocation is a local path or http(s) URL of the spreadsheet.
	SourceLocation string
	// SheetName is the exact name of the sheet to convert.
	SheetName string
	// Target is where the payload is published.
	Target models.PublishTarget
	// OutputPath, if set, receives a local copy of the JSON payload.
	OutputPath string
	// Pretty indents the JSON payload.
	Pretty bool
	// DryRun skips publishing; the result location points at OutputPath.
	DryRun bool
	// PublishTimeout bounds the upload. Zero means no extra deadline.
	PublishTimeout time.Duration
}

// OptionsFromConfig derives run options from a validated configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SourceLocation: cfg.SourceLocation,
		SheetName:      cfg.SheetName,
		Target:         cfg.Target(),
		OutputPath:     cfg.OutputPath,
		Pretty:         cfg.Pretty,
		DryRun:         cfg.DryRun,
		PublishTimeout: cfg.PublishTimeout,
	}
}
