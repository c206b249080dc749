package micsync

import (
	"fmt"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// StageError represents a failure during one pipeline stage. It wraps the
// stage's own error (source.FetchError, parser.ConversionError,
// publish.PublishError or config.ConfigurationError).
type StageError struct {
	Stage  models.Stage
	Target string // source location, sheet name or s3:// URI
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", stageVerb(e.Stage), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stage models.Stage, target string, err error) *StageError {
	return &StageError{
		Stage:  stage,
		Target: target,
		Err:    err,
	}
}

func stageVerb(stage models.Stage) string {
	switch stage {
	case models.StageConfiguring:
		return "configuration"
	case models.StageFetching:
		return "fetch"
	case models.StageConverting:
		return "conversion"
	case models.StagePublishing:
		return "publish"
	default:
		return string(stage)
	}
}
