package models

// Stage names a step of the pipeline.
type Stage string

const (
	StageConfiguring Stage = "configuring"
	StageFetching    Stage = "fetching"
	StageConverting  Stage = "converting"
	StagePublishing  Stage = "publishing"
	StageDone        Stage = "done"
)

// PipelineResult is the uniform outcome of one pipeline run.
// Location is set when Succeeded is true; Message is set otherwise.
type PipelineResult struct {
	Succeeded bool    `json:"succeeded"`
	Location  *string `json:"location"`
	Message   *string `json:"message"`
	// Stage is the stage the run ended in.
	Stage Stage `json:"stage,omitempty"`
	// Records is the number of records published.
	Records int `json:"records,omitempty"`
}

// Success builds a successful result pointing at location.
func Success(location string, records int) PipelineResult {
	return PipelineResult{
		Succeeded: true,
		Location:  &location,
		Stage:     StageDone,
		Records:   records,
	}
}

// Failure builds a failed result for the given stage.
func Failure(stage Stage, message string) PipelineResult {
	return PipelineResult{
		Succeeded: false,
		Message:   &message,
		Stage:     stage,
	}
}
