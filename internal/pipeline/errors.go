package pipeline

import (
	"errors"
	"fmt"

	"github.com/ppiankov/verifact/internal/model"
)

var (
	// ErrConfiguration is returned at construction when the reasoning backend cannot be set up
	ErrConfiguration = errors.New("pipeline configuration error")

	// ErrToolBackendUnavailable is returned at construction when a stage's required tool is missing
	ErrToolBackendUnavailable = errors.New("required tool backend unavailable")

	// ErrPipelineFailed matches every terminal stage failure
	ErrPipelineFailed = errors.New("verification pipeline failed")
)

// StageError records which stage ended a run.
// errors.Is matches both ErrPipelineFailed and the cause.
type StageError struct {
	Stage model.StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{ErrPipelineFailed, e.Err}
}
