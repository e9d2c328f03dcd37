package job

import "errors"

var (
	// ErrJob covers failures that abort a job outright (I/O, engine
	// errors not otherwise categorized).
	ErrJob = errors.New("job")

	// ErrStepFailed wraps a non-zero exit from a configure/build/install
	// step (§4.5: StepFailed{phase, index}).
	ErrStepFailed = errors.New("step failed")

	// ErrCancelled marks a job that observed cancellation between steps.
	ErrCancelled = errors.New("job cancelled")
)
