package scheduler

import "errors"

// ErrScheduler wraps failures originating in the scheduler itself,
// distinct from the job failures it collects into a Report.
var ErrScheduler = errors.New("scheduler")
