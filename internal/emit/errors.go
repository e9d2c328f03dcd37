package emit

import "errors"

// ErrEmit wraps packaging-tool invocation failures (§7's EmitError).
var ErrEmit = errors.New("emit")

// ErrSign wraps GPG signing failures, distinct from ErrEmit so a
// caller can tell "the package built fine but signing failed" apart
// from an outright packaging failure.
var ErrSign = errors.New("emit: sign")
