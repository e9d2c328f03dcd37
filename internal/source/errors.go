package source

import "errors"

var (
	// ErrSource covers failures resolving or retrieving a source or
	// patch entry (bad URL, missing local path, unsupported scheme).
	ErrSource = errors.New("source")

	// ErrPatchFailed wraps a non-zero exit from `patch -pN` (§4.3:
	// PatchFailed{patch, image}).
	ErrPatchFailed = errors.New("patch failed")

	// ErrUnreachable marks a fetch that exhausted retries against an
	// upstream that never recovered.
	ErrUnreachable = errors.New("source unreachable")
)
