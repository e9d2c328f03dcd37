// Package errctx provides the error-wrapping helpers used throughout pkger.
//
// cruxd wraps package-level sentinel errors through a private helper
// (github.com/cruciblehq/crex's Wrap/Wrapf) that, like the logging handler
// in internal/logctx, lives in an unpublished module this repository cannot
// fetch. Wrap and Wrapf below reproduce the same two-call shape — attach a
// sentinel category to an underlying cause, or attach one with a formatted
// message — over fmt.Errorf's standard %w chaining, so every package in this
// repository can keep cruxd's "sentinel + errors.Is/As" error-handling style
// (§7: outer context first, inner root cause last).
package errctx

import "fmt"

// Wrap attaches the sentinel category to cause, preserving cause for
// errors.Is/errors.As.
func Wrap(category, cause error) error {
	return fmt.Errorf("%w: %w", category, cause)
}

// Wrapf attaches the sentinel category to a formatted message, preserving
// any %w verb within format for errors.Is/errors.As.
func Wrapf(category error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{category}, args...)...)
}
