package batch

import (
	"errors"
	"fmt"
)

// Disposition describes what a batch does with a processed item.
type Disposition int

// Dispositions supported by Outcome.
const (
	DispositionKeep Disposition = iota
	DispositionSkip
	DispositionAbort
)

const (
	dispositionKeepNameConstant    = "keep"
	dispositionSkipNameConstant    = "skip"
	dispositionAbortNameConstant   = "abort"
	dispositionUnknownNameConstant = "unknown"
	abortedErrorTemplateConstant   = "batch aborted: %v"
)

// ErrAbortCauseMissing indicates Abort was called without an error.
var ErrAbortCauseMissing = errors.New("batch aborted without cause")

// String returns the lowercase name of the disposition.
func (disposition Disposition) String() string {
	switch disposition {
	case DispositionKeep:
		return dispositionKeepNameConstant
	case DispositionSkip:
		return dispositionSkipNameConstant
	case DispositionAbort:
		return dispositionAbortNameConstant
	default:
		return dispositionUnknownNameConstant
	}
}

// Outcome is the explicit result of processing one item.
type Outcome[T any] struct {
	disposition Disposition
	value       T
	reason      error
}

// Keep wraps a successfully processed item.
func Keep[T any](value T) Outcome[T] {
	return Outcome[T]{disposition: DispositionKeep, value: value}
}

// Skip records an item that is dropped from the batch. The reason is informative only.
func Skip[T any](reason error) Outcome[T] {
	return Outcome[T]{disposition: DispositionSkip, reason: reason}
}

// Abort records a failure that stops the whole batch.
func Abort[T any](cause error) Outcome[T] {
	if cause == nil {
		cause = ErrAbortCauseMissing
	}
	return Outcome[T]{disposition: DispositionAbort, reason: cause}
}

// Fail skips the item unless fatal reports the failure as ending the whole batch.
func Fail[T any](failure error, fatal func(error) bool) Outcome[T] {
	if fatal != nil && fatal(failure) {
		return Abort[T](failure)
	}
	return Skip[T](failure)
}

// Disposition reports how the item was resolved.
func (outcome Outcome[T]) Disposition() Disposition {
	return outcome.disposition
}

// Value returns the kept item and whether the outcome holds one.
func (outcome Outcome[T]) Value() (T, bool) {
	return outcome.value, outcome.disposition == DispositionKeep
}

// Reason returns the skip reason or abort cause.
func (outcome Outcome[T]) Reason() error {
	return outcome.reason
}

// AbortedError is returned by Collect when an item aborts the batch.
type AbortedError struct {
	Cause error
}

// Error describes the abort.
func (abortedError AbortedError) Error() string {
	return fmt.Sprintf(abortedErrorTemplateConstant, abortedError.Cause)
}

// Unwrap exposes the abort cause.
func (abortedError AbortedError) Unwrap() error {
	return abortedError.Cause
}

// SkipHandler is notified for every skipped item.
type SkipHandler[I any] func(item I, reason error)

// Collect processes items in order. Kept values are returned in input order,
// skipped items are reported to onSkip, and the first abort stops processing.
func Collect[I any, T any](items []I, process func(index int, item I) Outcome[T], onSkip SkipHandler[I]) ([]T, error) {
	collected := make([]T, 0, len(items))
	for index, item := range items {
		outcome := process(index, item)
		switch outcome.Disposition() {
		case DispositionKeep:
			collected = append(collected, outcome.value)
		case DispositionSkip:
			if onSkip != nil {
				onSkip(item, outcome.Reason())
			}
		case DispositionAbort:
			return nil, AbortedError{Cause: outcome.Reason()}
		}
	}
	return collected, nil
}
