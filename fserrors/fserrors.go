// Package fserrors classifies the error kinds spec.md §7 names, the same
// way rclone's fs/fserrors package distinguishes no-retry from fatal
// errors: wrap the underlying cause in a small marker type and let callers
// errors.As it out rather than string-matching messages.
package fserrors

import (
	"errors"
	"fmt"
)

// TransientIOError marks a per-path stat/read/readlink failure. The caller
// treats the affected subpath as absent this pass; it is not a batch-level
// failure.
type TransientIOError struct {
	Path string
	Err  error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient I/O error on %s: %v", e.Path, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// NewTransientIO wraps err as a TransientIOError for path.
func NewTransientIO(path string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientIOError{Path: path, Err: err}
}

// ScanFailureError marks an exception thrown while computing signatures
// for a batch: log, re-enqueue the original batch, return to IDLE.
type ScanFailureError struct {
	Err error
}

func (e *ScanFailureError) Error() string { return fmt.Sprintf("scan failure: %v", e.Err) }
func (e *ScanFailureError) Unwrap() error { return e.Err }

// NewScanFailure wraps err as a ScanFailureError.
func NewScanFailure(err error) error {
	if err == nil {
		return nil
	}
	return &ScanFailureError{Err: err}
}

// StreamFailureError marks an exception thrown while streaming content
// chunks: log, re-enqueue, return to IDLE.
type StreamFailureError struct {
	Err error
}

func (e *StreamFailureError) Error() string { return fmt.Sprintf("stream failure: %v", e.Err) }
func (e *StreamFailureError) Unwrap() error { return e.Err }

// NewStreamFailure wraps err as a StreamFailureError.
func NewStreamFailure(err error) error {
	if err == nil {
		return nil
	}
	return &StreamFailureError{Err: err}
}

// RPCError marks a transport-level error: framing error, EOF, or a
// remote-reported error. It is always fatal: the orchestrator stops the
// loop and the close path re-raises it.
type RPCError struct {
	Err error
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error: %v", e.Err) }
func (e *RPCError) Unwrap() error { return e.Err }

// IsFatal always reports true for RPCError; it exists so callers can check
// fatality through a common interface without a type switch.
func (e *RPCError) IsFatal() bool { return true }

// NewRPCError wraps err as an RPCError.
func NewRPCError(err error) error {
	if err == nil {
		return nil
	}
	return &RPCError{Err: err}
}

// ErrInterrupted signals a cooperative shutdown request: the running flag
// was cleared, or a blocking operation was interrupted. It unwinds cleanly
// and is never treated as a sync failure.
var ErrInterrupted = errors.New("interrupted: shutting down")

// fatal is implemented by error kinds that must stop the orchestrator loop.
type fatal interface {
	IsFatal() bool
}

// IsFatal reports whether err (or anything it wraps) is a fatal
// transport-level error per spec.md §7's policy table, or ErrInterrupted;
// both stop the orchestrator loop.
func IsFatal(err error) bool {
	var f fatal
	if errors.As(err, &f) {
		return f.IsFatal()
	}
	return errors.Is(err, ErrInterrupted)
}
