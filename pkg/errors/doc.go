// Package errors provides structured error types for tracecollect.
//
// Every failure that reaches the operator carries an ErrorCode that places it
// in one of the collection error classes:
//
//   - ErrCodeInvalidRequest: bad provider/logger specs or flags; collection never starts
//   - ErrCodePrecondition: destination trace file or control file already present
//   - ErrCodeTransientIO: a segment could not be decoded; retried, then abandoned
//   - ErrCodeCleanup: a consumed segment or control file could not be removed
//   - ErrCodePlatform: the requested collection mode is not available on this OS
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodePrecondition,
//	    "control file already present",
//	    collector.ErrControlFileExists,
//	    map[string]any{
//	        "path": path,
//	        "pid":  pid,
//	    },
//	)
package errors
