// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols shared by the CLI and the run report.
const (
	// Success marks a completed operation, such as a source that yielded new data.
	Success = "✓"

	// Idle marks an operation that ran but had nothing to do.
	Idle = "○"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks a non-fatal problem such as schema drift.
	Warning = "!"

	// Info marks an informational message.
	Info = "i"
)
