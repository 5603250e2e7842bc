// internal/cmdutil/exit.go
package cmdutil

// Shared exit codes across the umidemux commands.
const (
	ExitOK       = 0
	ExitPartial  = 1 // at least one population failed; others completed
	ExitUsage    = 2 // flag or configuration error
	ExitIO       = 3 // fatal I/O error outside any one population
	ExitCanceled = 130
)
