// Package output maps library errors to exit codes and renders command
// results as text or JSON.
package output

// Exit codes, stable for scripting.
const (
	ExitOK      = 0 // Success
	ExitUsage   = 1 // Invalid arguments or flags
	ExitConfig  = 2 // Missing consumer credentials
	ExitAuth    = 3 // Authentication failed
	ExitNetwork = 4 // Connection/DNS/timeout error
	ExitAPI     = 5 // Server returned an error
)
