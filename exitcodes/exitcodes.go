// Package exitcodes defines the standard exit codes used by mcp-acceptor.
package exitcodes

// Exit code constants used by mcp-acceptor
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when all plugins pass successfully
// * TestFailure (1): Used when one or more plugins fail or are skipped
// * RuntimeErr (2): Used for runtime errors such as panics, connection
//   failures or configuration errors
const (
	Success     = 0 // All plugins pass
	TestFailure = 1 // Plugin failures
	RuntimeErr  = 2 // Runtime errors
)
