package acceptor

import (
	"fmt"
	"time"

	"github.com/mcp-base/mcp-acceptor/types"
)

// getResultString returns the status marker shown in result tables. Color
// comes from the table style, not from the cell text.
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
