package outwriter

import (
	"os"

	"github.com/ArnoldoM23/pess/internal/contract"
	"golang.org/x/term"
)

// getMaxTableSessionWidth calculates the maximum width for session IDs in table
// output based on terminal width and table configuration.
func getMaxTableSessionWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 45 // Rank + Score + Label + Confidence with borders/padding

	if cfg.Detail {
		baseWidth += 40 // Quality + Hash + Weak Dimensions columns with formatting
	}

	// Reserve generous space for table borders, separators, and padding
	baseWidth += 15

	// Calculate available space for the session ID
	available := termWidth - baseWidth
	if available < 12 {
		// Minimum reasonable session ID width
		return 12
	}
	if available > 50 {
		// Maximum width to prevent overly long IDs
		return 50
	}
	return available
}
