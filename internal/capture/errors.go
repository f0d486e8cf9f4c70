package capture

import (
	"fmt"
	"strings"
)

// InsufficientDataError means a transfer completed but delivered fewer
// bytes than the minimum plausible screen image. Recovered by retrying
// the next sequence, the forced downgrade, or the next candidate.
type InsufficientDataError struct {
	Got int
	Min int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("image data too small (%d bytes, need %d)", e.Got, e.Min)
}

// CaptureFailedError is the terminal failure: every candidate,
// including the forced downgrade, was exhausted. It is reported as a
// value; no failure in the capture path terminates the process.
type CaptureFailedError struct {
	Target   string
	Attempts []string
}

func (e *CaptureFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("capture from %s failed: no candidates", e.Target)
	}
	return fmt.Sprintf("capture from %s failed after %d attempt(s): %s",
		e.Target, len(e.Attempts), strings.Join(e.Attempts, "; "))
}
