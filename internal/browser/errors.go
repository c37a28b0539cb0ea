// File: internal/browser/errors.go
package browser

import "fmt"

// LaunchError reports a failure to bring up an attached browser instance for
// an account: a bad binary path, an unbindable debug port, or the automation
// driver failing to attach within the retry window.
type LaunchError struct {
	AccountID string
	Err       error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch failed for account %q: %v", e.AccountID, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// HarvestError reports a failure to read the cookie jar from a live session,
// typically because the browser process exited or the debug endpoint became
// unreachable.
type HarvestError struct {
	AccountID string
	Err       error
}

func (e *HarvestError) Error() string {
	return fmt.Sprintf("cookie harvest failed for account %q: %v", e.AccountID, e.Err)
}

func (e *HarvestError) Unwrap() error { return e.Err }
