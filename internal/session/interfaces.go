// File: internal/session/interfaces.go
package session

import "context"

// Handle is the registry's view of a live browser session. The concrete
// implementation lives in the browser package; tests substitute fakes.
type Handle interface {
	AccountID() string
	DebugEndpoint() string
	ProfileDir() string
	// Terminate tears the browser down. Best-effort: the registry logs and
	// swallows the returned error so state transitions always complete.
	Terminate() error
}

// Launcher starts an isolated browser for one account slot.
type Launcher interface {
	Launch(ctx context.Context, accountID, secret string, ordinal int) (Handle, error)
}

// CookieHarvester extracts the flat cookie mapping from a live handle.
type CookieHarvester interface {
	Harvest(ctx context.Context, h Handle) (map[string]string, error)
}
