// File: internal/session/state.go
package session

import "time"

// State is the lifecycle state of one account's login cycle.
type State string

const (
	// StateNotStarted means no login cycle has been requested yet.
	StateNotStarted State = "not_started"
	// StateLaunchPending means the launcher has been invoked for the account.
	StateLaunchPending State = "launch_pending"
	// StateReadyForManualLogin means a browser window is up and the system is
	// waiting for the operator to finish the interactive login.
	StateReadyForManualLogin State = "ready_for_manual_login"
	// StateCompleted means cookies were harvested and the browser torn down.
	StateCompleted State = "completed"
	// StateFailed means the launch or the harvest failed.
	StateFailed State = "failed"
	// StateCancelled means the operator abandoned the pending login.
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further automatic transition can occur; a
// fresh login request restarts the whole cycle for the account.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// HarvestedSession is an authenticated identity reduced to a cookie
// name-to-value mapping, decoupled from the browser that produced it.
// Values are immutable once created; a re-login yields a new one.
type HarvestedSession struct {
	AccountID  string            `json:"account_id"`
	Cookies    map[string]string `json:"cookies"`
	CapturedAt time.Time         `json:"captured_at"`
}

// Account pairs a login identifier with its secret for the launch batch.
type Account struct {
	ID     string
	Secret string
}

// AccountStatus is a point-in-time view of one account, for the operator
// surface.
type AccountStatus struct {
	AccountID     string
	State         State
	DebugEndpoint string
	Err           error
}
