// File: internal/session/registry.go
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry owns the lifecycle state of every account's login cycle. It is
// the sole writer of session state and the sole owner of live browser
// handles: all mutations go through the transitions below, never ad-hoc
// writes.
type Registry struct {
	launcher  Launcher
	harvester CookieHarvester
	logger    *zap.Logger

	mu        sync.Mutex
	states    map[string]State
	live      map[string]Handle
	lastErr   map[string]error
	harvested map[string]*HarvestedSession
}

// NewRegistry creates an empty registry wired to a launcher and a harvester.
func NewRegistry(launcher Launcher, harvester CookieHarvester, logger *zap.Logger) *Registry {
	return &Registry{
		launcher:  launcher,
		harvester: harvester,
		logger:    logger.Named("registry"),
		states:    make(map[string]State),
		live:      make(map[string]Handle),
		lastErr:   make(map[string]error),
		harvested: make(map[string]*HarvestedSession),
	}
}

// StartBatch launches browsers for every account in the slice, in order; the
// slice index is the ordinal that partitions debug ports. Launches run in a
// plain sequential loop since process spawn dominates the cost, and one
// account's failure never aborts its siblings. The call returns as soon as
// every browser is up; the interactive logins proceed unattended until the
// operator confirms them one at a time.
func (r *Registry) StartBatch(ctx context.Context, accounts []Account) {
	for i, acct := range accounts {
		if err := r.startOne(ctx, acct, i); err != nil {
			r.logger.Warn("Account skipped in launch batch.",
				zap.String("account", acct.ID), zap.Error(err))
		}
	}
}

// startOne runs NotStarted -> LaunchPending -> ReadyForManualLogin|Failed
// for a single account.
func (r *Registry) startOne(ctx context.Context, acct Account, ordinal int) error {
	r.mu.Lock()
	if st := r.stateLocked(acct.ID); !st.Terminal() && st != StateNotStarted {
		r.mu.Unlock()
		return fmt.Errorf("account %q already has a session in state %q", acct.ID, st)
	}
	r.states[acct.ID] = StateLaunchPending
	delete(r.lastErr, acct.ID)
	r.mu.Unlock()

	handle, err := r.launcher.Launch(ctx, acct.ID, acct.Secret, ordinal)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.states[acct.ID] = StateFailed
		r.lastErr[acct.ID] = err
		r.logger.Error("Browser launch failed.", zap.String("account", acct.ID), zap.Error(err))
		return nil
	}
	r.live[acct.ID] = handle
	r.states[acct.ID] = StateReadyForManualLogin
	r.logger.Info("Browser ready for manual login.",
		zap.String("account", acct.ID),
		zap.String("endpoint", handle.DebugEndpoint()))
	return nil
}

// ConfirmLogin is the operator's "login complete" event for one account. It
// harvests the cookie jar, tears the browser down, and transitions the
// account to Completed. On harvest failure the account transitions to Failed
// instead; either way the browser is terminated and the account leaves the
// live set.
func (r *Registry) ConfirmLogin(ctx context.Context, accountID string) (*HarvestedSession, error) {
	handle, err := r.claim(accountID, StateCompleted)
	if err != nil {
		return nil, err
	}

	cookies, harvestErr := r.harvester.Harvest(ctx, handle)
	r.teardown(handle)

	r.mu.Lock()
	defer r.mu.Unlock()
	// claim marked the account Completed before the harvest ran outside the
	// lock. A fresh cycle may have restarted the account in that window; its
	// state must not be clobbered here.
	settled := r.states[accountID] == StateCompleted

	if harvestErr != nil {
		if settled {
			r.states[accountID] = StateFailed
			r.lastErr[accountID] = harvestErr
		}
		return nil, harvestErr
	}

	hs := &HarvestedSession{
		AccountID:  accountID,
		Cookies:    cookies,
		CapturedAt: time.Now(),
	}
	if settled {
		r.harvested[accountID] = hs
	}
	r.logger.Info("Login confirmed and session harvested.",
		zap.String("account", accountID), zap.Int("cookies", len(cookies)))
	return hs, nil
}

// Cancel abandons a pending login. The browser is terminated best-effort and
// the account always leaves the live set, even when termination errors.
func (r *Registry) Cancel(accountID string) error {
	handle, err := r.claim(accountID, StateCancelled)
	if err != nil {
		return err
	}
	r.teardown(handle)
	r.logger.Info("Login cancelled.", zap.String("account", accountID))
	return nil
}

// CancelAll cancels every account still waiting for manual login.
// Terminations fan out concurrently; each failure is already logged and
// swallowed by Cancel, so the group only propagates bookkeeping errors.
func (r *Registry) CancelAll(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]string, 0, len(r.live))
	for id := range r.live {
		pending = append(pending, id)
	}
	r.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, id := range pending {
		g.Go(func() error { return r.Cancel(id) })
	}
	return g.Wait()
}

// claim atomically takes ownership of a live handle and applies the terminal
// state. The account is removed from the live set inside the same critical
// section, so a transition is never observed half-applied and no second
// operator event can claim the same handle.
func (r *Registry) claim(accountID string, next State) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st := r.stateLocked(accountID); st != StateReadyForManualLogin {
		return nil, fmt.Errorf("account %q is in state %q, not awaiting manual login", accountID, st)
	}
	handle, ok := r.live[accountID]
	if !ok {
		return nil, fmt.Errorf("account %q has no live browser handle", accountID)
	}
	delete(r.live, accountID)
	r.states[accountID] = next
	return handle, nil
}

// teardown terminates a browser best-effort. Secondary errors are logged and
// swallowed; the primary state transition has already been applied.
func (r *Registry) teardown(handle Handle) {
	if err := handle.Terminate(); err != nil {
		r.logger.Warn("Best-effort browser termination reported an error.",
			zap.String("account", handle.AccountID()), zap.Error(err))
	}
}

// Harvested returns the most recent harvested session for the account, if
// one exists.
func (r *Registry) Harvested(accountID string) (*HarvestedSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hs, ok := r.harvested[accountID]
	return hs, ok
}

// State returns the account's current lifecycle state.
func (r *Registry) State(accountID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(accountID)
}

// LiveCount reports how many accounts are still awaiting manual login.
func (r *Registry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Snapshot returns a stable, sorted view of every tracked account for the
// operator surface.
func (r *Registry) Snapshot() []AccountStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]AccountStatus, 0, len(r.states))
	for id, st := range r.states {
		status := AccountStatus{AccountID: id, State: st, Err: r.lastErr[id]}
		if h, ok := r.live[id]; ok {
			status.DebugEndpoint = h.DebugEndpoint()
		}
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

func (r *Registry) stateLocked(accountID string) State {
	if st, ok := r.states[accountID]; ok {
		return st
	}
	return StateNotStarted
}
