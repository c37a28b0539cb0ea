// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const cookieReadTimeout = 10 * time.Second

// Session is a live, attached browser instance for one account. It owns the
// spawned Chrome process and the chromedp contexts bound to its debug
// endpoint. At most one live Session exists per account at a time; the
// session registry enforces that invariant.
type Session struct {
	accountID     string
	debugEndpoint string
	profileDir    string

	cmd         *exec.Cmd
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// AccountID returns the account this session belongs to.
func (s *Session) AccountID() string { return s.accountID }

// DebugEndpoint returns the host:port of the instance's debug surface.
func (s *Session) DebugEndpoint() string { return s.debugEndpoint }

// ProfileDir returns the persistent profile directory backing this session.
func (s *Session) ProfileDir() string { return s.profileDir }

// RawCookies reads the full cookie jar from the live browser context.
// It fails with a HarvestError when the session has been torn down or the
// debug connection has dropped. It does not check whether the cookies belong
// to an authenticated user; stale jars only surface at posting time.
func (s *Session) RawCookies(ctx context.Context) ([]*network.Cookie, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &HarvestError{AccountID: s.accountID, Err: fmt.Errorf("session already terminated")}
	}
	tabCtx := s.tabCtx
	s.mu.Unlock()

	readCtx, cancel := context.WithTimeout(ctx, cookieReadTimeout)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(combine(tabCtx, readCtx),
		chromedp.ActionFunc(func(c context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(c)
			return err
		}),
	)
	if err != nil {
		return nil, &HarvestError{AccountID: s.accountID, Err: err}
	}
	return cookies, nil
}

// Terminate tears the session down: detaches the automation driver and kills
// the browser process. It is safe to call more than once. Secondary errors
// are collected and returned for logging, but callers treat teardown as
// best-effort; the registry removes the account from its live set regardless.
func (s *Session) Terminate() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Terminating browser session.")

	if s.tabCancel != nil {
		s.tabCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}

	var err error
	if s.cmd != nil && s.cmd.Process != nil {
		if killErr := s.cmd.Process.Kill(); killErr != nil {
			err = fmt.Errorf("failed to kill browser process: %w", killErr)
		}
		// Reap the process off the caller's path.
		go func() { _ = s.cmd.Wait() }()
	}
	return err
}

// combine derives a context from tab that also honors op's cancellation and
// deadline. chromedp actions must run on a chromedp-derived context, so the
// operational context cannot be passed to Run directly.
func combine(tab, op context.Context) context.Context {
	var ctx context.Context
	var cancel context.CancelFunc
	if deadline, ok := op.Deadline(); ok {
		ctx, cancel = context.WithDeadline(tab, deadline)
	} else {
		ctx, cancel = context.WithCancel(tab)
	}
	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
