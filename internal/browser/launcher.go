// File: internal/browser/launcher.go
package browser

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
)

const prefillTimeout = 15 * time.Second

// Launcher starts isolated Chrome instances, one per account, each bound to
// its own debug port and persistent profile directory.
//
// The ordering is spawn-then-attach: the process is started with
// --remote-debugging-port first, and the automation driver connects to the
// already-open endpoint afterwards. The driver never owns the process
// lifecycle; a human finishes the login in the spawned window.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

// NewLauncher creates a launcher from the browser configuration.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		cfg:    cfg,
		logger: logger.Named("launcher"),
	}
}

// DebugEndpoint maps an ordinal to its deterministic local debug address.
func DebugEndpoint(basePort, ordinal int) string {
	return fmt.Sprintf("127.0.0.1:%d", basePort+ordinal)
}

// ProfilePath maps an account to its persistent profile directory. Reusing
// the directory across runs keeps prior logins partially sticky, since
// cookies and local storage survive process restarts on disk.
func ProfilePath(baseDir, accountID string) string {
	return filepath.Join(baseDir, accountID)
}

// Launch spawns a browser for the account at the given ordinal, pointed at
// the identity provider's login page, attaches the automation driver through
// the debug endpoint, and pre-fills the credential fields without submitting.
// The form submission and any secondary verification step are deliberately
// left to the operator.
func (l *Launcher) Launch(ctx context.Context, accountID, secret string, ordinal int) (*Session, error) {
	if accountID == "" {
		return nil, &LaunchError{AccountID: accountID, Err: fmt.Errorf("account id must not be empty")}
	}
	if ordinal < 0 || ordinal >= config.MaxAccounts {
		return nil, &LaunchError{AccountID: accountID, Err: fmt.Errorf("ordinal %d out of range [0,%d)", ordinal, config.MaxAccounts)}
	}

	endpoint := DebugEndpoint(l.cfg.BasePort, ordinal)
	profileDir := ProfilePath(l.cfg.ProfileBaseDir, accountID)
	log := l.logger.With(zap.String("account", accountID), zap.String("endpoint", endpoint))

	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, &LaunchError{AccountID: accountID, Err: fmt.Errorf("failed to create profile directory: %w", err)}
	}

	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", l.cfg.BasePort+ordinal),
		fmt.Sprintf("--user-data-dir=%s", profileDir),
		"--no-first-run",
		"--no-default-browser-check",
	}
	args = append(args, l.cfg.ExtraArgs...)
	args = append(args, l.cfg.LoginURL)

	cmd := exec.Command(l.cfg.ChromePath, args...)
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{AccountID: accountID, Err: fmt.Errorf("failed to start browser %q: %w", l.cfg.ChromePath, err)}
	}
	log.Info("Browser process spawned.", zap.Int("pid", cmd.Process.Pid), zap.String("profile", profileDir))

	session := &Session{
		accountID:     accountID,
		debugEndpoint: endpoint,
		profileDir:    profileDir,
		cmd:           cmd,
		logger:        log,
	}

	if err := l.awaitDebugEndpoint(ctx, endpoint); err != nil {
		l.cleanupFailedLaunch(session, log)
		return nil, &LaunchError{AccountID: accountID, Err: err}
	}

	// Attach to the already-running process. The allocator deliberately uses
	// a background parent: the session outlives the launch call and is torn
	// down explicitly by the registry.
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), "http://"+endpoint)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	session.allocCancel = allocCancel
	session.tabCtx = tabCtx
	session.tabCancel = tabCancel

	if err := l.attach(ctx, tabCtx); err != nil {
		l.cleanupFailedLaunch(session, log)
		return nil, &LaunchError{AccountID: accountID, Err: fmt.Errorf("automation driver failed to attach: %w", err)}
	}
	log.Info("Automation driver attached.")

	if l.cfg.PrefillCredentials {
		if err := l.prefill(ctx, tabCtx, accountID, secret); err != nil {
			// The operator can still type the fields by hand; pre-fill is a
			// convenience, not part of the launch contract.
			log.Warn("Failed to pre-fill login form.", zap.Error(err))
		}
	}

	return session, nil
}

// awaitDebugEndpoint polls the debug endpoint's version document until it
// answers or the bounded retry window elapses.
func (l *Launcher) awaitDebugEndpoint(ctx context.Context, endpoint string) error {
	deadline := time.Now().Add(l.cfg.AttachTimeout)
	interval := l.cfg.AttachRetryInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	client := &http.Client{Timeout: interval}

	versionURL := fmt.Sprintf("http://%s/json/version", endpoint)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("debug endpoint %s not reachable within %s", endpoint, l.cfg.AttachTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// attach establishes the CDP connection by running an empty action batch
// against the tab context.
func (l *Launcher) attach(ctx context.Context, tabCtx context.Context) error {
	attachCtx, cancel := context.WithTimeout(ctx, l.cfg.AttachTimeout)
	defer cancel()
	return chromedp.Run(combine(tabCtx, attachCtx))
}

// prefill navigates the driver tab to the login page and types the
// identifier and secret into their fields by element id. It never clicks the
// login button; trust and security checks stay with the human.
func (l *Launcher) prefill(ctx context.Context, tabCtx context.Context, accountID, secret string) error {
	fillCtx, cancel := context.WithTimeout(ctx, prefillTimeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(l.cfg.LoginURL),
		chromedp.WaitVisible("id", chromedp.ByID),
		chromedp.SendKeys("id", accountID, chromedp.ByID),
	}
	if secret != "" {
		actions = append(actions, chromedp.SendKeys("pw", secret, chromedp.ByID))
	}
	return chromedp.Run(combine(tabCtx, fillCtx), actions...)
}

// cleanupFailedLaunch tears down a partially-launched session, swallowing
// secondary errors because the launch failure is the one that matters.
func (l *Launcher) cleanupFailedLaunch(s *Session, log *zap.Logger) {
	if err := s.Terminate(); err != nil {
		log.Warn("Cleanup after failed launch reported an error.", zap.Error(err))
	}
}
