// File: internal/store/sessions.go
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/session"
)

// Sessions persists harvested login sessions, one JSON document per account,
// so a later posting run can reuse an identity without repeating the manual
// login. The file name is the account id; re-saving an account overwrites
// its previous session.
type Sessions struct {
	dir string
	log *zap.Logger
}

// NewSessions creates a session store rooted at the given directory.
func NewSessions(dir string, logger *zap.Logger) *Sessions {
	return &Sessions{
		dir: dir,
		log: logger.Named("sessions"),
	}
}

// Save writes the harvested session for its account, replacing any prior one.
func (s *Sessions) Save(hs *session.HarvestedSession) error {
	if hs == nil || hs.AccountID == "" {
		return fmt.Errorf("harvested session requires an account id")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(hs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session for %q: %w", hs.AccountID, err)
	}
	path := s.pathFor(hs.AccountID)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file %q: %w", path, err)
	}
	s.log.Debug("Harvested session persisted.",
		zap.String("account", hs.AccountID), zap.Int("cookies", len(hs.Cookies)))
	return nil
}

// Load reads the stored session for one account. A missing file means no
// session exists, reported as a plain error so callers can tell the operator
// to log in first.
func (s *Sessions) Load(accountID string) (*session.HarvestedSession, error) {
	data, err := os.ReadFile(s.pathFor(accountID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no stored session for account %q", accountID)
		}
		return nil, fmt.Errorf("failed to read session for %q: %w", accountID, err)
	}
	var hs session.HarvestedSession
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, fmt.Errorf("failed to decode session for %q: %w", accountID, err)
	}
	return &hs, nil
}

// List returns every stored session, sorted by account id. Unreadable files
// are skipped with a warning so one corrupt entry never hides the rest.
func (s *Sessions) List() ([]*session.HarvestedSession, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session directory %q: %w", s.dir, err)
	}

	var sessions []*session.HarvestedSession
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		accountID := strings.TrimSuffix(entry.Name(), ".json")
		hs, err := s.Load(accountID)
		if err != nil {
			s.log.Warn("Skipping unreadable session file.",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		sessions = append(sessions, hs)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].AccountID < sessions[j].AccountID })
	return sessions, nil
}

// Delete removes the stored session for one account. Deleting a session that
// does not exist is not an error.
func (s *Sessions) Delete(accountID string) error {
	if err := os.Remove(s.pathFor(accountID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session for %q: %w", accountID, err)
	}
	return nil
}

func (s *Sessions) pathFor(accountID string) string {
	return filepath.Join(s.dir, accountID+".json")
}
