// File: internal/store/credentials.go
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
)

// Credential is a single account entry: the platform login id and its secret.
type Credential struct {
	ID     string
	Secret string
}

// Credentials reads and writes the flat credential file. The file format is
// one `id,secret` pair per line; the set is bounded at config.MaxAccounts.
type Credentials struct {
	path string
	log  *zap.Logger
}

// NewCredentials creates a credential store backed by the given file path.
func NewCredentials(path string, logger *zap.Logger) *Credentials {
	return &Credentials{
		path: path,
		log:  logger.Named("credentials"),
	}
}

// Load reads the full credential set. A missing file is an empty set, not an
// error. Malformed lines are skipped with a warning; entries beyond the
// account bound are ignored, matching the historical file contract.
func (c *Credentials) Load() ([]Credential, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open credential file %q: %w", c.path, err)
	}
	defer f.Close()

	var creds []Credential
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			c.log.Warn("Skipping malformed credential line.", zap.Int("line", lineNo))
			continue
		}
		if len(creds) >= config.MaxAccounts {
			c.log.Warn("Credential file exceeds the account bound; ignoring the rest.",
				zap.Int("max", config.MaxAccounts))
			break
		}
		creds = append(creds, Credential{
			ID:     strings.TrimSpace(parts[0]),
			Secret: strings.TrimSpace(parts[1]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credential file %q: %w", c.path, err)
	}
	return creds, nil
}

// Save rewrites the whole credential file. There is no partial-update
// protocol; the caller always persists the full set.
func (c *Credentials) Save(creds []Credential) error {
	if len(creds) > config.MaxAccounts {
		return fmt.Errorf("credential set holds %d accounts, maximum is %d", len(creds), config.MaxAccounts)
	}
	seen := make(map[string]struct{}, len(creds))
	var sb strings.Builder
	for _, cred := range creds {
		if cred.ID == "" || cred.Secret == "" {
			return fmt.Errorf("credential entries require both an id and a secret")
		}
		if strings.ContainsAny(cred.ID, ",\n") || strings.ContainsAny(cred.Secret, "\n") {
			return fmt.Errorf("credential fields must not contain separators (account %q)", cred.ID)
		}
		if _, dup := seen[cred.ID]; dup {
			return fmt.Errorf("duplicate account id %q", cred.ID)
		}
		seen[cred.ID] = struct{}{}
		sb.WriteString(cred.ID)
		sb.WriteString(",")
		sb.WriteString(cred.Secret)
		sb.WriteString("\n")
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create credential directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write credential file %q: %w", c.path, err)
	}
	c.log.Debug("Credential file saved.", zap.Int("accounts", len(creds)))
	return nil
}
