// File: internal/store/credentials_test.go
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
)

func credFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "accounts.txt")
}

func TestCredentialsRoundTrip(t *testing.T) {
	creds := NewCredentials(credFile(t), zap.NewNop())

	in := []Credential{
		{ID: "alpha", Secret: "s3cret"},
		{ID: "beta", Secret: "hunter2"},
	}
	require.NoError(t, creds.Save(in))

	out, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCredentialsLoad(t *testing.T) {
	t.Run("missing file is an empty set", func(t *testing.T) {
		creds := NewCredentials(credFile(t), zap.NewNop())
		out, err := creds.Load()
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("skips malformed lines", func(t *testing.T) {
		path := credFile(t)
		content := "alpha,one\nnot-a-pair\n,missing-id\nbeta,two\n\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		out, err := NewCredentials(path, zap.NewNop()).Load()
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "alpha", out[0].ID)
		assert.Equal(t, "beta", out[1].ID)
	})

	t.Run("ignores entries beyond the account bound", func(t *testing.T) {
		path := credFile(t)
		var content string
		for i := 0; i < config.MaxAccounts+3; i++ {
			content += fmt.Sprintf("user%d,secret%d\n", i, i)
		}
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		out, err := NewCredentials(path, zap.NewNop()).Load()
		require.NoError(t, err)
		assert.Len(t, out, config.MaxAccounts)
	})
}

func TestCredentialsSave(t *testing.T) {
	creds := NewCredentials(credFile(t), zap.NewNop())

	t.Run("rejects more accounts than slots", func(t *testing.T) {
		var in []Credential
		for i := 0; i < config.MaxAccounts+1; i++ {
			in = append(in, Credential{ID: fmt.Sprintf("user%d", i), Secret: "s"})
		}
		assert.Error(t, creds.Save(in))
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		assert.Error(t, creds.Save([]Credential{{ID: "alpha"}}))
		assert.Error(t, creds.Save([]Credential{{Secret: "s"}}))
	})

	t.Run("rejects separator characters", func(t *testing.T) {
		assert.Error(t, creds.Save([]Credential{{ID: "al,pha", Secret: "s"}}))
		assert.Error(t, creds.Save([]Credential{{ID: "alpha", Secret: "s\nb"}}))
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		in := []Credential{
			{ID: "alpha", Secret: "one"},
			{ID: "alpha", Secret: "two"},
		}
		assert.Error(t, creds.Save(in))
	})

	t.Run("creates the parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "accounts.txt")
		nested := NewCredentials(path, zap.NewNop())
		require.NoError(t, nested.Save([]Credential{{ID: "alpha", Secret: "s"}}))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}
