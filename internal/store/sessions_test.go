// File: internal/store/sessions_test.go
package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/session"
)

func harvested(account string) *session.HarvestedSession {
	return &session.HarvestedSession{
		AccountID:  account,
		Cookies:    map[string]string{"NID_AUT": "aut", "NID_SES": "ses"},
		CapturedAt: time.Now().Truncate(time.Second),
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	sessions := NewSessions(t.TempDir(), zap.NewNop())

	in := harvested("alpha")
	require.NoError(t, sessions.Save(in))

	out, err := sessions.Load("alpha")
	require.NoError(t, err)
	assert.Equal(t, in.AccountID, out.AccountID)
	assert.Equal(t, in.Cookies, out.Cookies)
	assert.True(t, in.CapturedAt.Equal(out.CapturedAt))
}

func TestSessionsSaveOverwrites(t *testing.T) {
	sessions := NewSessions(t.TempDir(), zap.NewNop())

	require.NoError(t, sessions.Save(harvested("alpha")))
	second := harvested("alpha")
	second.Cookies = map[string]string{"NID_AUT": "fresh"}
	require.NoError(t, sessions.Save(second))

	out, err := sessions.Load("alpha")
	require.NoError(t, err)
	assert.Equal(t, second.Cookies, out.Cookies)
}

func TestSessionsSaveRejectsEmptyAccount(t *testing.T) {
	sessions := NewSessions(t.TempDir(), zap.NewNop())
	assert.Error(t, sessions.Save(nil))
	assert.Error(t, sessions.Save(&session.HarvestedSession{}))
}

func TestSessionsLoadMissing(t *testing.T) {
	sessions := NewSessions(t.TempDir(), zap.NewNop())
	_, err := sessions.Load("ghost")
	assert.ErrorContains(t, err, "no stored session")
}

func TestSessionsList(t *testing.T) {
	dir := t.TempDir()
	sessions := NewSessions(dir, zap.NewNop())

	require.NoError(t, sessions.Save(harvested("beta")))
	require.NoError(t, sessions.Save(harvested("alpha")))
	// A corrupt entry must not hide the others.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600))

	out, err := sessions.List()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "alpha", out[0].AccountID)
	assert.Equal(t, "beta", out[1].AccountID)
}

func TestSessionsListEmptyDir(t *testing.T) {
	sessions := NewSessions(filepath.Join(t.TempDir(), "never-created"), zap.NewNop())
	out, err := sessions.List()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSessionsDelete(t *testing.T) {
	sessions := NewSessions(t.TempDir(), zap.NewNop())

	require.NoError(t, sessions.Save(harvested("alpha")))
	require.NoError(t, sessions.Delete("alpha"))
	_, err := sessions.Load("alpha")
	assert.Error(t, err)

	// Deleting again is a no-op.
	assert.NoError(t, sessions.Delete("alpha"))
}
