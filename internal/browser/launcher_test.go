// File: internal/browser/launcher_test.go
package browser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
)

func TestDebugEndpoint(t *testing.T) {
	t.Run("first two slots get consecutive ports", func(t *testing.T) {
		assert.Equal(t, "127.0.0.1:9222", DebugEndpoint(9222, 0))
		assert.Equal(t, "127.0.0.1:9223", DebugEndpoint(9222, 1))
	})

	t.Run("every slot gets a distinct endpoint", func(t *testing.T) {
		seen := make(map[string]bool)
		for ordinal := 0; ordinal < config.MaxAccounts; ordinal++ {
			endpoint := DebugEndpoint(9222, ordinal)
			assert.False(t, seen[endpoint], "endpoint %s assigned twice", endpoint)
			seen[endpoint] = true
		}
	})
}

func TestProfilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "profiles", "alpha"), ProfilePath(filepath.Join("/data", "profiles"), "alpha"))

	t.Run("accounts never share a profile", func(t *testing.T) {
		a := ProfilePath("base", "alpha")
		b := ProfilePath("base", "beta")
		assert.NotEqual(t, a, b)
	})
}

func TestLaunchRejectsBadInput(t *testing.T) {
	launcher := NewLauncher(config.BrowserConfig{
		ChromePath:     "/does/not/matter",
		LoginURL:       "https://example.test/login",
		BasePort:       9222,
		ProfileBaseDir: t.TempDir(),
	}, zap.NewNop())

	t.Run("empty account id", func(t *testing.T) {
		_, err := launcher.Launch(context.Background(), "", "secret", 0)
		require.Error(t, err)
		var le *LaunchError
		assert.ErrorAs(t, err, &le)
	})

	t.Run("ordinal out of range", func(t *testing.T) {
		_, err := launcher.Launch(context.Background(), "alpha", "secret", config.MaxAccounts)
		assert.Error(t, err)

		_, err = launcher.Launch(context.Background(), "alpha", "secret", -1)
		assert.Error(t, err)
	})
}

func TestLaunchMissingBinary(t *testing.T) {
	launcher := NewLauncher(config.BrowserConfig{
		ChromePath:     filepath.Join(t.TempDir(), "no-such-chrome"),
		LoginURL:       "https://example.test/login",
		BasePort:       9222,
		ProfileBaseDir: t.TempDir(),
	}, zap.NewNop())

	_, err := launcher.Launch(context.Background(), "alpha", "secret", 0)
	require.Error(t, err)
	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "alpha", le.AccountID)
}
