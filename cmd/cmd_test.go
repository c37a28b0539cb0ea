// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
	"github.com/xkilldash9x/cafeposter-cli/internal/poster"
	"github.com/xkilldash9x/cafeposter-cli/internal/store"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"accounts", "login", "post", "logs"} {
		assert.True(t, names[want], "missing %q command", want)
	}
}

func TestSelectAccounts(t *testing.T) {
	entries := []store.Credential{
		{ID: "alpha", Secret: "a"},
		{ID: "beta", Secret: "b"},
		{ID: "gamma", Secret: "c"},
	}

	t.Run("no filter keeps file order", func(t *testing.T) {
		out := selectAccounts(entries, nil)
		require.Len(t, out, 3)
		assert.Equal(t, "alpha", out[0].ID)
		assert.Equal(t, "gamma", out[2].ID)
	})

	t.Run("filter keeps only the named accounts", func(t *testing.T) {
		out := selectAccounts(entries, []string{"gamma", " alpha "})
		require.Len(t, out, 2)
		assert.Equal(t, "alpha", out[0].ID)
		assert.Equal(t, "gamma", out[1].ID)
	})

	t.Run("unknown names select nothing", func(t *testing.T) {
		assert.Empty(t, selectAccounts(entries, []string{"delta"}))
	})
}

func TestBuildPayload(t *testing.T) {
	t.Run("plain article", func(t *testing.T) {
		p, err := buildPayload("27433401", 17, "title", "body", "members", []string{"tag"},
			true, true, false, false,
			false, 0, nil, "", false, false)
		require.NoError(t, err)

		assert.Equal(t, poster.OpenMembers, p.Open)
		assert.False(t, p.EnableCopy)
		assert.Nil(t, p.Trade)
	})

	t.Run("trade listing", func(t *testing.T) {
		p, err := buildPayload("27433401", 17, "title", "body", "public", nil,
			true, true, true, false,
			true, 5000, []string{"meetup", "online"}, "used", true, false)
		require.NoError(t, err)

		require.NotNil(t, p.Trade)
		assert.Equal(t, 5000, p.Trade.Cost)
		assert.Equal(t, []poster.DeliveryType{poster.DeliveryMeetup, poster.DeliveryOnline}, p.Trade.DeliveryTypes)
		assert.Equal(t, poster.ConditionUsed, p.Trade.Condition)
	})

	t.Run("bad visibility", func(t *testing.T) {
		_, err := buildPayload("27433401", 17, "title", "body", "everyone", nil,
			true, true, true, false,
			false, 0, nil, "", false, false)
		assert.Error(t, err)
	})

	t.Run("bad delivery type", func(t *testing.T) {
		_, err := buildPayload("27433401", 17, "title", "body", "public", nil,
			true, true, true, false,
			true, 100, []string{"pigeon"}, "new", false, false)
		assert.Error(t, err)
	})

	t.Run("bad condition", func(t *testing.T) {
		_, err := buildPayload("27433401", 17, "title", "body", "public", nil,
			true, true, true, false,
			true, 100, []string{"meetup"}, "mint", false, false)
		assert.Error(t, err)
	})
}

func TestParseImage(t *testing.T) {
	t.Run("derives path, domain and name from the URL", func(t *testing.T) {
		img, err := parseImage("https://cafeptthumb-phinf.pstatic.net/dir/item.png?type=w1600", "", 97742, 800, 435)
		require.NoError(t, err)

		assert.Equal(t, "/dir/item.png", img.Path)
		assert.Equal(t, "https://cafeptthumb-phinf.pstatic.net", img.Domain)
		assert.Equal(t, "item.png", img.FileName)
		assert.Equal(t, int64(97742), img.FileSize)
	})

	t.Run("explicit name wins", func(t *testing.T) {
		img, err := parseImage("https://host.test/a.png", "pretty.png", 0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "pretty.png", img.FileName)
	})

	t.Run("rejects relative urls", func(t *testing.T) {
		_, err := parseImage("/just/a/path.png", "", 0, 0, 0)
		assert.Error(t, err)
	})
}

func runLogsCmd(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	logsCmd := newLogsCmd(cfg)
	var buf bytes.Buffer
	logsCmd.SetOut(&buf)
	logsCmd.SetErr(&buf)
	logsCmd.SetArgs(args)
	require.NoError(t, logsCmd.Execute())
	return buf.String()
}

func TestLogsSummary(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.LogsDir = t.TempDir()

	sink := store.NewLogSink(cfg.Store.LogsDir, zap.NewNop())
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Append(store.Record{Timestamp: base, AccountID: "alpha", Title: "ok", Success: true, ArticleID: "42"}))
	require.NoError(t, sink.Append(store.Record{Timestamp: base.Add(time.Minute), AccountID: "alpha", Title: "bad", Diagnostic: "status 500: oops"}))

	t.Run("unfiltered", func(t *testing.T) {
		out := runLogsCmd(t, cfg)
		assert.Contains(t, out, "2 attempts, 1 succeeded, 1 failed.")
	})

	t.Run("failed filter narrows the table, not the summary", func(t *testing.T) {
		out := runLogsCmd(t, cfg, "--failed")
		assert.Contains(t, out, "bad")
		assert.NotContains(t, out, "\tok\t")
		assert.Contains(t, out, "2 attempts, 1 succeeded, 1 failed.")
	})

	t.Run("failed filter with no failures", func(t *testing.T) {
		clean := &config.Config{}
		clean.Store.LogsDir = t.TempDir()
		cleanSink := store.NewLogSink(clean.Store.LogsDir, zap.NewNop())
		require.NoError(t, cleanSink.Append(store.Record{Timestamp: base, AccountID: "alpha", Title: "ok", Success: true}))

		out := runLogsCmd(t, clean, "--failed")
		assert.Contains(t, out, "No failed attempts.")
		assert.Contains(t, out, "1 attempts, 1 succeeded, 0 failed.")
	})

	t.Run("empty log directory", func(t *testing.T) {
		empty := &config.Config{}
		empty.Store.LogsDir = t.TempDir()
		out := runLogsCmd(t, empty)
		assert.Contains(t, out, "No posting attempts recorded.")
	})
}
