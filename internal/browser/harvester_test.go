// File: internal/browser/harvester_test.go
package browser

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFlattenCookies(t *testing.T) {
	t.Run("maps names to values", func(t *testing.T) {
		flat := FlattenCookies([]*network.Cookie{
			{Name: "NID_AUT", Value: "aut", Domain: ".naver.com"},
			{Name: "NID_SES", Value: "ses", Domain: ".naver.com"},
		})
		assert.Equal(t, map[string]string{"NID_AUT": "aut", "NID_SES": "ses"}, flat)
	})

	t.Run("later duplicates win", func(t *testing.T) {
		flat := FlattenCookies([]*network.Cookie{
			{Name: "NID_AUT", Value: "old", Domain: "a.test"},
			{Name: "NID_AUT", Value: "new", Domain: "b.test"},
		})
		assert.Equal(t, "new", flat["NID_AUT"])
	})

	t.Run("tolerates nil entries", func(t *testing.T) {
		flat := FlattenCookies([]*network.Cookie{nil, {Name: "k", Value: "v"}})
		assert.Equal(t, map[string]string{"k": "v"}, flat)
	})

	t.Run("empty jar", func(t *testing.T) {
		assert.Empty(t, FlattenCookies(nil))
	})

	t.Run("flattening a stable jar is idempotent", func(t *testing.T) {
		jar := []*network.Cookie{
			{Name: "NID_AUT", Value: "aut", Domain: ".naver.com"},
			{Name: "NID_SES", Value: "ses", Domain: ".naver.com"},
		}
		assert.Equal(t, FlattenCookies(jar), FlattenCookies(jar))
	})
}

func TestHarvestTerminatedSession(t *testing.T) {
	s := &Session{
		accountID:     "alpha",
		debugEndpoint: "127.0.0.1:9222",
		logger:        zap.NewNop(),
	}
	require.NoError(t, s.Terminate())

	_, err := NewHarvester(zap.NewNop()).Harvest(context.Background(), s)
	require.Error(t, err)

	var he *HarvestError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "alpha", he.AccountID)
}

func TestTerminateIsIdempotent(t *testing.T) {
	s := &Session{accountID: "alpha", logger: zap.NewNop()}
	require.NoError(t, s.Terminate())
	require.NoError(t, s.Terminate())
}
