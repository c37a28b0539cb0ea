// File: internal/browser/harvester.go
package browser

import (
	"context"

	"github.com/chromedp/cdproto/network"
	"go.uber.org/zap"
)

// Harvester extracts the cookie jar from a live session and converts it into
// the flat name-to-value mapping the HTTP posting client reuses as its
// identity.
type Harvester struct {
	logger *zap.Logger
}

// NewHarvester creates a cookie harvester.
func NewHarvester(logger *zap.Logger) *Harvester {
	return &Harvester{logger: logger.Named("harvester")}
}

// Harvest reads the session's full cookie jar and flattens it. It performs
// no logged-in check: a jar captured before the operator finished the login
// is only detected later, when a post against it fails.
func (h *Harvester) Harvest(ctx context.Context, s *Session) (map[string]string, error) {
	cookies, err := s.RawCookies(ctx)
	if err != nil {
		return nil, err
	}
	flat := FlattenCookies(cookies)
	h.logger.Debug("Cookie jar harvested.",
		zap.String("account", s.AccountID()),
		zap.Int("cookies", len(flat)))
	return flat, nil
}

// FlattenCookies converts a raw cookie list to a name-to-value map.
// Later entries win on duplicate names; browser jars are already deduplicated
// by name+domain+path, so collisions only occur across domains and either
// value is acceptable for the posting client.
func FlattenCookies(cookies []*network.Cookie) map[string]string {
	flat := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		flat[c.Name] = c.Value
	}
	return flat
}
