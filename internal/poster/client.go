// File: internal/poster/client.go
package poster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
	"github.com/xkilldash9x/cafeposter-cli/internal/session"
)

const (
	articleOrigin = "https://cafe.naver.com"

	diagnosticBodyLimit = 512

	defaultTLSHandshakeTimeout = 5 * time.Second
	defaultIdleConnTimeout     = 30 * time.Second
)

// Result is the outcome of one posting attempt. A refused or failed attempt
// is still a Result, not an error: the caller records it in the posting log
// either way.
type Result struct {
	Success    bool
	StatusCode int
	ArticleID  string
	ArticleURL string
	Diagnostic string
}

// Client publishes articles against the community API, authenticating with a
// harvested cookie session instead of a browser. It is safe for concurrent
// use; submissions are serialized and spaced out to stay under the
// platform's automation heuristics.
type Client struct {
	baseURL   string
	userAgent string
	hc        *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger

	mu sync.Mutex
}

// NewClient creates a posting client from the posting configuration.
func NewClient(cfg config.PostingConfig, logger *zap.Logger) *Client {
	transport := &http.Transport{
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
		IdleConnTimeout:     defaultIdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
	}

	limit := rate.Inf
	if cfg.MinSubmitInterval > 0 {
		limit = rate.Every(cfg.MinSubmitInterval)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		hc: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
			// The API answers creation requests directly; a redirect here
			// means something unexpected and must surface in the diagnostic.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("poster"),
	}
}

// Submit publishes one article using the harvested session's cookies. The
// error return covers only invalid input and encoding problems; transport
// failures and rejections come back inside the Result so the attempt can be
// logged uniformly.
func (c *Client) Submit(ctx context.Context, hs *session.HarvestedSession, p *Payload) (*Result, error) {
	if hs == nil {
		return nil, fmt.Errorf("submit requires a harvested session")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	contentJSON, err := BuildDocument(p.Content, p.Image)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(buildEnvelope(p, contentJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to encode article request: %w", err)
	}

	// Submissions through one client are strictly ordered; the limiter then
	// enforces the minimum spacing between consecutive posts.
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.articlesURL(p), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build article request: %w", err)
	}
	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("origin", articleOrigin)
	req.Header.Set("referer", c.writeURL(p))
	req.Header.Set("user-agent", c.userAgent)
	req.Header.Set("x-cafe-product", "pc")
	for name, value := range hs.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	log := c.logger.With(zap.String("account", hs.AccountID), zap.String("cafe", p.CafeID))
	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn("Article request failed in transport.", zap.Error(err))
		return &Result{Diagnostic: fmt.Sprintf("transport: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt := readExcerpt(resp.Body)
		log.Warn("Article request rejected.",
			zap.Int("status", resp.StatusCode), zap.String("body", excerpt))
		return &Result{
			StatusCode: resp.StatusCode,
			Diagnostic: fmt.Sprintf("status %d: %s", resp.StatusCode, excerpt),
		}, nil
	}

	result := &Result{StatusCode: resp.StatusCode}
	id, err := parseArticleID(resp.Body)
	if err != nil {
		// The post likely went through; without the id the attempt is still
		// recorded as failed because the article cannot be linked.
		result.Diagnostic = fmt.Sprintf("unparseable success response: %v", err)
		log.Warn("Article response could not be parsed.", zap.Error(err))
		return result, nil
	}

	result.Success = true
	result.ArticleID = id
	result.ArticleURL = ArticleURL(p.CafeID, id)
	log.Info("Article published.", zap.String("article", id))
	return result, nil
}

// ArticleURL is the canonical viewer address of a published article.
func ArticleURL(cafeID, articleID string) string {
	return fmt.Sprintf("%s/ca-fe/cafes/%s/articles/%s", articleOrigin, cafeID, articleID)
}

func (c *Client) articlesURL(p *Payload) string {
	return fmt.Sprintf("%s/cafe-web/cafe-editor-api/v2.0/cafes/%s/menus/%d/articles",
		c.baseURL, p.CafeID, p.MenuID)
}

// writeURL is the editor page address, sent as the referer because the API
// only serves requests that appear to come from its own editor.
func (c *Client) writeURL(p *Payload) string {
	return fmt.Sprintf("%s/ca-fe/cafes/%s/menus/%d/articles/write",
		articleOrigin, p.CafeID, p.MenuID)
}

// parseArticleID extracts result.article.id from a success response. The API
// has returned the id both as a JSON number and as a string; both normalize
// to the bare digits.
func parseArticleID(r io.Reader) (string, error) {
	var payload struct {
		Result struct {
			Article struct {
				ID json.RawMessage `json:"id"`
			} `json:"article"`
		} `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode article response: %w", err)
	}
	id := strings.Trim(string(payload.Result.Article.ID), `"`)
	if id == "" || id == "null" {
		return "", fmt.Errorf("article response carries no article id")
	}
	return id, nil
}

// readExcerpt drains up to the diagnostic limit from a response body.
func readExcerpt(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, diagnosticBodyLimit))
	if err != nil {
		return fmt.Sprintf("unreadable body: %v", err)
	}
	return strings.TrimSpace(string(data))
}
