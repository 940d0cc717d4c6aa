package bloxs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/arikb/bloxs/internal/config"
	"github.com/arikb/bloxs/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	endpointLogin  = "Login/PerformLogin"
	endpointUpload = "File/UpdateFile"

	formContentType = "application/x-www-form-urlencoded"

	// maxErrorBody caps how much of a failed response is kept on APIError.
	maxErrorBody = 4 << 10
)

// Client is an authenticated session against the Bloxs API. All calls share one
// cookie jar, so Login must succeed before anything else does.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// NewClient wraps httpClient for the API rooted at baseURL. A cookie jar is attached
// when httpClient has none.
func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base, http: httpClient, log: log}, nil
}

// Dial builds a client from cfg and logs in with the configured credentials.
func Dial(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	c, err := NewClient(cfg.APIBase, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return nil, err
	}
	return c, nil
}

// Login posts the credentials. Any non-2xx answer is an auth failure.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("Username", username)
	form.Set("Password", password)
	if err := c.postForm(ctx, KindAuth, endpointLogin, form, nil); err != nil {
		return err
	}
	c.log.Info("logged in to bloxs", zap.String("user", username), zap.String("base", c.base.String()))
	return nil
}

func (c *Client) postForm(ctx context.Context, kind Kind, endpoint string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	return c.post(ctx, kind, endpoint, formContentType, body, out)
}

// post sends one request and decodes a JSON answer into out (when out is non-nil).
func (c *Client) post(ctx context.Context, kind Kind, endpoint, contentType string, body io.Reader, out any) error {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return &APIError{Kind: kind, Endpoint: endpoint, Err: err}
	}
	target := c.base.ResolveReference(ref)

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return &APIError{Kind: kind, Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("bloxs request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return &APIError{Kind: kind, Endpoint: endpoint, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	c.log.Debug("bloxs request",
		zap.String("method", req.Method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("cookies", c.maskedCookies(target)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Kind: kind, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: kind, Endpoint: endpoint, Err: fmt.Errorf("read response body: %w", err)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: kind, Endpoint: endpoint, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}

func (c *Client) maskedCookies(u *url.URL) string {
	if c.http.Jar == nil {
		return ""
	}
	cookies := c.http.Jar.Cookies(u)
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return logger.MaskCookie(strings.Join(parts, "; "))
}
