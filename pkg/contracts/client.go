package contracts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const (
	DefaultPageSize = 100
	tokenPath       = "/oauth/v2/token"
	errBodyLimit    = 4096
)

var (
	// ErrAuth marks any failure to obtain a bearer token
	ErrAuth = errors.New("contracts: authentication failed")
	// ErrStatus marks a non-2xx response
	ErrStatus = errors.New("contracts: unexpected status")
)

// NewClient instantiates a contracts API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("contracts: host is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("contracts: api key is required")
	}
	if _, err := url.Parse(cfg.Host); err != nil {
		return nil, fmt.Errorf("contracts: parse host: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		host:       strings.TrimSuffix(cfg.Host, "/"),
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		grantType:  cfg.GrantType,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		pageSize:   pageSize,
	}, nil
}

// PageSize returns the number of records requested per page
func (c *Client) PageSize() int {
	return c.pageSize
}

// Token performs the password grant against the identity endpoint
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	if c == nil {
		return nil, fmt.Errorf("contracts: client is nil")
	}

	body, err := json.Marshal(tokenRequest{
		GrantType: c.grantType,
		Username:  c.username,
		Password:  c.password,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+tokenPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrAuth, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var payload tokenResponse
	if err := c.do(req, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: response has no access_token", ErrAuth)
	}

	// the contracts endpoint only accepts bearer credentials
	tok := &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   "Bearer",
	}
	if secs, ok := expiresIn(payload.ExpiresIn); ok {
		tok.Expiry = time.Now().Add(time.Duration(secs * float64(time.Second)))
	}

	return tok, nil
}

// Page fetches one page of contracts. A nil token sends the request
// without a bearer header.
func (c *Client) Page(ctx context.Context, tok *oauth2.Token, page int) ([]Contract, error) {
	if c == nil {
		return nil, fmt.Errorf("contracts: client is nil")
	}

	u, err := c.buildPageURL(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("contracts: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	if tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}

	var payload pageResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	out := make([]Contract, 0, len(payload.Contracts))
	for _, raw := range payload.Contracts {
		out = append(out, decodeContract(raw))
	}

	return out, nil
}

func (c *Client) buildPageURL(page int) (string, error) {
	u, err := url.Parse(c.host + c.apiURL)
	if err != nil {
		return "", fmt.Errorf("contracts: parse api url: %w", err)
	}

	values := u.Query()
	values.Set("from_page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(c.pageSize))

	u.RawQuery = values.Encode()
	return u.String(), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contracts: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return fmt.Errorf("%w (%d): %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("contracts: decode response: %w", err)
	}

	return nil
}

// expiresIn reads the token lifetime in seconds. Values that are not a
// positive number are ignored.
func expiresIn(v any) (float64, bool) {
	var secs float64
	switch t := v.(type) {
	case float64:
		secs = t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		secs = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		secs = f
	default:
		return 0, false
	}
	return secs, secs > 0
}

// decodeContract decodes one element of the contracts list. Anything that
// is not a JSON object yields an empty Contract, which has no code.
func decodeContract(raw json.RawMessage) Contract {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec Contract
	if err := dec.Decode(&rec); err != nil || rec == nil {
		return Contract{}
	}
	return rec
}
