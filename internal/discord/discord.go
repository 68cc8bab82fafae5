// internal/discord/discord.go
//
// Discord Activity embedding adapter.
// Responsibilities:
//   - Detect whether a request comes from inside a Discord Activity iframe.
//   - Exchange an OAuth2 authorization code for an access token on behalf of
//     the embedded client (the client secret never leaves the server).
//
// Notes:
//   - Nothing here reads or writes game state; the embedded client only uses
//     the result to decide whether to mount the game.

package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrMissingCode is returned when no authorization code was supplied.
	ErrMissingCode = errors.New("discord: authorization code is required")
	// ErrNotConfigured is returned when client credentials are missing.
	ErrNotConfigured = errors.New("discord: client credentials not configured")
)

// ExchangeError reports a non-2xx response from the token endpoint.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("discord: token exchange failed: %d", e.Status)
}

// IsEmbedded reports whether the query string carries the parameters the
// Discord client adds to an Activity iframe URL.
func IsEmbedded(q url.Values) bool {
	return q.Has("frame_id") || q.Has("instance_id")
}

// Client exchanges OAuth2 authorization codes.
type Client struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTP         *http.Client
}

// NewClient builds a Client with a bounded HTTP timeout.
func NewClient(id, secret, tokenURL string) *Client {
	return &Client{
		ClientID:     id,
		ClientSecret: secret,
		TokenURL:     tokenURL,
		HTTP:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether both credentials are present.
func (c *Client) Configured() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Exchange trades code for an access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrMissingCode
	}
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	form := url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("discord: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("discord: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("discord: token response has no access_token")
	}
	return tr.AccessToken, nil
}
