/**
 * @description
 * This package provides a client for the StatTaq API: building the OAuth
 * authorization URL for the connect flow and exchanging authorization codes
 * for the linked StatTaq user identity.
 *
 * @dependencies
 * - net/http, encoding/json, net/url: Standard Go libraries.
 */
package stattaqclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a client for the StatTaq API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	callbackURL  string
	httpClient   *http.Client
}

// NewClient creates a new StatTaq API client.
func NewClient(baseURL, clientID, clientSecret, callbackURL string) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthorizationURL builds the consent-screen URL the athlete is sent to.
// The state token must be echoed back on callback for CSRF protection.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.callbackURL)
	params.Set("response_type", "code")
	params.Set("state", state)
	return fmt.Sprintf("%s/oauth/authorize?%s", c.baseURL, params.Encode())
}

type tokenExchangeRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

type tokenExchangeResponse struct {
	StatTaqUserID string `json:"stattaq_user_id"`
	AccessToken   string `json:"access_token"`
}

// ExchangeCode redeems an authorization code and returns the StatTaq user id
// the athlete authorized.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	reqBody := tokenExchangeRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURI:  c.callbackURL,
	}

	var resp tokenExchangeResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/oauth/token", c.baseURL), reqBody, &resp); err != nil {
		return "", err
	}
	if resp.StatTaqUserID == "" {
		return "", fmt.Errorf("token exchange response missing stattaq_user_id")
	}
	return resp.StatTaqUserID, nil
}

// do executes an authenticated JSON request against the StatTaq API.
func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reqReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqReader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("StatTaq API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response body: %w", err)
		}
	}
	return nil
}
