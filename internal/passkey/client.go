package passkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured distinguishes a missing relay configuration from a relay
// failure. Handlers answer 500 with a config hint instead of 502.
var ErrNotConfigured = errors.New("passkey relay is not configured")

// Client proxies WebAuthn ceremonies to the hosted passkey relay. The relay
// owns the smart wallet contracts; this service only forwards and stamps the
// API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: log,
	}
}

// RegisterResult is the relay's answer to a completed registration ceremony.
type RegisterResult struct {
	ContractID string `json:"contractId"`
	KeyID      string `json:"keyId"`
	PublicKey  string `json:"publicKey"`
}

func (c *Client) Register(ctx context.Context, body json.RawMessage) (*RegisterResult, error) {
	var out RegisterResult
	if err := c.do(ctx, "/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type AuthenticateResult struct {
	ContractID string `json:"contractId"`
	SignedTx   string `json:"signedTx,omitempty"`
}

func (c *Client) Authenticate(ctx context.Context, body json.RawMessage) (*AuthenticateResult, error) {
	var out AuthenticateResult
	if err := c.do(ctx, "/authenticate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type SubmitResult struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

// Submit forwards a signed transaction envelope for fee-sponsored submission.
func (c *Client) Submit(ctx context.Context, body json.RawMessage) (*SubmitResult, error) {
	var out SubmitResult
	if err := c.do(ctx, "/submit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CreditsResult struct {
	Remaining int64 `json:"remaining"`
	Total     int64 `json:"total"`
}

func (c *Client) Credits(ctx context.Context) (*CreditsResult, error) {
	var out CreditsResult
	if err := c.do(ctx, "/credits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, path string, body json.RawMessage, out any) error {
	if c.baseURL == "" || c.apiKey == "" {
		return ErrNotConfigured
	}

	method := http.MethodPost
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	} else {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("passkey relay unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("passkey relay returned %d: %s", resp.StatusCode, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
