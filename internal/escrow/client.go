package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/stellar"
	"go.uber.org/zap"
)

// ErrRemoteUnavailable marks transport failures reaching the escrow service;
// ErrRemoteRefused marks non-2xx answers from it. Handlers map the former to
// 502 and the latter to 409.
var (
	ErrRemoteUnavailable = errors.New("escrow service unavailable")
	ErrRemoteRefused     = errors.New("escrow service refused the request")
)

// Client talks to the hosted trustless escrow service. Every call is
// single-shot: no retries, the caller decides how to converge after a
// failure.
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
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

// RemoteEscrow is the wire shape the escrow service returns. Amounts are
// decimal strings; the mapper converts them to stroops.
type RemoteEscrow struct {
	EngagementID string `json:"engagementId"`
	ContractID   string `json:"contractId,omitempty"`
	Title        string `json:"title,omitempty"`
	Roles        struct {
		Approver        string `json:"approver"`
		ServiceProvider string `json:"serviceProvider"`
		ReleaseSigner   string `json:"releaseSigner,omitempty"`
		DisputeResolver string `json:"disputeResolver,omitempty"`
	} `json:"roles"`
	Amount     string `json:"amount"`
	Balance    string `json:"balance"`
	Milestones []struct {
		Description string `json:"description"`
		Status      string `json:"status"`
		Approved    bool   `json:"approved"`
		Evidence    string `json:"evidence,omitempty"`
	} `json:"milestones"`
	Flags struct {
		Disputed bool `json:"disputed"`
		Resolved bool `json:"resolved"`
		Released bool `json:"released"`
	} `json:"flags"`
	Trustline struct {
		Address  string `json:"address"`
		Decimals int    `json:"decimals"`
	} `json:"trustline"`
}

// ToModel maps the wire shape onto the local mirror record.
func (r *RemoteEscrow) ToModel() (*models.Escrow, error) {
	amt, err := stellar.ParseAmount(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("escrow %s amount: %w", r.EngagementID, err)
	}
	bal, err := stellar.ParseAmount(r.Balance)
	if err != nil {
		return nil, fmt.Errorf("escrow %s balance: %w", r.EngagementID, err)
	}

	e := &models.Escrow{
		EngagementID: r.EngagementID,
		ContractID:   r.ContractID,
		Title:        r.Title,
		Roles: models.EscrowRoles{
			Approver:        r.Roles.Approver,
			ServiceProvider: r.Roles.ServiceProvider,
			ReleaseSigner:   r.Roles.ReleaseSigner,
			DisputeResolver: r.Roles.DisputeResolver,
		},
		Amount:  amt,
		Balance: bal,
		Flags: models.EscrowFlags{
			Disputed: r.Flags.Disputed,
			Resolved: r.Flags.Resolved,
			Released: r.Flags.Released,
		},
		Trustline: models.EscrowTrustline{
			Address:  r.Trustline.Address,
			Decimals: r.Trustline.Decimals,
		},
	}
	for _, m := range r.Milestones {
		e.Milestones = append(e.Milestones, models.Milestone{
			Description: m.Description,
			Status:      m.Status,
			Approved:    m.Approved,
			Evidence:    m.Evidence,
		})
	}
	return e, nil
}

func (c *Client) GetEscrow(ctx context.Context, engagementID string) (*RemoteEscrow, error) {
	var out RemoteEscrow
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/escrows/%s", engagementID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReportPayment(ctx context.Context, engagementID, evidence string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/escrows/%s/report-payment", engagementID), map[string]any{
		"evidence": evidence,
	}, nil)
}

func (c *Client) ApproveMilestone(ctx context.Context, engagementID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/escrows/%s/approve-milestone", engagementID), nil, nil)
}

func (c *Client) FundEscrow(ctx context.Context, engagementID string, amount int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/escrows/%s/fund", engagementID), map[string]any{
		"amount": stellar.FormatAmount(amount),
	}, nil)
}

func (c *Client) DisputeEscrow(ctx context.Context, engagementID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/escrows/%s/dispute", engagementID), nil, nil)
}

func (c *Client) ReleaseFunds(ctx context.Context, engagementID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/escrows/%s/release", engagementID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrRemoteRefused, resp.StatusCode, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
