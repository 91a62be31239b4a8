// Package verification starts address verification for a collected location
// through the OkHi verification endpoint. It satisfies the manager's
// VerificationStarter contract.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/okhi/okcollect/internal/config"
	"github.com/okhi/okcollect/internal/domain"
)

const verifyPath = "/v5/verifications"
const requestTimeout = 30 * time.Second
const maxErrorBodyBytes = 4096

// TokenSource issues a verification-scoped token for the user.
type TokenSource interface {
	SignInWithPhone(ctx context.Context, phone string, scopes []string) (string, error)
}

// Client starts verifications. Each call signs the user in with the verify
// scope and submits the location under the resulting bearer token.
type Client struct {
	tokens  TokenSource
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewClient creates a verification client for the configured mode.
func NewClient(cfg config.App, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		tokens:  tokens,
		baseURL: config.AuthBaseURL(cfg.Mode),
		client:  &http.Client{Timeout: requestTimeout},
		log:     logger,
	}
}

// SetBaseURL overrides the verification endpoint, primarily for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

type verifyRequest struct {
	Phone      string   `json:"phone"`
	LocationID string   `json:"location_id"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Types      []string `json:"verification_types"`
}

// StartVerification submits the location for verification.
func (c *Client) StartVerification(ctx context.Context, user domain.User, location domain.Location, types []string) error {
	if strings.TrimSpace(location.ID) == "" {
		return domain.NewError(domain.CodeBadRequest, "location id is required to start verification")
	}

	token, err := c.tokens.SignInWithPhone(ctx, user.Phone, []string{domain.ScopeVerify})
	if err != nil {
		return err
	}

	body, err := json.Marshal(verifyRequest{
		Phone:      user.Phone,
		LocationID: location.ID,
		Lat:        location.Lat,
		Lon:        location.Lon,
		Types:      types,
	})
	if err != nil {
		return domain.WrapError(domain.CodeUnknown, "encode verification request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewReader(body))
	if err != nil {
		return domain.WrapError(domain.CodeUnknown, "build verification request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.WrapError(domain.CodeNetworkError, "unable to reach the OkHi verification service", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.log.Info("verification started", "location_id", location.ID, "types", types)
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return domain.NewError(domain.CodeBadRequest, "verification request was rejected")
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrInvalidCredentials()
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			msg = resp.Status
		}
		c.log.Warn("verification failed", "status", resp.StatusCode)
		return domain.NewError(domain.CodeUnknown, msg)
	}
}
