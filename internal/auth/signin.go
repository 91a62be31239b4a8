// Package auth exchanges application credentials plus a user identity for a
// short-lived authorization token via the OkHi anonymous sign-in endpoint.
package auth

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

const signinPath = "/v5/auth/anonymous-signin"
const signinTimeout = 30 * time.Second
const maxErrorBodyBytes = 4096

// Provider performs anonymous sign-in calls. Tokens are fetched fresh per
// call; nothing is cached or persisted.
type Provider struct {
	cfg     config.App
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewProvider creates a Provider for the given application configuration.
// The sign-in endpoint is derived from the configured mode.
func NewProvider(cfg config.App, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cfg:     cfg,
		baseURL: config.AuthBaseURL(cfg.Mode),
		client:  &http.Client{Timeout: signinTimeout},
		log:     logger,
	}
}

// SetBaseURL overrides the sign-in endpoint, primarily for tests.
func (p *Provider) SetBaseURL(u string) {
	p.baseURL = strings.TrimSuffix(u, "/")
}

type signinRequest struct {
	Scopes []string `json:"scopes"`
	Phone  string   `json:"phone,omitempty"`
	UserID string   `json:"user_id,omitempty"`
}

type signinResponse struct {
	AuthorizationToken string `json:"authorization_token"`
}

// SignInWithPhone exchanges a phone number for an authorization token with
// the given scopes. The phone is not validated locally; a server-side
// rejection surfaces as an invalid_phone error.
func (p *Provider) SignInWithPhone(ctx context.Context, phone string, scopes []string) (string, error) {
	return p.signIn(ctx, signinRequest{Scopes: scopes, Phone: phone})
}

// SignInWithUserID is the user-id-based sign-in variant used by flows that
// already hold an OkHi user id.
func (p *Provider) SignInWithUserID(ctx context.Context, userID string, scopes []string) (string, error) {
	return p.signIn(ctx, signinRequest{Scopes: scopes, UserID: userID})
}

func (p *Provider) signIn(ctx context.Context, body signinRequest) (string, error) {
	if err := p.cfg.Validate(); err != nil {
		return "", domain.ErrInvalidCredentials()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", domain.WrapError(domain.CodeUnknown, "encode sign-in request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+signinPath, bytes.NewReader(payload))
	if err != nil {
		return "", domain.WrapError(domain.CodeUnknown, "build sign-in request", err)
	}
	req.Header.Set("Authorization", p.cfg.AccessToken())
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.CodeNetworkError, "unable to reach the OkHi sign-in service", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusBadRequest:
		return "", domain.ErrInvalidPhone()
	case resp.StatusCode == http.StatusUnauthorized:
		return "", domain.ErrInvalidCredentials()
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			msg = resp.Status
		}
		p.log.Warn("sign-in failed", "status", resp.StatusCode)
		return "", domain.NewError(domain.CodeUnknown, msg)
	}

	var out signinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.WrapError(domain.CodeUnknown, "decode sign-in response", err)
	}
	if out.AuthorizationToken == "" {
		return "", domain.NewError(domain.CodeUnknown, "sign-in response missing authorization token")
	}
	return out.AuthorizationToken, nil
}
