package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okhi/okcollect/internal/config"
	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/log"
)

type staticTokens struct {
	token  string
	err    error
	phones []string
	scopes []string
}

func (s *staticTokens) SignInWithPhone(ctx context.Context, phone string, scopes []string) (string, error) {
	s.phones = append(s.phones, phone)
	s.scopes = scopes
	return s.token, s.err
}

func testClient(t *testing.T, handler http.HandlerFunc, tokens *staticTokens) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.App{Mode: config.ModeSandbox}, tokens, log.Discard())
	c.SetBaseURL(srv.URL)
	return c
}

func TestStartVerification(t *testing.T) {
	t.Parallel()

	var got verifyRequest
	var auth string
	tokens := &staticTokens{token: "tok_v"}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != verifyPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusCreated)
	}, tokens)

	lat := -1.28
	err := c.StartVerification(context.Background(),
		domain.User{Phone: "+254712345678"},
		domain.Location{ID: "loc_1", Lat: &lat},
		[]string{"digital"})
	if err != nil {
		t.Fatal(err)
	}

	if auth != "Bearer tok_v" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if got.LocationID != "loc_1" || got.Phone != "+254712345678" {
		t.Fatalf("unexpected request body %+v", got)
	}
	if len(got.Types) != 1 || got.Types[0] != "digital" {
		t.Fatalf("unexpected types %v", got.Types)
	}
	if len(tokens.scopes) != 1 || tokens.scopes[0] != domain.ScopeVerify {
		t.Fatalf("expected verify scope, got %v", tokens.scopes)
	}
}

func TestStartVerificationRequiresLocationID(t *testing.T) {
	t.Parallel()

	tokens := &staticTokens{token: "tok"}
	c := NewClient(config.App{}, tokens, log.Discard())
	err := c.StartVerification(context.Background(), domain.User{Phone: "+1"}, domain.Location{}, nil)
	if !domain.HasCode(err, domain.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
	if len(tokens.phones) != 0 {
		t.Fatal("sign-in should not run without a location id")
	}
}

func TestStartVerificationErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		code   string
	}{
		{"bad request", http.StatusBadRequest, domain.CodeBadRequest},
		{"unauthorized", http.StatusUnauthorized, domain.CodeUnauthorized},
		{"server error", http.StatusInternalServerError, domain.CodeUnknown},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}, &staticTokens{token: "tok"})
			err := c.StartVerification(context.Background(),
				domain.User{Phone: "+1"}, domain.Location{ID: "loc"}, []string{"digital"})
			if !domain.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestStartVerificationPropagatesSignInFailure(t *testing.T) {
	t.Parallel()

	tokens := &staticTokens{err: domain.ErrInvalidPhone()}
	c := NewClient(config.App{}, tokens, log.Discard())
	err := c.StartVerification(context.Background(), domain.User{Phone: "bad"}, domain.Location{ID: "loc"}, nil)
	if !domain.HasCode(err, domain.CodeInvalidPhone) {
		t.Fatalf("expected invalid_phone, got %v", err)
	}
}
