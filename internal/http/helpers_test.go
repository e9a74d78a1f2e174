package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/security"
)

var (
	adminPrincipal   = application.Principal{UserID: "admin-1", Role: application.RoleAdmin}
	companyPrincipal = application.Principal{UserID: "company-user-1", Role: application.RoleCompany, CompanyID: "company-1"}
	studentPrincipal = application.Principal{UserID: "student-1", Role: application.RoleStudent}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type principalResolverStub struct {
	principals map[string]application.Principal
	err        error
}

func newPrincipalResolver(principals ...application.Principal) principalResolverStub {
	stub := principalResolverStub{principals: make(map[string]application.Principal)}
	for _, p := range principals {
		stub.principals[p.UserID] = p
	}
	return stub
}

func (s principalResolverStub) ResolvePrincipal(_ context.Context, userID string) (application.Principal, error) {
	if s.err != nil {
		return application.Principal{}, s.err
	}
	principal, ok := s.principals[userID]
	if !ok {
		return application.Principal{}, application.ErrUnauthenticated
	}
	return principal, nil
}

func newTestTokens(t *testing.T) *security.TokenManager {
	t.Helper()
	tokens, err := security.NewTokenManager("handler-test-secret", time.Hour, time.Now)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	return tokens
}

func issueToken(t *testing.T, tokens *security.TokenManager, principal application.Principal) string {
	t.Helper()
	token, _, err := tokens.IssueToken(principal)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	return token
}

// newTestRouter wires cfg behind real token verification. Every principal in
// the package fixtures can authenticate.
func newTestRouter(t *testing.T, cfg RouterConfig) (http.Handler, *security.TokenManager) {
	t.Helper()
	tokens := newTestTokens(t)
	cfg.JWTAuth = tokens.JWTAuth()
	if cfg.Principals == nil {
		cfg.Principals = newPrincipalResolver(adminPrincipal, companyPrincipal, studentPrincipal)
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	return NewRouter(cfg), tokens
}

func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type envelopeBody struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Data     json.RawMessage   `json:"data"`
	Count    *int              `json:"count"`
	Errors   map[string]string `json:"errors"`
	Messages []string          `json:"messages"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func decodeData(t *testing.T, body envelopeBody, dst any) {
	t.Helper()
	if err := json.Unmarshal(body.Data, dst); err != nil {
		t.Fatalf("failed to decode data %q: %v", string(body.Data), err)
	}
}
