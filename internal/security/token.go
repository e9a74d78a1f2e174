package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/example/placement-portal/internal/application"
)

const (
	claimUserID    = "id"
	claimRole      = "role"
	claimCompanyID = "companyId"
)

// ErrInvalidToken is returned when a token cannot be verified or lacks the
// expected claims.
var ErrInvalidToken = errors.New("security: invalid token")

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

// NewTokenManager builds a manager for secret. Tokens expire ttl after issue.
func NewTokenManager(secret string, ttl time.Duration, now func() time.Time) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenManager{
		auth: jwtauth.New("HS256", []byte(secret), nil),
		ttl:  ttl,
		now:  now,
	}, nil
}

// JWTAuth exposes the underlying verifier for request middleware.
func (m *TokenManager) JWTAuth() *jwtauth.JWTAuth {
	return m.auth
}

// IssueToken signs a token carrying the principal's id, role and company.
func (m *TokenManager) IssueToken(principal application.Principal) (string, time.Time, error) {
	if m == nil || m.auth == nil {
		return "", time.Time{}, fmt.Errorf("token manager not configured")
	}

	issuedAt := m.now().UTC()
	expiresAt := issuedAt.Add(m.ttl)

	claims := jwt.MapClaims{
		claimUserID: principal.UserID,
		claimRole:   principal.Role,
	}
	if principal.CompanyID != "" {
		claims[claimCompanyID] = principal.CompanyID
	}
	jwtauth.SetIssuedAt(claims, issuedAt)
	jwtauth.SetExpiry(claims, expiresAt)

	_, token, err := m.auth.Encode(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode token: %w", err)
	}
	return token, expiresAt.Truncate(time.Second), nil
}

// Verify checks the signature and expiry of token and returns its principal
// claims.
func (m *TokenManager) Verify(token string) (application.Principal, error) {
	if m == nil || m.auth == nil {
		return application.Principal{}, fmt.Errorf("token manager not configured")
	}

	parsed, err := jwtauth.VerifyToken(m.auth, token)
	if err != nil {
		return application.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return PrincipalFromClaims(parsed.PrivateClaims())
}

// PrincipalFromClaims reads the principal claims set by IssueToken.
func PrincipalFromClaims(claims map[string]interface{}) (application.Principal, error) {
	userID, err := stringClaim(claims, claimUserID, true)
	if err != nil {
		return application.Principal{}, err
	}
	role, err := stringClaim(claims, claimRole, true)
	if err != nil {
		return application.Principal{}, err
	}
	companyID, err := stringClaim(claims, claimCompanyID, false)
	if err != nil {
		return application.Principal{}, err
	}
	return application.Principal{UserID: userID, Role: role, CompanyID: companyID}, nil
}

func stringClaim(claims map[string]interface{}, key string, required bool) (string, error) {
	raw, ok := claims[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%w: %s claim is missing", ErrInvalidToken, key)
		}
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s claim is not a string", ErrInvalidToken, key)
	}
	if required && strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s claim is empty", ErrInvalidToken, key)
	}
	return value, nil
}
