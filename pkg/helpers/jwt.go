package helpers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret    = errors.New("jwt secret is not configured")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token is expired")
	ErrTokenMalformed   = errors.New("token is malformed")
)

var signingMethod = jwt.SigningMethodHS256

// TokenManager signs and verifies HS256 access tokens whose subject is a user id.
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
	parser    *jwt.Parser
}

// NewTokenManager requires a non-empty secret. clockSkew is the leeway applied to exp.
func NewTokenManager(secret string, accessTTL, clockSkew time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenManager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// IssueAccess issues a token for subjectID with the configured access TTL.
func (m *TokenManager) IssueAccess(subjectID int64) (string, time.Time, error) {
	return m.Issue(subjectID, m.accessTTL)
}

// Issue signs a token for subjectID expiring ttl from now.
func (m *TokenManager) Issue(subjectID int64, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Verify checks the signature first, then expiry, and returns the subject id.
func (m *TokenManager) Verify(tokenStr string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := m.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return 0, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return 0, m.classifyUnparsable(tokenStr, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return 0, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid subject %q", ErrTokenMalformed, claims.Subject)
	}
	return id, nil
}

// classifyUnparsable decides between a forged and a structurally broken token.
// The parser decodes header and claims before checking the signature, so a
// tampered segment can surface as malformed; a three-part token whose signature
// does not match its signing input is reported as an invalid signature instead.
func (m *TokenManager) classifyUnparsable(tokenStr string, cause error) error {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: %v", ErrTokenMalformed, cause)
	}
	sig, err := m.parser.DecodeSegment(parts[2])
	if err != nil || signingMethod.Verify(parts[0]+"."+parts[1], sig, m.secret) != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, cause)
	}
	return fmt.Errorf("%w: %v", ErrTokenMalformed, cause)
}
