package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-survey-admin/internal/model"
)

// Token decode failures. All of them wrap model.ErrInvalidToken.
var (
	ErrTokenSignature            = fmt.Errorf("%w: signature mismatch", model.ErrInvalidToken)
	ErrTokenMalformed            = fmt.Errorf("%w: malformed token", model.ErrInvalidToken)
	ErrTokenExpired              = fmt.Errorf("%w: token expired", model.ErrInvalidToken)
	ErrTokenUnsupportedAlgorithm = fmt.Errorf("%w: unsupported signing algorithm", model.ErrInvalidToken)
	ErrTokenEmptyClaims          = fmt.Errorf("%w: empty or invalid claims", model.ErrInvalidToken)
)

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS512-signed bearer tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}

	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the subject. A non-positive ttl falls back to
// the codec default.
func (c *TokenCodec) Issue(subjectID int64, username string, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	now := c.now()
	claims := tokenClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *TokenCodec) Decode(tokenString string) (*model.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenEmptyClaims
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, c.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || strings.TrimSpace(claims.Username) == "" {
		return nil, ErrTokenEmptyClaims
	}

	out := &model.Claims{
		SubjectID: subjectID,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (any, error) {
	if token.Method != jwt.SigningMethodHS512 {
		return nil, ErrTokenUnsupportedAlgorithm
	}
	return c.secret, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupportedAlgorithm):
		return ErrTokenUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenUnsupportedAlgorithm
	default:
		return fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
}

// TokenRejectReason labels a decode error for logs and metrics.
func TokenRejectReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, ErrTokenEmptyClaims):
		return "empty_claims"
	case errors.Is(err, model.ErrUserNotFound):
		return "unknown_subject"
	default:
		return "invalid"
	}
}
