package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
)

// DefaultTokenTTL is the lifetime of a token issued without an explicit lifetime.
const DefaultTokenTTL = 15 * time.Minute

var signingMethods = map[string]*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SupportedAlgorithm reports whether alg can be used to sign tokens.
func SupportedAlgorithm(alg string) bool {
	_, ok := signingMethods[alg]
	return ok
}

// registered claim names owned by the codec; extras may not shadow them
const (
	claimSubject   = "sub"
	claimExpiresAt = "exp"
	claimIssuedAt  = "iat"
)

func reservedClaim(name string) bool {
	return name == claimSubject || name == claimExpiresAt || name == claimIssuedAt
}

// TokenClaims is the claim set carried by an access token.
// Times have second precision on the wire.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// JWTManager encodes and decodes HMAC-signed compact tokens.
// It is immutable after construction and safe for concurrent use.
type JWTManager struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	defaultTTL time.Duration
	now        func() time.Time
}

// NewJWTManager returns a codec signing with secret using the HMAC algorithm alg
// (HS256, HS384 or HS512). defaultTTL applies to tokens issued without a lifetime;
// zero selects DefaultTokenTTL.
func NewJWTManager(secret, alg string, defaultTTL time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	method, ok := signingMethods[alg]
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
	if defaultTTL == 0 {
		defaultTTL = DefaultTokenTTL
	}
	if defaultTTL < 0 {
		return nil, fmt.Errorf("default token lifetime must be positive, got %v", defaultTTL)
	}
	return &JWTManager{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Algorithm returns the signing algorithm identifier.
func (m *JWTManager) Algorithm() string { return m.method.Alg() }

// DefaultTTL returns the lifetime used when none is supplied.
func (m *JWTManager) DefaultTTL() time.Duration { return m.defaultTTL }

// Encode signs claims into a compact token. A zero ExpiresAt is replaced by
// now plus the default lifetime and a zero IssuedAt by now.
func (m *JWTManager) Encode(claims TokenClaims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("token subject must not be empty")
	}
	now := m.now()
	if claims.ExpiresAt.IsZero() {
		claims.ExpiresAt = now.Add(m.defaultTTL)
	}
	if claims.IssuedAt.IsZero() {
		claims.IssuedAt = now
	}

	mc := make(jwt.MapClaims, len(claims.Extra)+3)
	for k, v := range claims.Extra {
		if reservedClaim(k) {
			return "", fmt.Errorf("claim %q is reserved", k)
		}
		mc[k] = v
	}
	mc[claimSubject] = claims.Subject
	mc[claimExpiresAt] = jwt.NewNumericDate(claims.ExpiresAt)
	mc[claimIssuedAt] = jwt.NewNumericDate(claims.IssuedAt)

	return jwt.NewWithClaims(m.method, mc).SignedString(m.secret)
}

type issueOptions struct {
	lifetime time.Duration
	extra    map[string]any
}

// TokenOption customizes Issue.
type TokenOption func(*issueOptions)

// WithLifetime sets the token lifetime. Zero or negative lifetimes produce a
// token that is already expired.
func WithLifetime(d time.Duration) TokenOption {
	return func(o *issueOptions) { o.lifetime = d }
}

// WithExtra adds non-registered claims to the token.
func WithExtra(extra map[string]any) TokenOption {
	return func(o *issueOptions) { o.extra = extra }
}

// Issue mints a token for subject and returns it with its expiry instant.
func (m *JWTManager) Issue(subject string, opts ...TokenOption) (string, time.Time, error) {
	o := issueOptions{lifetime: m.defaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	now := m.now()
	exp := jwt.NewNumericDate(now.Add(o.lifetime)).Time
	tok, err := m.Encode(TokenClaims{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: exp,
		Extra:     o.extra,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Decode verifies tokenStr and returns its claims. Rejections are
// apperror.ErrMalformed, apperror.ErrBadSignature or apperror.ErrExpired.
func (m *JWTManager) Decode(tokenStr string) (TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)

	mc := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenStr, mc, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return TokenClaims{}, classifyTokenError(err)
	}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return TokenClaims{}, apperror.Wrap(err, apperror.KindMalformed, "token has no subject")
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return TokenClaims{}, apperror.Wrap(err, apperror.KindExpired, "token has no expiry")
	}
	claims := TokenClaims{Subject: sub, ExpiresAt: exp.Time}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	for k, v := range mc {
		if reservedClaim(k) {
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]any)
		}
		claims.Extra[k] = v
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return apperror.Wrap(err, apperror.KindMalformed, apperror.ErrMalformed.Message)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperror.Wrap(err, apperror.KindBadSignature, apperror.ErrBadSignature.Message)
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return apperror.Wrap(err, apperror.KindExpired, apperror.ErrExpired.Message)
	default:
		return apperror.Wrap(err, apperror.KindMalformed, apperror.ErrMalformed.Message)
	}
}
