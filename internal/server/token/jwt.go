// Package token mints and decodes the signed bearer tokens issued by the
// service. Tokens are HS256 JWTs carrying exactly three claims: subject,
// issued-at and expiry. Authorization data (roles) is deliberately never
// encoded into a token; it is re-resolved from the credential store on every
// validation.
package token

import (
	"errors"
	"time"

	"github.com/example/authgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded view of a token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with a single process-wide symmetric
// secret. Rotating the secret invalidates every outstanding token; that is an
// operational consequence, not a bug.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

var signingMethods = []string{jwt.SigningMethodHS256.Alg()}

// Mint produces a signed token for subject expiring after ttl.
func (c *Codec) Mint(subject string, ttl time.Duration) (string, error) {
	if subject == "" || ttl <= 0 {
		return "", common.ErrInvalidArgument
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Decode verifies the signature and claim validity of tokenString and returns
// its claims.
//
// Errors: common.ErrTokenMalformed when the structure cannot be parsed,
// common.ErrInvalidSignature when the signature does not verify, and
// common.ErrTokenExpired when the expiry has passed. Expired tokens with a
// valid signature always map to ErrTokenExpired, never to a signature error.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	return c.parse(tokenString, true)
}

// Subject returns the subject claim of a signature-verified token without
// validating expiry. Callers that only need identity for bookkeeping (e.g.
// revocation) use this instead of Decode.
func (c *Codec) Subject(tokenString string) (string, error) {
	claims, err := c.parse(tokenString, false)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Expiry returns the expiry claim of a signature-verified token without
// validating it, so the natural expiry of a just-expired token can still be
// read when recording a revocation.
func (c *Codec) Expiry(tokenString string) (time.Time, error) {
	claims, err := c.parse(tokenString, false)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}

func (c *Codec) parse(tokenString string, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(signingMethods)}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !parsed.Valid {
		return nil, common.ErrInvalidSignature
	}

	decoded := &Claims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		decoded.ExpiresAt = claims.ExpiresAt.Time
	}

	return decoded, nil
}

// mapParseError translates jwt/v5 sentinel errors into the service taxonomy.
// Order matters: a malformed token must never be reported as a signature
// failure and vice versa.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrTokenMalformed
	}
}
