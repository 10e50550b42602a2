// Package token issues and validates the two token kinds the platform uses:
// signed session JWTs carrying only the account id, and opaque single-use
// action tokens (verification, password reset, email change) that are stored
// verbatim on the account record and compared by exact match.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

var ErrInvalidSession = errors.New("invalid session token")

// Claims extends the registered claims with the account id.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// Issuer mints session tokens with a shared HMAC secret.
type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
}

func NewIssuer(secret string, sessionTTL time.Duration) *Issuer {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Issuer{secret: []byte(secret), sessionTTL: sessionTTL}
}

// SessionTTL returns the configured session validity, used to size cookies.
func (i *Issuer) SessionTTL() time.Duration {
	return i.sessionTTL
}

// IssueSession signs a session token for the given account.
func (i *Issuer) IssueSession(accountID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AccountID: accountID,
	})
	return t.SignedString(i.secret)
}

// ParseSession validates a session token and returns the account id.
func (i *Issuer) ParseSession(tokenString string) (string, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !t.Valid || claims.AccountID == "" {
		return "", ErrInvalidSession
	}
	return claims.AccountID, nil
}

// NewActionToken returns 32 bytes of entropy, hex encoded. Action tokens are
// opaque: they carry no structure and are only ever compared against the
// stored value.
func NewActionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
