// Package auth contain token issuance and the local account handlers
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

// ClaimsKey is gin context key holding *Claims of the current request
const ClaimsKey = "claims"

// Claims is the payload of access token issued by TokenIssuer
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parse the token subject
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidCredential, "Invalid token subject")
	}
	return id, nil
}

// TokenIssuer sign and validate HS256 access tokens
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenIssuer return TokenIssuer. clk may be nil, wall clock is used then.
func NewTokenIssuer(secret, issuer string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  clk,
	}
}

// Issuer return the expected iss claim
func (i *TokenIssuer) Issuer() string {
	return i.issuer
}

// Issue generate access token for user
func (i *TokenIssuer) Issue(user model.User) (string, error) {
	now := i.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Annotate(err, "failed to sign token")
	}
	return signed, nil
}

// Validate parse encoded token and check signature, expiry and issuer
func (i *TokenIssuer) Validate(encoded string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(encoded, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.New(apperr.InvalidCredential, "Access token expired")
	case err != nil:
		return nil, apperr.New(apperr.InvalidCredential, "Failed to validate token: %s", err.Error())
	case !token.Valid:
		return nil, apperr.New(apperr.InvalidCredential, "Invalid access token")
	case claims.Issuer != i.issuer:
		return nil, apperr.New(apperr.InvalidCredential, "Invalid token issuer")
	}
	return claims, nil
}
