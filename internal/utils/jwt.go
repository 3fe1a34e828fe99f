// Package utils holds token and password helpers shared by the auth and
// share-code handlers.
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim.  An access token never unlocks
// share-code routes and a grant token never unlocks owner routes.
const (
	TypeAccess = "access"
	TypeGrant  = "grant"
)

var ErrTokenType = errors.New("wrong token type")

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is the raw refresh token handed to the client.  Only its
// SHA-256 is stored.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// AccessClaims identify a logged-in vault owner.
type AccessClaims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
	Role string `json:"role"`
}

// UserID parses the subject back into a user id.
func (c AccessClaims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// GrantClaims carry the scope unlocked by a share code.  The subject is the
// share code id.
type GrantClaims struct {
	jwt.RegisteredClaims
	Type       string   `json:"typ"`
	OwnerID    uint64   `json:"owner"`
	Categories []string `json:"cats"`
}

// NewAccessToken signs an HS256 access token for a user.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Type: TypeAccess,
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewGrantToken signs a grant token that expires at exp.
func NewGrantToken(secret, shareCodeID string, ownerID uint64, categories []string, exp time.Time) (AccessToken, error) {
	claims := GrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shareCodeID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Type:       TypeGrant,
		OwnerID:    ownerID,
		Categories: categories,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw and requires typ=access.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	var c AccessClaims
	if err := parse(secret, raw, &c); err != nil {
		return AccessClaims{}, err
	}
	if c.Type != TypeAccess {
		return AccessClaims{}, ErrTokenType
	}
	return c, nil
}

// ParseGrantToken verifies raw and requires typ=grant.
func ParseGrantToken(secret, raw string) (GrantClaims, error) {
	var c GrantClaims
	if err := parse(secret, raw, &c); err != nil {
		return GrantClaims{}, err
	}
	if c.Type != TypeGrant {
		return GrantClaims{}, ErrTokenType
	}
	return c, nil
}

func parse(secret, raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	return err
}

// NewRefreshToken returns 48 random bytes hex encoded, valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: hex.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw is the value stored in refresh_tokens.token_hash.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
