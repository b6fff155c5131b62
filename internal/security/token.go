package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const VerificationTokenTTL = 24 * time.Hour

var ErrInvalidSessionEnvelope = errors.New("invalid session envelope")

// GenerateVerificationToken returns 32 random bytes, hex encoded.
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func GenerateTokenExpiry() time.Time {
	return generateTokenExpiry(time.Now())
}

func generateTokenExpiry(now time.Time) time.Time {
	return now.Add(VerificationTokenTTL)
}

func IsTokenExpired(expiry time.Time) bool {
	return isTokenExpired(expiry, time.Now())
}

func isTokenExpired(expiry, now time.Time) bool {
	return now.After(expiry)
}

// SessionClaims is the signed envelope handed to clients. It binds the
// opaque session token to the user it was issued for; liveness is always
// decided by the session registry, never by the envelope alone.
type SessionClaims struct {
	UserID       string `json:"uid"`
	SessionToken string `json:"stk"`
	jwt.RegisteredClaims
}

func SignSessionEnvelope(secret, userID, sessionToken string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:       userID,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseSessionEnvelope(tokenStr, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" || claims.SessionToken == "" {
		return nil, ErrInvalidSessionEnvelope
	}
	return claims, nil
}
