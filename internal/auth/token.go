package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionDuration is how long an issued session stays valid. There is
// no refresh flow; logging in again is cheap.
const SessionDuration = 12 * time.Hour

// SessionCookie is the cookie name carrying the session token.
const SessionCookie = "cloudnotes_session"

// Claims is the session token payload. Subject carries the user id.
type Claims struct {
	Username  string `json:"username"`
	Superuser bool   `json:"superuser"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed session token for the given user.
func IssueToken(secretKey, userID, username string, superuser bool, now time.Time) (string, error) {
	claims := Claims{
		Username:  username,
		Superuser: superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
//
// Validation rejects expired tokens and tokens signed with any method
// other than HMAC (stops the classic alg-substitution trick).
func ParseToken(secretKey, tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}

	return claims, nil
}
