package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Issue signs an HS256 token carrying the caller identity. typ is
// TypeAccess or TypeRefresh.
func Issue(secret string, userID int64, email string, staff bool, typ string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"email":    email,
		"is_staff": staff,
		"typ":      typ,
		"exp":      time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse verifies the signature and expiry and returns the claims.
func Parse(tokenStr, secret string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// ParseAuth parses an Authorization header value ("Bearer <token>" or the
// bare token).
func ParseAuth(authHeader, secret string) (jwt.MapClaims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if tokenStr == "" {
		return nil, errors.New("missing authorization")
	}
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}
	return Parse(tokenStr, secret)
}

// ParseRefresh verifies a refresh token and returns the subject user id
// and email.
func ParseRefresh(tokenStr, secret string) (userID int64, email string, staff bool, err error) {
	mc, err := Parse(tokenStr, secret)
	if err != nil {
		return 0, "", false, err
	}
	if typ, _ := mc["typ"].(string); typ != TypeRefresh {
		return 0, "", false, errors.New("not a refresh token")
	}
	sub, ok := mc["sub"].(float64)
	if !ok {
		return 0, "", false, errors.New("sub missing in claims")
	}
	email, _ = mc["email"].(string)
	staff, _ = mc["is_staff"].(bool)
	return int64(sub), email, staff, nil
}
