package middleware

import (
	"testing"
	"time"

	"expense-approval/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
)

// signToken mints an HS256 access token the way the external issuer does.
func signToken(t *testing.T, secret []byte, u *user.User, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &Claims{
		CompanyID: u.CompanyID,
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}
