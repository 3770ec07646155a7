package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"expense-approval/internal/domain/approval"
	"expense-approval/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextActorKey is the echo context key holding the authenticated approval.Actor.
const ContextActorKey = "actor"

// Claims is the access token payload. Role is what the issuer believed at
// signing time; the stored user record wins when the two disagree.
type Claims struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// UserLookup is the slice of user.Repository the auth middleware needs.
type UserLookup interface {
	GetByUserID(ctx context.Context, userID string) (*user.User, error)
}

// ParseToken validates signature, algorithm and time claims.
func ParseToken(secret []byte, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Auth requires a bearer token, loads the user it names and stores the
// resulting actor on the context.
func Auth(secret []byte, users UserLookup, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return unauthorized(c, "missing bearer token")
			}

			claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				return unauthorized(c, "invalid token")
			}

			u, err := users.GetByUserID(c.Request().Context(), claims.Subject)
			if errors.Is(err, user.ErrNotFound) {
				return unauthorized(c, "unknown user")
			}
			if err != nil {
				log.Error("auth user lookup failed", zap.String("user_id", claims.Subject), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error", "code": "internal"})
			}
			if claims.CompanyID != "" && claims.CompanyID != u.CompanyID {
				return unauthorized(c, "token company mismatch")
			}

			c.Set(ContextActorKey, approval.Actor{
				UserID:    u.UserID,
				CompanyID: u.CompanyID,
				Role:      u.Role,
				ClaimRole: claims.Role,
			})
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by Auth.
func ActorFrom(c echo.Context) (approval.Actor, bool) {
	a, ok := c.Get(ContextActorKey).(approval.Actor)
	return a, ok
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg, "code": "unauthorized"})
}
