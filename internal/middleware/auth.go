package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware
)

// AdminID is the caller identity injected when the admin sentinel token is
// presented. It passes every ownership predicate.
const AdminID = "ADMIN"

// BearerAuth returns an Echo middleware that resolves a caller identity from
// the Authorization header and stores it in the request context under
// "user_id". Two credentials are accepted: the configured admin sentinel
// token, which grants the unrestricted ADMIN identity, and an HS256 JWT
// whose subject claim carries the user id. Anything else is a 401.
func BearerAuth(secret, adminToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token manquant ou mal formé."})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// The admin sentinel bypasses JWT verification entirely.
			if adminToken != "" && raw == adminToken {
				c.Set("user_id", AdminID)
				c.Set("role", "admin")
				return next(c)
			}

			// Parse the token, pinning the signing method to HMAC so a
			// token signed with another algorithm is rejected.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token invalide ou expiré."})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token invalide ou expiré."})
			}
			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token invalide ou expiré."})
			}
			c.Set("user_id", sub)
			c.Set("role", "user")
			return next(c)
		}
	}
}
