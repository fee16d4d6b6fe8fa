package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

// AdminCredentials holds the admin user and the bcrypt hash of its password.
type AdminCredentials struct {
	User         string
	PasswordHash string
}

// AdminCredentialsFromEnv reads ADMIN_USER and ADMIN_PASSWORD_HASH.
func AdminCredentialsFromEnv() AdminCredentials {
	return AdminCredentials{
		User:         env.GetEnv("ADMIN_USER", "admin"),
		PasswordHash: env.GetEnv("ADMIN_PASSWORD_HASH", ""),
	}
}

// Authorize checks user and password against the configured credentials.
func (a AdminCredentials) Authorize(user, pass string) bool {
	if a.PasswordHash == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(pass)) == nil
}

// RequireAdmin protects the admin API with HTTP basic auth. Without a
// configured password hash every request is rejected.
func RequireAdmin(creds AdminCredentials) fiber.Handler {
	if creds.PasswordHash == "" {
		log.Warn("[Auth] ADMIN_PASSWORD_HASH is not set, admin API is locked")
	}
	return basicauth.New(basicauth.Config{
		Realm:      "EventDesk Admin",
		Authorizer: creds.Authorize,
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="EventDesk Admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "admin credentials required",
			})
		},
	})
}

// RequireMonitorAuth guards the metrics endpoints with static credentials.
func RequireMonitorAuth() fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	})
}
