package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
)

const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
	LocalUser     = "user"
)

// Authenticator token'ı doğrular ve kullanıcıyı veritabanından yükler.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func setUser(c *fiber.Ctx, user *models.User) {
	c.Locals(LocalUserID, user.ID)
	c.Locals(LocalUserRole, user.Role)
	c.Locals(LocalUser, user)
}

func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authorization header is required"))
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid token"))
		}

		setUser(c, user)
		return c.Next()
	}
}

// OptionalAuth geçerli token varsa kullanıcıyı yükler, yoksa isteği anonim olarak geçirir.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
				setUser(c, user)
			}
		}
		return c.Next()
	}
}

// RequireAdmin AuthMiddleware'den sonra kullanılmalı.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(models.Role)
		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Admin access required"))
		}
		return c.Next()
	}
}

// UserID anonim isteklerde nil döner.
func UserID(c *fiber.Ctx) *uint {
	id, ok := c.Locals(LocalUserID).(uint)
	if !ok {
		return nil
	}
	return &id
}
