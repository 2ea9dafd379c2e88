package auth

import (
	"encoding/json"
	"strings"

	"recon-backend/internal/config"
	"recon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

const (
	CtxUsernameKey    = "username"
	CtxUserRoleKey    = "user_role"
	CtxDisplayNameKey = "display_name"
)

func JWTMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş token")
		}

		// The user must still be enabled and the password unchanged since issue.
		user, err := FindUser(c.UserContext(), db, claims.Subject)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
		}
		if user == nil || !user.Enabled {
			return fiber.NewError(fiber.StatusUnauthorized, "Yetkisiz")
		}
		if claims.PasswordVersion < user.PasswordChangedAt.Unix() {
			return fiber.NewError(fiber.StatusUnauthorized, "Token süresi dolmuş")
		}

		c.Locals(CtxUsernameKey, user.Username)
		c.Locals(CtxUserRoleKey, user.Role)
		c.Locals(CtxDisplayNameKey, user.PublicName())

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
}

// RequireExport lets admins and editors export; readers only when the
// configuration allows it.
func RequireExport(cfg *config.Config) fiber.Handler {
	roles := []models.UserRole{models.RoleAdmin, models.RoleEditor}
	if cfg.AllowExportsForReader {
		roles = append(roles, models.RoleReader)
	}
	return RequireRole(roles...)
}

// LoginRateLimiter caps login attempts per client IP and username.
func LoginRateLimiter(cfg *config.Config) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: cfg.LoginRateWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			var body struct {
				Username string `json:"username"`
			}
			_ = json.Unmarshal(c.Body(), &body)
			name := strings.TrimSpace(strings.ToLower(body.Username))
			if name == "" {
				name = "unknown"
			}
			return c.IP() + ":" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Çok fazla giriş denemesi, lütfen daha sonra tekrar deneyin")
		},
	})
}
