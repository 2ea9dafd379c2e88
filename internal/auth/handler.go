package auth

import (
	"errors"
	"sync"
	"time"

	"recon-backend/internal/audit"
	"recon-backend/internal/config"
	"recon-backend/internal/logger"
	"recon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RegisterAdminRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PublicUser struct {
	Username    string          `json:"username"`
	Role        models.UserRole `json:"role"`
	DisplayName string          `json:"display_name"`
}

func publicUser(u *models.User) PublicUser {
	return PublicUser{Username: u.Username, Role: u.Role, DisplayName: u.PublicName()}
}

var errAdminExists = errors.New("admin already exists")

// POST /api/auth/register-admin
// Only works while no admin exists. The check and the insert run in one
// transaction and concurrent requests are serialized.
func RegisterAdminHandler(db *gorm.DB, rec *audit.Recorder) fiber.Handler {
	var mu sync.Mutex

	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		mu.Lock()
		defer mu.Unlock()

		var user *models.User
		err := db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			exists, err := hasAdmin(c.UserContext(), tx)
			if err != nil {
				return err
			}
			if exists {
				return errAdminExists
			}

			user, err = CreateUser(c.UserContext(), tx, NewUser{
				Username:    body.Username,
				DisplayName: body.DisplayName,
				Password:    body.Password,
				Role:        models.RoleAdmin,
			})
			return err
		})
		switch {
		case errors.Is(err, errAdminExists):
			return fiber.NewError(fiber.StatusForbidden, "Zaten bir admin var")
		case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrWeakPassword):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		log := logger.WithComponent("auth")
		log.Info().Str("username", user.Username).Msg("admin registered")
		recordUser(c, rec, user.Username, models.AuditActionAdminRegister, user)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"user":    publicUser(user),
		})
	}
}

type CreateUserRequest struct {
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	Password    string          `json:"password"`
	Role        models.UserRole `json:"role"`
}

// POST /api/admin/users
func CreateUserHandler(db *gorm.DB, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		user, err := CreateUser(c.UserContext(), db, NewUser{
			Username:    body.Username,
			DisplayName: body.DisplayName,
			Password:    body.Password,
			Role:        body.Role,
		})
		switch {
		case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidRole):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		actor, _ := c.Locals(CtxUsernameKey).(string)
		recordUser(c, rec, actor, models.AuditActionUserCreate, user)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"user":    publicUser(user),
		})
	}
}

func recordUser(c *fiber.Ctx, rec *audit.Recorder, actor string, action models.AuditAction, user *models.User) {
	err := rec.WriteLog(c.UserContext(), audit.LogOptions{
		UserName:    actor,
		Action:      action,
		Description: "user " + user.Username + " (" + string(user.Role) + ")",
		Detail:      publicUser(user),
	})
	if err != nil {
		log := logger.WithComponent("auth")
		log.Warn().Err(err).Str("username", user.Username).Msg("audit log not written")
	}
}

// GET /api/admin/users
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.WithContext(c.UserContext()).Order("username asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		resp := make([]fiber.Map, 0, len(users))
		for i := range users {
			resp = append(resp, fiber.Map{
				"username":     users[i].Username,
				"role":         users[i].Role,
				"display_name": users[i].PublicName(),
				"enabled":      users[i].Enabled,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı veya şifre hatalı")
		}

		user, err := FindUser(c.UserContext(), db, body.Username)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
		}
		if user == nil || !user.Enabled || !CheckPassword(user, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		}

		ttl := time.Duration(cfg.TokenExpiresInHours) * time.Hour
		token, err := GenerateToken(cfg.JWTSecret, user, ttl)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		log := logger.WithComponent("auth")
		log.Info().
			Str("username", user.Username).
			Str("role", string(user.Role)).
			Msg("login success")

		return c.JSON(fiber.Map{
			"success":    true,
			"token":      token,
			"expires_in": int(ttl.Seconds()),
			"user":       publicUser(user),
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, _ := c.Locals(CtxUsernameKey).(string)
		role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
		name, _ := c.Locals(CtxDisplayNameKey).(string)
		if username == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Yetkisiz")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"user":    PublicUser{Username: username, Role: role, DisplayName: name},
		})
	}
}

// POST /api/auth/logout
// Tokens are stateless; the client drops its copy.
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	}
}
