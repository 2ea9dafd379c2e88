package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recon-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

var (
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidRole     = errors.New("invalid user role")
	ErrInvalidUsername = errors.New("username is required")
	ErrWeakPassword    = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

type NewUser struct {
	Username    string
	DisplayName string
	Password    string
	Role        models.UserRole
}

// CreateUser validates and stores an enabled user.
func CreateUser(ctx context.Context, db *gorm.DB, in NewUser) (*models.User, error) {
	const op = "auth.CreateUser"

	username := strings.TrimSpace(strings.ToLower(in.Username))
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Username:          username,
		DisplayName:       strings.TrimSpace(in.DisplayName),
		PasswordHash:      hash,
		Role:              in.Role,
		Enabled:           true,
		PasswordChangedAt: time.Now().Truncate(time.Second),
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// FindUser returns nil, nil when the username is unknown.
func FindUser(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(strings.ToLower(username))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(user *models.User, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plain)) == nil
}

func hasAdmin(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
