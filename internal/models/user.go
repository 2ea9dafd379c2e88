package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleReader UserRole = "reader"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleReader
}

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:100;uniqueIndex;not null"`
	DisplayName  string   `gorm:"size:100"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	Enabled      bool     `gorm:"not null"`

	// Bu andan önce üretilmiş token'lar geçersiz
	PasswordChangedAt time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicName - görünen ad, boşsa kullanıcı adı
func (u User) PublicName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
