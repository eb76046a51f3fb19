package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel

	Email                 string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash          string     `gorm:"size:255;not null" json:"-"`
	DisplayName           string     `gorm:"size:100" json:"display_name,omitempty"`
	WalletAddress         string     `gorm:"index;size:42" json:"wallet_address,omitempty"`
	SubscriptionTier      string     `gorm:"default:'free'" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	IsActive              bool       `gorm:"default:true" json:"is_active"`
	IsBlocked             bool       `gorm:"default:false" json:"is_blocked"`
	LastActiveAt          *time.Time `json:"last_active_at,omitempty"`
}

func (*User) TableName() string {
	return "users"
}

// SetPassword хешує пароль через bcrypt
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword перевіряє пароль проти збереженого хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

func (u *User) IsPremium() bool {
	return u.IsSubscriptionActive() && u.SubscriptionTier == "premium"
}

func (u *User) IsSubscriptionActive() bool {
	if u.SubscriptionExpiresAt == nil {
		return false
	}

	return time.Now().Before(*u.SubscriptionExpiresAt)
}
