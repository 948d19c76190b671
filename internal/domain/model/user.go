package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// メール確認の状態
type VerifyStatus string

const (
	VerifyUnverified VerifyStatus = "UNVERIFIED"
	VerifyVerified   VerifyStatus = "VERIFIED"
	VerifyBanned     VerifyStatus = "BANNED"
)

type User struct {
	ID           int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	Role         Role         `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Verify       VerifyStatus `gorm:"type:varchar(20);not null;default:'UNVERIFIED'" json:"verify"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`

	//未消費の確認トークン（再発行で上書き、消費でクリア）
	EmailVerifyToken   string `gorm:"type:text" json:"-"`
	PasswordResetToken string `gorm:"type:text" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
