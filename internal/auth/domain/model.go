// Package domain contains core types for operator accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a local operator account. Only the argon2id hash of the password is stored.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	ExternalID   string       `gorm:"column:external_id;type:varchar(36);not null;uniqueIndex"`
	Username     string       `gorm:"column:username;type:varchar(64);not null;uniqueIndex"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null"`
	LastLoginAt  *time.Time   `gorm:"column:last_login_at"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
