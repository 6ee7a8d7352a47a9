package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	TouchLogin(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string, at time.Time) error
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
