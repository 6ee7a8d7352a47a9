package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/repository"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, cfg config.Config) (authdomain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:     dbConn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		Repo:   repository.Provide(),
		Config: cfg,
	})
	return svc, dbConn
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})

	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Username: "alice",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user")
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Username: "alice",
		Password: "wrong-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Username: "nobody",
		Password: "correct-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLoginNormalizesUsername(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: " Bob ", Password: "strong-password"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	user, err := svc.Login(ctx, authdomain.LoginRequest{Username: "BOB", Password: "strong-password"})
	if err != nil {
		t.Fatalf("expected login to succeed: %v", err)
	}
	if user.Username != "bob" {
		t.Fatalf("expected username bob, got %s", user.Username)
	}
	if _, err := uuid.Parse(user.ExternalID); err != nil {
		t.Fatalf("expected external id UUID, got %v", err)
	}
}

func TestCreateUserStoresHashOnly(t *testing.T) {
	svc, dbConn := newTestService(t, config.Config{})

	if _, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{Username: "carol", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	var stored authdomain.User
	if err := dbConn.Where("username = ?", "carol").First(&stored).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "s3cret-pass" || stored.PasswordHash == "" {
		t.Fatalf("expected an encoded hash, got %q", stored.PasswordHash)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "dave", Password: "short"}); !errors.Is(err, authdomain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "da ve", Password: "long-enough"}); !errors.Is(err, authdomain.ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "dave", Password: "long-enough"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if _, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "Dave", Password: "long-enough"}); !errors.Is(err, authdomain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestEnsureBootstrap(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t, config.Config{BootstrapUsername: "admin"})
	if err := svc.EnsureBootstrap(ctx); !errors.Is(err, authdomain.ErrWeakPassword) {
		t.Fatalf("expected missing bootstrap password to fail, got %v", err)
	}

	svc, _ = newTestService(t, config.Config{BootstrapUsername: "admin", BootstrapPassword: "change-me-now"})
	if err := svc.EnsureBootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := svc.EnsureBootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap should be a no-op: %v", err)
	}
	if _, err := svc.Login(ctx, authdomain.LoginRequest{Username: "admin", Password: "change-me-now"}); err != nil {
		t.Fatalf("expected bootstrap operator to log in: %v", err)
	}

	svc, _ = newTestService(t, config.Config{})
	if err := svc.EnsureBootstrap(ctx); err != nil {
		t.Fatalf("bootstrap without username should be a no-op: %v", err)
	}
}
