package domain

import "context"

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*UserResponse, error)
	// EnsureBootstrap creates the configured operator account when no user exists yet.
	EnsureBootstrap(ctx context.Context) error
}

type CreateUserRequest struct {
	Username string
	Password string
}

type LoginRequest struct {
	Username string
	Password string
}

type UserResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
}
