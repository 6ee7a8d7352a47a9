package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/password"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minPasswordLen = 8
	maxUsernameLen = 64
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   authdomain.Repository
	Config config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  authdomain.Repository
	cfg   config.Config
}

func New(p Params) authdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		cfg:   p.Config,
	}
}

func (s *Service) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.UserResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, authdomain.ErrWeakPassword
	}

	existing, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, authdomain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		ExternalID:   uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user created", zap.String("username", username), zap.String("external_id", user.ExternalID))
	return toResponse(user), nil
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.UserResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, authdomain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		s.log.Warn("login failed", zap.String("username", username))
		return nil, authdomain.ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	if err := s.repo.TouchLogin(ctx, s.db, user.ID, now); err != nil {
		return nil, err
	}
	if password.NeedsRehash(user.PasswordHash) {
		hash, err := password.Hash(req.Password)
		if err == nil {
			err = s.repo.UpdatePasswordHash(ctx, s.db, user.ID, hash, now)
		}
		if err != nil {
			s.log.Warn("password rehash failed", zap.String("username", username), zap.Error(err))
		}
	}
	return toResponse(user), nil
}

func (s *Service) EnsureBootstrap(ctx context.Context) error {
	if s.cfg.BootstrapUsername == "" {
		return nil
	}
	count, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if s.cfg.BootstrapPassword == "" {
		return fmt.Errorf("%w: auth.bootstrap_password is required with auth.bootstrap_username", authdomain.ErrWeakPassword)
	}

	_, err = s.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: s.cfg.BootstrapUsername,
		Password: s.cfg.BootstrapPassword,
	})
	return err
}

func normalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if username == "" || len(username) > maxUsernameLen {
		return "", authdomain.ErrInvalidUsername
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", authdomain.ErrInvalidUsername
		}
	}
	return username, nil
}

func toResponse(user *authdomain.User) *authdomain.UserResponse {
	return &authdomain.UserResponse{
		ID:         user.ID.String(),
		ExternalID: user.ExternalID,
		Username:   user.Username,
	}
}
