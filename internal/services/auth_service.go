package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/ArowuTest/prizedraw-backend/internal/config"
	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// OperatorRole is the only role issued; it may import rosters and run draws
const OperatorRole = "operator"

type authService struct {
	admin models.AdminUser
	cfg   *config.Config
}

// NewAuthService creates a new AuthService for the configured operator
func NewAuthService(cfg *config.Config) AuthService {
	if cfg.Admin.PasswordHash == "" {
		slog.Warn("No admin password hash configured, all logins will be refused")
	}
	return &authService{
		admin: models.AdminUser{
			Username:     cfg.Admin.Username,
			PasswordHash: cfg.Admin.PasswordHash,
			Role:         OperatorRole,
		},
		cfg: cfg,
	}
}

// Login checks the operator credentials and issues a bearer token
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	// 1. Check the username without leaking its length through timing
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.admin.Username)) == 1

	// 2. Always run bcrypt so a wrong username costs the same as a wrong password
	hash := s.admin.PasswordHash
	if hash == "" {
		hash = unusableHash
	}
	passErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password))
	if !userOK || passErr != nil || s.admin.PasswordHash == "" {
		slog.Warn("Failed login attempt", "username", req.Username)
		return nil, ErrInvalidCredentials
	}

	// 3. Issue the token
	token, err := utils.GenerateJWT(s.admin.Username, s.admin.Role, s.cfg)
	if err != nil {
		slog.Error("Failed to issue token", "error", err, "username", req.Username)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("Operator logged in", "username", s.admin.Username)
	return &models.LoginResponse{Token: token, ExpiresIn: s.cfg.JWT.ExpiresIn}, nil
}

// unusableHash is a valid bcrypt hash no password matches
const unusableHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z4yPbRZ3M8Xoe8sBXv1Ynp5S"
