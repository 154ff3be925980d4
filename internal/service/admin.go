package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/community_gallery/internal/hash"
	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/repo"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
	"github.com/Skotchmaster/community_gallery/pkg/tokens"
)

type AdminService struct {
	Repo       *repo.GormRepo
	JWTSecret  []byte
	SessionTTL time.Duration
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *models.AdminUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AdminService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "admin.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	admin, err := s.Repo.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(notFound(err, "admin"), ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return nil, err
	}
	if !hash.CheckPassword(admin.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "email", email)
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	exp := time.Now().Add(s.SessionTTL)
	token, err := tokens.CreateAccessToken(s.JWTSecret, strconv.FormatUint(uint64(admin.ID), 10), admin.Email, exp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Admin: admin}, nil
}

// Bootstrap creates the first admin account. Once any admin exists it fails
// with ErrConflict.
func (s *AdminService) Bootstrap(ctx context.Context, email, password string) (*models.AdminUser, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooShort) {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, hash.MinPasswordLength)
		}
		return nil, err
	}

	admin := &models.AdminUser{Email: email, PasswordHash: pwHash}
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.LockAdminBootstrap(ctx); err != nil {
			return err
		}
		n, err := tx.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: admin already exists", ErrConflict)
		}
		return tx.CreateAdmin(ctx, admin)
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("admin_bootstrapped", "admin_id", admin.ID)
	return admin, nil
}
