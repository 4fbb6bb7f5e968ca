package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/internal/users"
	"github.com/watchengine/watch-engine-backend/pkg/db"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/security"
)

const emailTakenMessage = "email already registered"

// Register creates an account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := security.CheckPasswordPolicy(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "password does not meet requirements")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		// lost a race with a concurrent sign-up
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	now, err := s.recordLogin(ctx, user, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, now)
}
