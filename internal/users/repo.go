package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/internal/repo"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordLogin stamps last_login_at and, when passwordHash is set, swaps in
// a hash computed with the current argon2 costs.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, passwordHash string) error {
	updates := map[string]any{"last_login_at": at}
	if passwordHash != "" {
		updates["password_hash"] = passwordHash
	}
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}
