package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mfs-service/internal/adapters/persistence/models"
	"mfs-service/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository implements UserRepository on a relational database via GORM
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM-backed user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	record := models.NewUserRecord(user)
	record.ID = uuid.NewString()

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = record.ID
	user.CreatedAt = record.CreatedAt
	user.UpdatedAt = record.UpdatedAt
	return nil
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var record models.UserRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return record.ToDomain(), nil
}

// FindByContact gets a user by mobile number or email
func (r *userRepository) FindByContact(ctx context.Context, mobileNumber, email string) (*domain.User, error) {
	var record models.UserRecord
	err := r.db.WithContext(ctx).
		Where("mobile_number = ? OR email = ?", mobileNumber, email).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return record.ToDomain(), nil
}

// List lists users with filter and pagination
func (r *userRepository) List(ctx context.Context, filter domain.UserFilter, offset, limit int) ([]*domain.User, int64, error) {
	var records []*models.UserRecord
	var total int64

	// Count total
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	// Get users with pagination
	err := r.filtered(ctx, filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, len(records))
	for i, record := range records {
		users[i] = record.ToDomain()
	}
	return users, total, nil
}

// Count counts users matching filter
func (r *userRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// UpdateActivation applies an activation update
func (r *userRepository) UpdateActivation(ctx context.Context, id string, patch domain.UserPatch, credit *float64) (*domain.ActivationResult, error) {
	updates := map[string]interface{}{"bonus": true}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Role != nil {
		updates["role"] = string(*patch.Role)
	}

	query := r.db.WithContext(ctx).Model(&models.UserRecord{}).Where("id = ?", id)
	if credit != nil {
		updates["balance"] = *credit
		query = query.Where("bonus = ?", false)
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update user: %w", res.Error)
	}

	result := &domain.ActivationResult{
		MatchedCount:  res.RowsAffected,
		ModifiedCount: res.RowsAffected,
	}

	// MySQL reports changed rows, not matched rows
	if credit == nil && res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.UserRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count user: %w", err)
		}
		result.MatchedCount = count
	}

	return result, nil
}

// Ping checks the database connection
func (r *userRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *userRepository) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *userRepository) filtered(ctx context.Context, filter domain.UserFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.UserRecord{})
	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("mobile_number LIKE ? OR email LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	return query
}

// likeEscaper escapes LIKE wildcards with MySQL's default escape character
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
