package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mfs-service/internal/core/domain"

	"github.com/google/uuid"
)

// memoryUserRepository keeps users in process memory.
// Used for local development (DB_DRIVER=memory) and tests.
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMemoryUserRepository creates an empty in-memory user repository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.MobileNumber == user.MobileNumber || u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *memoryUserRepository) FindByContact(ctx context.Context, mobileNumber, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.MobileNumber == mobileNumber || u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepository) List(ctx context.Context, filter domain.UserFilter, offset, limit int) ([]*domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset < 0 || offset >= len(matched) {
		return []*domain.User{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*domain.User, 0, end-offset)
	for _, u := range matched[offset:end] {
		out := *u
		page = append(page, &out)
	}
	return page, total, nil
}

func (r *memoryUserRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.match(filter))), nil
}

// UpdateActivation performs the bonus compare-and-set under the write lock
func (r *memoryUserRepository) UpdateActivation(ctx context.Context, id string, patch domain.UserPatch, credit *float64) (*domain.ActivationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return &domain.ActivationResult{}, nil
	}
	if credit != nil && u.Bonus {
		return &domain.ActivationResult{}, nil
	}

	before := *u
	patch.Apply(u)
	if credit != nil {
		u.Balance = *credit
	}
	u.Bonus = true

	result := &domain.ActivationResult{MatchedCount: 1}
	if *u != before {
		u.UpdatedAt = time.Now().UTC()
		result.ModifiedCount = 1
	}
	return result, nil
}

func (r *memoryUserRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *memoryUserRepository) Close(ctx context.Context) error {
	return nil
}

// match must be called with the lock held
func (r *memoryUserRepository) match(filter domain.UserFilter) []*domain.User {
	search := strings.ToLower(filter.Search)

	var out []*domain.User
	for _, u := range r.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.MobileNumber), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out
}
