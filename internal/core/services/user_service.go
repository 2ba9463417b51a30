package services

import (
	"context"
	"strings"

	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/pkg/metrics"
	"mfs-service/internal/pkg/pagination"

	"go.uber.org/zap"
)

// UserService handles account management and activation
type UserService struct {
	userRepo repositories.UserRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, m *metrics.Metrics, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		metrics:  m,
		log:      log.Named("users"),
	}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page   int
	Limit  int
	Filter domain.UserFilter
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users  []*domain.User
	Params *pagination.Params
	Total  int64
}

// ListUsers lists users matching the filter with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if input.Filter.Status != "" && !input.Filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if input.Filter.Role != "" && !input.Filter.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	input.Filter.Search = strings.TrimSpace(input.Filter.Search)

	params := pagination.NewParams(input.Page, input.Limit)

	users, total, err := s.userRepo.List(ctx, input.Filter, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{
		Users:  users,
		Params: params,
		Total:  total,
	}, nil
}

// GetUser gets a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Activate merges patch into the account and credits the one-time signup
// bonus. The bonus flag is set on every successful call, whether or not a
// credit was due, so a second activation never changes the balance.
func (s *UserService) Activate(ctx context.Context, id string, patch domain.UserPatch) (*domain.ActivationResult, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}

	// 1. Load current record
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. Credit the bonus with a conditional update on bonus=false
	role := domain.EffectiveRole(user, &patch)
	if !user.Bonus {
		if amount, ok := domain.SignupBonus(role); ok {
			result, err := s.userRepo.UpdateActivation(ctx, id, patch, &amount)
			if err != nil {
				return nil, err
			}
			if result.MatchedCount > 0 {
				result.BonusCredited = amount
				s.metrics.Activations.WithLabelValues("credited").Inc()
				s.metrics.BonusCredited.WithLabelValues(string(role)).Add(amount)
				s.log.Info("Signup bonus credited",
					zap.String("id", id),
					zap.String("role", string(role)),
					zap.Float64("amount", amount),
				)
				return result, nil
			}
			// a concurrent activation set the flag first
			s.log.Debug("Bonus already claimed concurrently", zap.String("id", id))
		}
	}

	// 3. No credit due: merge patch and mark as processed
	result, err := s.userRepo.UpdateActivation(ctx, id, patch, nil)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}

	s.metrics.Activations.WithLabelValues("no_bonus").Inc()
	s.log.Info("User activated without bonus", zap.String("id", id), zap.String("role", string(role)))

	return result, nil
}

// Dashboard returns account counts by status and role
func (s *UserService) Dashboard(ctx context.Context) (*domain.UserStats, error) {
	stats := &domain.UserStats{}

	counts := []struct {
		filter domain.UserFilter
		dst    *int64
	}{
		{domain.UserFilter{}, &stats.Total},
		{domain.UserFilter{Status: domain.StatusPending}, &stats.Pending},
		{domain.UserFilter{Status: domain.StatusActive}, &stats.Active},
		{domain.UserFilter{Status: domain.StatusBlocked}, &stats.Blocked},
		{domain.UserFilter{Role: domain.RoleUser}, &stats.Users},
		{domain.UserFilter{Role: domain.RoleAgent}, &stats.Agents},
		{domain.UserFilter{Role: domain.RoleAdmin}, &stats.Admins},
	}

	for _, c := range counts {
		n, err := s.userRepo.Count(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	return stats, nil
}
