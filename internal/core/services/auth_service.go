package services

import (
	"context"
	"errors"
	"strings"

	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/config"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/pkg/jwt"
	"mfs-service/internal/pkg/metrics"
	"mfs-service/internal/pkg/password"

	"go.uber.org/zap"
)

// AuthService handles registration, login and session validation
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	cfg *config.Config,
	m *metrics.Metrics,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		metrics:  m,
		log:      log.Named("auth"),
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name         string
	MobileNumber string
	Email        string
	Pin          string
	Role         string
}

// LoginInput represents login input. Identifier is a mobile number or email.
type LoginInput struct {
	Identifier string
	Pin        string
}

// LoginResult carries the authenticated user and its session token
type LoginResult struct {
	User  *domain.User
	Token string
}

// Register registers a new pending account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*domain.User, error) {
	// 1. Normalize and validate
	name := strings.TrimSpace(input.Name)
	mobile := strings.TrimSpace(input.MobileNumber)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || mobile == "" || email == "" {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePin(input.Pin) {
		return nil, domain.ErrInvalidPin
	}

	role := domain.RoleUser
	if r := strings.TrimSpace(input.Role); r != "" {
		role = domain.Role(r)
	}
	if !role.Registrable() {
		return nil, domain.ErrInvalidRole
	}

	// 2. Check if mobile number or email already registered
	_, err := s.userRepo.FindByContact(ctx, mobile, email)
	if err == nil {
		s.metrics.Registrations.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	// 3. Hash pin
	hashedPin, err := password.Hash(input.Pin)
	if err != nil {
		return nil, err
	}

	// 4. Create user
	user := &domain.User{
		Name:         name,
		MobileNumber: mobile,
		Email:        email,
		Pin:          hashedPin,
		Status:       domain.StatusPending,
		Role:         role,
		Balance:      0,
		Bonus:        false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			s.metrics.Registrations.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	s.metrics.Registrations.WithLabelValues("created").Inc()
	s.log.Info("User registered",
		zap.String("id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Login authenticates a user by mobile number or email and pin
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Pin == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// 1. Find user by mobile number or email
	user, err := s.userRepo.FindByContact(ctx, identifier, strings.ToLower(identifier))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.metrics.Logins.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify pin
	if !password.Verify(input.Pin, user.Pin) {
		s.metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Blocked accounts cannot sign in
	if user.Status == domain.StatusBlocked {
		s.metrics.Logins.WithLabelValues("blocked").Inc()
		return nil, domain.ErrUserBlocked
	}

	// 4. Issue session
	token, err := jwt.GenerateSessionToken(SessionUserOf(user), s.cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	s.metrics.Logins.WithLabelValues("ok").Inc()
	s.log.Info("User logged in", zap.String("id", user.ID))

	return &LoginResult{User: user, Token: token}, nil
}

// ValidateSession validates a session token
func (s *AuthService) ValidateSession(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateSessionToken(token, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// SessionUserOf projects the user fields embedded in a session token
func SessionUserOf(u *domain.User) jwt.SessionUser {
	return jwt.SessionUser{
		ID:           u.ID,
		Name:         u.Name,
		MobileNumber: u.MobileNumber,
		Email:        u.Email,
		Role:         string(u.Role),
		Status:       string(u.Status),
	}
}
