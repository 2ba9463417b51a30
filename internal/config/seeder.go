package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/pkg/password"

	"go.uber.org/zap"
)

// Seeder handles store seeding
type Seeder struct {
	userRepo repositories.UserRepository
	cfg      *Config
	log      *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(userRepo repositories.UserRepository, cfg *Config, log *zap.Logger) *Seeder {
	return &Seeder{userRepo: userRepo, cfg: cfg, log: log}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdminUser(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// seedAdminUser seeds the bootstrap admin from ADMIN_* variables.
// Admins are created active with the bonus flag already set so that
// activation never credits them.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	admin := s.cfg.Admin
	admin.MobileNumber = strings.TrimSpace(admin.MobileNumber)
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if !admin.Enabled() {
		s.log.Info("Admin seed skipped, ADMIN_EMAIL/ADMIN_MOBILE/ADMIN_PIN not set")
		return nil
	}

	count, err := s.userRepo.Count(ctx, domain.UserFilter{Role: domain.RoleAdmin})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = s.userRepo.FindByContact(ctx, admin.MobileNumber, admin.Email)
	if err == nil {
		s.log.Warn("Admin seed skipped, contact already registered to a non-admin account",
			zap.String("email", admin.Email))
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hashedPin, err := password.Hash(admin.Pin)
	if err != nil {
		return err
	}

	user := &domain.User{
		Name:         admin.Name,
		MobileNumber: admin.MobileNumber,
		Email:        admin.Email,
		Pin:          hashedPin,
		Status:       domain.StatusActive,
		Role:         domain.RoleAdmin,
		Bonus:        true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.log.Info("Admin user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return nil
}
