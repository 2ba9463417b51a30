package services

import (
	"context"
	"testing"

	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/config"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/pkg/metrics"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	repo    repositories.UserRepository
	metrics *metrics.Metrics
	auth    *AuthService
	users   *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repositories.NewMemoryUserRepository()
	m := metrics.New()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	log := zap.NewNop()

	return &testEnv{
		repo:    repo,
		metrics: m,
		auth:    NewAuthService(repo, cfg, m, log),
		users:   NewUserService(repo, m, log),
	}
}

// seedUser stores a user directly, bypassing registration
func (e *testEnv) seedUser(t *testing.T, u domain.User) *domain.User {
	t.Helper()
	require.NoError(t, e.repo.Create(context.Background(), &u))
	return &u
}

func (e *testEnv) register(t *testing.T, mobile, email, role string) *domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), &RegisterInput{
		Name:         "Test " + mobile,
		MobileNumber: mobile,
		Email:        email,
		Pin:          "12345",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func statusPtr(s domain.Status) *domain.Status { return &s }

func rolePtr(r domain.Role) *domain.Role { return &r }

func strPtr(s string) *string { return &s }
