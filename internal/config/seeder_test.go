package config

import (
	"context"
	"testing"

	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeederCreatesAdminOnce(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()
	cfg := &Config{Admin: AdminConfig{
		Name:         "Root",
		MobileNumber: "01900000000",
		Email:        "admin@mfs.test",
		Pin:          "98765",
	}}

	seeder := NewSeeder(repo, cfg, zap.NewNop())
	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))

	count, err := repo.Count(ctx, domain.UserFilter{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	admin, err := repo.FindByContact(ctx, "01900000000", "admin@mfs.test")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, admin.Status)
	assert.True(t, admin.Bonus)
	assert.Zero(t, admin.Balance)
	assert.True(t, password.Verify("98765", admin.Pin))
}

func TestSeederSkipsWithoutAdminConfig(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()

	require.NoError(t, NewSeeder(repo, &Config{}, zap.NewNop()).Run(ctx))

	count, err := repo.Count(ctx, domain.UserFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSeederNormalizesAdminEmail(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()
	cfg := &Config{Admin: AdminConfig{
		Name:         "Root",
		MobileNumber: "01900000000",
		Email:        " Admin@MFS.Test ",
		Pin:          "98765",
	}}

	require.NoError(t, NewSeeder(repo, cfg, zap.NewNop()).Run(ctx))

	// login looks contacts up by the lowercased identifier
	admin, err := repo.FindByContact(ctx, "admin@mfs.test", "admin@mfs.test")
	require.NoError(t, err)
	assert.Equal(t, "admin@mfs.test", admin.Email)
	assert.Equal(t, "Admin@MFS.Test", cfg.Admin.Email)
}
