package services

import (
	"context"
	"testing"

	"mfs-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPendingDigest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "01711111111", "alice@mfs.test", "User")
	env.register(t, "01822222222", "bob@mfs.test", "Agent")

	_, err := env.users.Activate(ctx, a.ID, domain.UserPatch{Status: statusPtr(domain.StatusActive)})
	require.NoError(t, err)

	cron := NewCronService(env.repo, "@every 1h", env.metrics, zap.NewNop())
	pending, err := cron.PendingDigest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	families, err := env.metrics.Registry.Gather()
	require.NoError(t, err)

	var gauge float64
	found := false
	for _, f := range families {
		if f.GetName() == "mfs_pending_accounts" {
			gauge = f.GetMetric()[0].GetGauge().GetValue()
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, float64(1), gauge)
}

func TestCronServiceStartStop(t *testing.T) {
	env := newTestEnv(t)

	cron := NewCronService(env.repo, "@every 1h", env.metrics, zap.NewNop())
	require.NoError(t, cron.Start())
	cron.Stop()
}

func TestCronServiceRejectsBadSchedule(t *testing.T) {
	env := newTestEnv(t)

	cron := NewCronService(env.repo, "not a schedule", env.metrics, zap.NewNop())
	assert.Error(t, cron.Start())
}
