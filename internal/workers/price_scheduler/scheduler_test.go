package price_scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "1 0 * * *", cfg.Schedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.NotZero(t, cfg.RunTimeout)
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Not/AZone"

	_, err := NewScheduler(nil, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestSchedulerLifecycle(t *testing.T) {
	sched, err := NewScheduler(nil, DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, sched.Start())
	assert.Error(t, sched.Start(), "second start must be rejected")

	sched.Stop()
	sched.Stop() // stopping twice is fine
}

func TestNewScheduler_BadExpressionFailsOnStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schedule = "not a cron line"

	sched, err := NewScheduler(nil, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, sched.Start())
}
