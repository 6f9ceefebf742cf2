package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EDUSPHERE_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "EduSphere API", cfg.AppName)
	require.Equal(t, ":5000", cfg.HTTPAddress())
	require.Equal(t, "gpt-4o", cfg.AIModel)
	require.InDelta(t, 0.7, cfg.AITemperature, 1e-6)
	require.Equal(t, 1500, cfg.AIMaxTokens)
	require.Equal(t, time.Second, cfg.BulkGradingDelay)
	require.Equal(t, 24*time.Hour, cfg.GradingJobTTL)
	require.Equal(t, "edusphere.submissions.graded", cfg.NATSSubject)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EDUSPHERE_JWT_SECRET", "secret")
	t.Setenv("EDUSPHERE_GRADING_BULK_DELAY", "250ms")
	t.Setenv("EDUSPHERE_AI_MODEL", "gpt-4o-mini")
	t.Setenv("EDUSPHERE_APP_PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.BulkGradingDelay)
	require.Equal(t, "gpt-4o-mini", cfg.AIModel)
	require.Equal(t, ":9090", cfg.HTTPAddress())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("EDUSPHERE_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDelay(t *testing.T) {
	t.Setenv("EDUSPHERE_JWT_SECRET", "secret")
	t.Setenv("EDUSPHERE_GRADING_BULK_DELAY", "soon")

	_, err := Load()
	require.Error(t, err)
}
