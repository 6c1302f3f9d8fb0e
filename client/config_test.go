package client

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PROPOSALS_API_BASE_URL", "PROPOSALS_API_TIMEOUT", "PROPOSALS_ACTOR"} {
		t.Setenv(key, "") // restores the original value on cleanup
		os.Unsetenv(key)
	}

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8090", cfg.BaseURL)
	require.Equal(t, 15*time.Second, cfg.Timeout)
	require.Empty(t, cfg.Actor)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("PROPOSALS_API_BASE_URL", "https://fees.example.com")
	t.Setenv("PROPOSALS_API_TIMEOUT", "3s")
	t.Setenv("PROPOSALS_ACTOR", "erin")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, "https://fees.example.com", cfg.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Timeout)
	require.Equal(t, "erin", cfg.Actor)
}

func TestLoadConfigFromEnv_InvalidTimeout(t *testing.T) {
	t.Setenv("PROPOSALS_API_TIMEOUT", "soon")

	_, err := LoadConfigFromEnv()
	require.Error(t, err)
}
