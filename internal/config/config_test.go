package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.ListenAddr)
	require.Equal(t, 10*time.Second, cfg.StopGrace)
}

func TestPortFromPlatform(t *testing.T) {
	t.Setenv("PORT", "8080")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
}

func TestExplicitAddrWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BEACON_ADDR", "127.0.0.1:9000")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
}

func TestInvalidPortFailsFast(t *testing.T) {
	for _, v := range []string{"abc", "0", "70000", "-1"} {
		t.Setenv("PORT", v)
		_, err := FromEnv()
		require.Error(t, err, "PORT=%s", v)
	}
}

func TestStopGrace(t *testing.T) {
	t.Setenv("BEACON_STOP_GRACE", "30s")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.StopGrace)

	t.Setenv("BEACON_STOP_GRACE", "soon")
	_, err = FromEnv()
	require.Error(t, err)
}
