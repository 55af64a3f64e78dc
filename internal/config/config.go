package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the control plane reads from the environment. It is
// populated once in main and passed by reference; nothing else touches the
// process environment after startup.
type Config struct {
	ListenAddr      string        // API bind address
	StopGrace       time.Duration // grace period before a stop turns into a kill
	ShutdownTimeout time.Duration // grace period for draining the API on SIGTERM
}

// FromEnv builds a Config from environment variables so main stays lean.
// Invalid values are returned as errors, not defaulted away: a misconfigured
// process should exit non-zero before it binds anything.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:      ":3000",
		StopGrace:       10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	if v := os.Getenv("BEACON_ADDR"); v != "" {
		cfg.ListenAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		// Hosting platforms hand out the port; binding anything else would
		// leave the process unreachable.
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("BEACON_STOP_GRACE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid BEACON_STOP_GRACE %q", v)
		}
		cfg.StopGrace = d
	}
	return cfg, nil
}
