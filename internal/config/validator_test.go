package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8080,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{Level: "info"},
		Audit: AuditConfig{
			Enabled: true,
			Brokers: []string{"localhost:9092"},
			Topic:   "interop.audit",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     100,
			Burst:   200,
		},
	}
}

func TestValidateStaticValid(t *testing.T) {
	assert.NoError(t, ValidateStatic(validConfig()))
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "read timeout missing",
			mutate:  func(c *Config) { c.Server.ReadTimeoutSeconds = 0 },
			wantErr: "server.read_timeout_seconds",
		},
		{
			name:    "negative delay cap",
			mutate:  func(c *Config) { c.Pipeline.MaxSimulatedDelayMs = -1 },
			wantErr: "pipeline.max_simulated_delay_ms",
		},
		{
			name:    "negative timeout scenario delay",
			mutate:  func(c *Config) { c.Pipeline.TimeoutScenarioDelayMs = -1 },
			wantErr: "pipeline.timeout_scenario_delay_ms",
		},
		{
			name:    "audit enabled without brokers",
			mutate:  func(c *Config) { c.Audit.Brokers = nil },
			wantErr: "audit.brokers",
		},
		{
			name:    "audit enabled without topic",
			mutate:  func(c *Config) { c.Audit.Topic = "" },
			wantErr: "audit.topic",
		},
		{
			name:    "rate limit enabled without rps",
			mutate:  func(c *Config) { c.RateLimit.RPS = 0 },
			wantErr: "rate_limit.rps",
		},
		{
			name:    "rate limit enabled without burst",
			mutate:  func(c *Config) { c.RateLimit.Burst = 0 },
			wantErr: "rate_limit.burst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStaticDisabledSubsystemsSkipChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Audit = AuditConfig{Enabled: false}
	cfg.RateLimit = RateLimitConfig{Enabled: false}

	assert.NoError(t, ValidateStatic(cfg))
}
