package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errs []error

	if err := validateServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}

	if err := validatePipeline(cfg.Pipeline); err != nil {
		errs = append(errs, err)
	}

	if err := validateAudit(cfg.Audit); err != nil {
		errs = append(errs, err)
	}

	if err := validateRateLimit(cfg.RateLimit); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validatePipeline(cfg PipelineConfig) error {
	if cfg.MaxSimulatedDelayMs < 0 {
		return &ValidationError{
			Field:   "pipeline.max_simulated_delay_ms",
			Message: "delay cap must not be negative",
		}
	}

	if cfg.TimeoutScenarioDelayMs < 0 {
		return &ValidationError{
			Field:   "pipeline.timeout_scenario_delay_ms",
			Message: "timeout scenario delay must not be negative",
		}
	}

	return nil
}

func validateAudit(cfg AuditConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "audit.brokers",
			Message: "at least one broker is required when audit publishing is enabled",
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "audit.topic",
			Message: "topic is required when audit publishing is enabled",
		}
	}

	return nil
}

func validateRateLimit(cfg RateLimitConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RPS <= 0 {
		return &ValidationError{
			Field:   "rate_limit.rps",
			Message: "rps must be positive when rate limiting is enabled",
		}
	}

	if cfg.Burst <= 0 {
		return &ValidationError{
			Field:   "rate_limit.burst",
			Message: "burst must be positive when rate limiting is enabled",
		}
	}

	return nil
}
