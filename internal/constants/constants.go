package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout     = 5 * time.Second
	AuditPublishTimeout = 10 * time.Second
)

const (
	// Hard ceiling on harness-injected delays so a demo request can
	// never pin a worker for longer than this.
	MaxSimulatedDelay = 5 * time.Second

	// Wait applied by the timeout scenario when the caller gives no
	// explicit delay.
	DefaultTimeoutScenarioDelay = 2 * time.Second
)
