package services

import "time"

// Strategy names accepted by NewHoldService.
const (
	StrategyOptimistic  = "optimistic"
	StrategyPessimistic = "pessimistic"
)

// Config carries the tunables the coordinators need. TTLs are explicit
// here rather than read from ambient state so the core stays testable.
type Config struct {
	// HoldTTL bounds a fresh hold.
	HoldTTL time.Duration
	// RetryHoldTTL bounds the re-held window after a payment failure. It is
	// deliberately shorter than HoldTTL.
	RetryHoldTTL time.Duration
	// LockWait bounds how long a pessimistic hold waits for the seat lock.
	LockWait time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		HoldTTL:      10 * time.Minute,
		RetryHoldTTL: 2 * time.Minute,
		LockWait:     3 * time.Second,
	}
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
