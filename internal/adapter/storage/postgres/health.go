package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const healthTimeout = 2 * time.Second

var errSchemaMissing = errors.New("schema not applied: user_wallet table missing")

// HealthCheck implements ports.HealthChecker for PostgreSQL. A reachable
// database without the ledger tables is reported unhealthy.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping checks connectivity and that the schema is in place.
func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var present bool
	if err := h.pool.QueryRow(ctx, "SELECT to_regclass('user_wallet') IS NOT NULL").Scan(&present); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	if !present {
		return errSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
