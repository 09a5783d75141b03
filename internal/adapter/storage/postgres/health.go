package postgres

import "context"

// Health adapts the pool to ports.HealthChecker.
type Health struct {
	pool Pool
}

func NewHealth(pool Pool) *Health {
	return &Health{pool: pool}
}

func (h *Health) Name() string { return "postgres" }

func (h *Health) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}
