package ports

import "context"

// HealthChecker is implemented by infrastructure adapters that can report
// their own liveness.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}
