package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthStatus describes the result of a database health probe.
type HealthStatus struct {
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	OpenConns int32         `json:"open_conns"`
	IdleConns int32         `json:"idle_conns"`
}

// CheckHealth pings the database with a short timeout and reports pool stats.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := pool.Ping(ctx)
	latency := time.Since(start)

	stats := pool.Stat()
	status := HealthStatus{
		Healthy:   err == nil,
		Latency:   latency / time.Millisecond,
		OpenConns: stats.TotalConns(),
		IdleConns: stats.IdleConns(),
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}
