// Package ratelimit provides request pacing for the ingestion pipeline.
//
// start.gg enforces a request budget per credential. The pipeline processes
// tournaments strictly sequentially and pauses for a fixed interval after
// each remote query, which makes the pause an effective global rate limit
// without any shared limiter state. The Pacer implements that pause as a
// context-aware wait; the pause happens after successful fetches too, not
// only on errors.
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for request pacing.
var (
	pacerWaitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_pacer_waits_total",
		Help: "Total number of pacing pauses by pacer name",
	}, []string{"pacer"})

	pacerWaitSeconds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_pacer_wait_seconds_total",
		Help: "Cumulative time spent in pacing pauses by pacer name",
	}, []string{"pacer"})
)

// Pacer enforces a fixed pause between consecutive remote queries.
type Pacer struct {
	name     string
	interval time.Duration
	logger   zerolog.Logger
}

// NewPacer creates a pacer that pauses for interval on every Wait call.
// A non-positive interval disables pacing.
func NewPacer(name string, interval time.Duration) *Pacer {
	return &Pacer{
		name:     name,
		interval: interval,
		logger:   log.With().Str("component", "pacer").Str("pacer", name).Logger(),
	}
}

// Wait blocks for the configured interval or until the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	pacerWaitsTotal.WithLabelValues(p.name).Inc()
	pacerWaitSeconds.WithLabelValues(p.name).Add(p.interval.Seconds())

	p.logger.Debug().
		Dur("interval", p.interval).
		Msg("Pacing pause")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.interval):
		return nil
	}
}
