// Package sink forwards finished trust reports to external destinations.
// Delivery is fire-and-forget: the emitter buffers reports and drops rather
// than block when the buffer is full, so a slow destination never stalls
// the analysis path.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"veristone-hq/clarion/pkg/report"
)

// Sink consumes trust reports (webhook, log, etc.).
type Sink interface {
	Name() string
	Deliver(context.Context, *report.TrustReport) error
	Close(context.Context) error
}

// Observer receives delivery outcomes so an external metrics registry can
// mirror the emitter's internal counters. Outcome is "ok" or "error".
type Observer interface {
	RecordReportEmitted(sink, outcome string)
	RecordReportDropped()
}

// Metrics holds counters for report delivery.
type Metrics struct {
	enqueued uint64
	dropped  uint64

	sinkSuccess map[string]uint64
	sinkFailure map[string]uint64
}

// Snapshot copies the counters for observation.
func (m *Metrics) Snapshot() Metrics {
	if m == nil {
		return Metrics{}
	}
	out := Metrics{
		enqueued:    m.enqueued,
		dropped:     m.dropped,
		sinkSuccess: make(map[string]uint64, len(m.sinkSuccess)),
		sinkFailure: make(map[string]uint64, len(m.sinkFailure)),
	}
	for k, v := range m.sinkSuccess {
		out.sinkSuccess[k] = v
	}
	for k, v := range m.sinkFailure {
		out.sinkFailure[k] = v
	}
	return out
}

// Public accessors for counters.
func (m *Metrics) Enqueued() uint64 { return m.enqueued }
func (m *Metrics) Dropped() uint64  { return m.dropped }
func (m *Metrics) SinkSuccess(name string) uint64 {
	if m == nil {
		return 0
	}
	return m.sinkSuccess[name]
}
func (m *Metrics) SinkFailure(name string) uint64 {
	if m == nil {
		return 0
	}
	return m.sinkFailure[name]
}

// Emitter buffers and delivers trust reports to sinks. It satisfies
// report.Forwarder.
type Emitter struct {
	queue           chan *report.TrustReport
	sinks           []Sink
	workers         int
	metrics         *Metrics
	observer        Observer
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu        sync.RWMutex
	metricsMu sync.Mutex
	closed    bool
	wg        sync.WaitGroup
}

// EmitterConfig controls worker and queue sizing. Observer is optional.
type EmitterConfig struct {
	QueueSize       int
	Workers         int
	ShutdownTimeout time.Duration
	Observer        Observer
}

// NewEmitter starts background workers to deliver reports to the provided
// sinks.
func NewEmitter(cfg EmitterConfig, sinks []Sink) *Emitter {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}

	m := &Metrics{
		sinkSuccess: make(map[string]uint64, len(sinks)),
		sinkFailure: make(map[string]uint64, len(sinks)),
	}
	for _, s := range sinks {
		m.sinkSuccess[s.Name()] = 0
		m.sinkFailure[s.Name()] = 0
	}

	em := &Emitter{
		queue:           make(chan *report.TrustReport, queueSize),
		sinks:           sinks,
		workers:         workerCount,
		metrics:         m,
		observer:        cfg.Observer,
		shutdownTimeout: shutdownTimeout,
		logger:          slog.Default().With("component", "report.sink"),
	}

	for i := 0; i < workerCount; i++ {
		em.wg.Add(1)
		go em.worker()
	}

	return em
}

// Emit attempts to enqueue the report without blocking the request path.
func (e *Emitter) Emit(ctx context.Context, r *report.TrustReport) {
	if e == nil || r == nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.countDrop(r)
		return
	}

	select {
	case e.queue <- r:
		e.metricsMu.Lock()
		e.metrics.enqueued++
		e.metricsMu.Unlock()
	default:
		e.countDrop(r)
	}
}

func (e *Emitter) countDrop(r *report.TrustReport) {
	e.metricsMu.Lock()
	e.metrics.dropped++
	dropped := e.metrics.dropped
	e.metricsMu.Unlock()

	if e.observer != nil {
		e.observer.RecordReportDropped()
	}

	e.logger.Warn("report dropped, sink queue saturated",
		"report_id", r.ID,
		"dropped_total", dropped,
	)
}

// Close stops accepting new reports and waits briefly to drain the queue.
func (e *Emitter) Close(ctx context.Context) {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	waitCtx := ctx
	if waitCtx == nil {
		waitCtx = context.Background()
	}
	if e.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(waitCtx, e.shutdownTimeout)
		defer cancel()
	}

	select {
	case <-done:
	case <-waitCtx.Done():
	}

	for _, s := range e.sinks {
		if err := s.Close(waitCtx); err != nil {
			e.logger.Warn("sink close failed", "sink", s.Name(), "error", err)
		}
	}
}

// MetricsSnapshot safely copies current counters.
func (e *Emitter) MetricsSnapshot() Metrics {
	if e == nil || e.metrics == nil {
		return Metrics{}
	}
	e.metricsMu.Lock()
	defer e.metricsMu.Unlock()
	return e.metrics.Snapshot()
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for r := range e.queue {
		e.deliver(r)
	}
}

func (e *Emitter) deliver(r *report.TrustReport) {
	for _, s := range e.sinks {
		if err := s.Deliver(context.Background(), r); err != nil {
			e.logger.Warn("sink delivery failed",
				"sink", s.Name(),
				"report_id", r.ID,
				"error", err,
			)
			e.metricsMu.Lock()
			e.metrics.sinkFailure[s.Name()]++
			e.metricsMu.Unlock()
			if e.observer != nil {
				e.observer.RecordReportEmitted(s.Name(), "error")
			}
			continue
		}
		e.metricsMu.Lock()
		e.metrics.sinkSuccess[s.Name()]++
		e.metricsMu.Unlock()
		if e.observer != nil {
			e.observer.RecordReportEmitted(s.Name(), "ok")
		}
	}
}
