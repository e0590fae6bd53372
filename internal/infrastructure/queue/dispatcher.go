package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
	"github.com/pomodoro-hub/auth-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher writes audit events through a fixed set of workers. Events are
// sharded by username, so entries for one user are persisted in order.
// Enqueue never blocks: when the target shard is full the event is dropped
// and counted.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	repo    ports.AuditRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after Close
// has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands event to the worker that owns its username.
func (d *Dispatcher) Enqueue(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.shardIndex(event.Username)
	if d.closed {
		d.drop(event, idx, "dispatcher closed")
		return
	}

	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, idx, "queue full")
	}
}

// Close stops accepting events and waits for the workers to flush what is
// already queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(event domain.AuthEvent, idx int, reason string) {
	metrics.AuditEventsDroppedTotal.Inc()
	d.log.Warn().
		Str("username", event.Username).
		Str("kind", string(event.Kind)).
		Int("worker_id", idx).
		Msgf("audit event dropped: %s", reason)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.write(ctx, id, event)
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.AuthEvent) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(writeCtx, &event); err != nil {
		d.log.Error().Err(err).
			Str("username", event.Username).
			Str("kind", string(event.Kind)).
			Int("worker_id", id).
			Msg("audit event write failed")
	}
}
