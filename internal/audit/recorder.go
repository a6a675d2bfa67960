// Package audit implements the fire-and-forget audit trail. Entries are
// handed to a bounded channel and written by a single worker goroutine, so
// a slow or failing audit store can never block or abort the primary
// operation.
package audit

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-account-service/internal/metrics"
	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/queue"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// Store is the persistence capability the recorder writes through.
type Store interface {
	Insert(ctx context.Context, e *model.AuditLog) error
}

// Recorder accepts audit entries without blocking the caller. When the
// buffer is full entries are dropped and counted; availability of the
// primary operation is worth more than completeness of the trail.
type Recorder struct {
	store   Store
	amqpURL string // empty disables security event publishing
	ch      chan model.AuditLog
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

// NewRecorder starts the worker. bufferSize bounds the number of in-flight
// entries; values below 1 are raised to 1.
func NewRecorder(store Store, amqpURL string, bufferSize int) *Recorder {
	if bufferSize < 1 {
		bufferSize = 1
	}
	r := &Recorder{
		store:   store,
		amqpURL: amqpURL,
		ch:      make(chan model.AuditLog, bufferSize),
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues one entry. It fills in id, timestamp and device info, and
// never blocks or returns an error: a full buffer drops the entry.
func (r *Recorder) Record(e model.AuditLog) {
	if r == nil || r.closed.Load() {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.DeviceInfo = utils.ParseUserAgent(e.UserAgent)

	select {
	case r.ch <- e:
	default:
		r.dropped.Add(1)
		metrics.AuditDropped.Inc()
	}
}

// Dropped reports how many entries were discarded because the buffer was
// full.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Close stops accepting entries and drains the buffer.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.closed.Store(true)
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for {
		select {
		case e := <-r.ch:
			r.write(e)
		case <-r.done:
			for {
				select {
				case e := <-r.ch:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e model.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.Insert(ctx, &e); err != nil {
		// Swallowed: audit failures must never surface to callers.
		log.Printf("audit: insert failed action=%s: %v", e.Action, err)
	}

	if r.amqpURL != "" && e.Status == model.AuditFailure {
		_ = queue.PublishSecurityEvent(ctx, r.amqpURL, queue.SecurityEvent{
			Action:       e.Action,
			UserID:       e.UserID,
			SessionID:    e.SessionID,
			IPAddress:    e.IPAddress,
			UserAgent:    e.UserAgent,
			ErrorMessage: e.ErrorMessage,
			OccurredAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
}
