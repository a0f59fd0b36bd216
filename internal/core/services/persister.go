package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kamal-hamza/pxo/internal/core/domain"
)

// writeTimeout bounds a single background snapshot write
const writeTimeout = 5 * time.Second

// Persister writes engine snapshots for one page key. With a zero debounce
// every submit is written immediately. With a debounce, submits inside the
// window collapse into a single write of the latest snapshot.
//
// Writes are serialized and stamped with their submit order: a snapshot
// older than one already written is dropped. After Stop returns nothing
// more reaches the store.
//
// Write failures are logged and dropped; the caller's in-memory state stays
// authoritative.
type Persister struct {
	snapshots *SnapshotService
	key       string
	debounce  time.Duration
	logger    *slog.Logger

	mu         sync.Mutex
	seq        uint64
	pending    *domain.Snapshot
	pendingSeq uint64
	timer      *time.Timer
	stopped    bool
	writes     int
	failed     int

	// writeMu is held for the whole store write; written is guarded by it
	writeMu sync.Mutex
	written uint64
}

// NewPersister creates a persister for key
func NewPersister(snapshots *SnapshotService, key string, debounce time.Duration, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		snapshots: snapshots,
		key:       key,
		debounce:  debounce,
		logger:    logger,
	}
}

// Submit hands over a snapshot copy to be written
func (p *Persister) Submit(snap domain.Snapshot) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.seq++
	seq := p.seq

	if p.debounce <= 0 {
		p.mu.Unlock()
		p.write(snap, seq)
		return
	}

	p.pending = &snap
	p.pendingSeq = seq
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.flushPending)
	p.mu.Unlock()
}

// Flush writes any pending snapshot now
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	snap, seq := p.takePending()
	p.mu.Unlock()

	if snap == nil {
		return nil
	}
	return p.writeContext(ctx, *snap, seq)
}

// Stop drops any pending snapshot and waits for a write already in flight.
// Later submits are ignored.
func (p *Persister) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.takePending()
	p.mu.Unlock()

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
}

// Stats returns how many writes succeeded and failed
func (p *Persister) Stats() (writes, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes, p.failed
}

// takePending must be called with mu held
func (p *Persister) takePending() (*domain.Snapshot, uint64) {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	snap, seq := p.pending, p.pendingSeq
	p.pending = nil
	return snap, seq
}

func (p *Persister) flushPending() {
	p.mu.Lock()
	snap, seq := p.pending, p.pendingSeq
	p.pending = nil
	p.timer = nil
	p.mu.Unlock()

	if snap != nil {
		p.write(*snap, seq)
	}
}

func (p *Persister) write(snap domain.Snapshot, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	p.writeContext(ctx, snap, seq)
}

func (p *Persister) writeContext(ctx context.Context, snap domain.Snapshot, seq uint64) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped || seq <= p.written {
		return nil
	}
	p.written = seq

	err := p.snapshots.Save(ctx, p.key, snap)

	p.mu.Lock()
	if err != nil {
		p.failed++
	} else {
		p.writes++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("snapshot write failed", "key", p.key, "error", err)
	}
	return err
}
