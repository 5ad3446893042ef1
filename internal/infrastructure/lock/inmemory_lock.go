package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
)

// InMemoryRepresentativeLocker implements ledger.RepresentativeLocker with a
// per-representative mutex map. Suitable for single-instance deployments and
// testing.
type InMemoryRepresentativeLocker struct {
	mu          sync.Mutex
	held        map[uuid.UUID]bool
	waitTimeout time.Duration
}

// NewInMemoryRepresentativeLocker creates a new in-memory locker
func NewInMemoryRepresentativeLocker(waitTimeout time.Duration) *InMemoryRepresentativeLocker {
	return &InMemoryRepresentativeLocker{
		held:        make(map[uuid.UUID]bool),
		waitTimeout: waitTimeout,
	}
}

// Acquire obtains the per-representative lock, polling until waitTimeout.
// Returns shared.ErrAllocationInProgress when the lock stays held.
func (l *InMemoryRepresentativeLocker) Acquire(ctx context.Context, representativeID uuid.UUID) (func(), error) {
	deadline := time.Now().Add(l.waitTimeout)

	for {
		if l.tryAcquire(representativeID) {
			var once sync.Once
			return func() {
				once.Do(func() {
					l.release(representativeID)
				})
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, shared.ErrAllocationInProgress
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (l *InMemoryRepresentativeLocker) tryAcquire(representativeID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[representativeID] {
		return false
	}
	l.held[representativeID] = true
	return true
}

func (l *InMemoryRepresentativeLocker) release(representativeID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, representativeID)
}

// Ensure InMemoryRepresentativeLocker implements RepresentativeLocker
var _ ledger.RepresentativeLocker = (*InMemoryRepresentativeLocker)(nil)
