package cache

import (
	"context"
	"sync"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LocalDocumentLocker serializes work per document inside one process.
// Each document gets a one-slot channel that lives only while someone holds
// or waits for it, so the map does not grow with the number of documents.
type LocalDocumentLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalDocumentLocker creates a LocalDocumentLocker
func NewLocalDocumentLocker() *LocalDocumentLocker {
	return &LocalDocumentLocker{slots: make(map[uuid.UUID]*slot)}
}

// Lock waits for the document's slot or until ctx is done
func (l *LocalDocumentLocker) Lock(ctx context.Context, documentID uuid.UUID) (func(), error) {
	s := l.acquireRef(documentID)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseRef(documentID)
		return nil, shared.ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.releaseRef(documentID)
		})
	}, nil
}

func (l *LocalDocumentLocker) acquireRef(id uuid.UUID) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s
}

func (l *LocalDocumentLocker) releaseRef(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[id]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}

// held returns the number of documents currently locked or waited on
func (l *LocalDocumentLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

var _ billing.DocumentLocker = (*LocalDocumentLocker)(nil)
