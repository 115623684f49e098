package billing

import (
	"context"

	"github.com/google/uuid"
)

// DocumentLocker serializes ledger mutations per document. Lock blocks until the
// document's lock is held or ctx is done; the returned func releases it and is
// safe to call more than once. Locks on different documents never contend.
type DocumentLocker interface {
	Lock(ctx context.Context, documentID uuid.UUID) (unlock func(), err error)
}
