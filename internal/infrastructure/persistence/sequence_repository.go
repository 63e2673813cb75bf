package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const (
	allocateMaxAttempts = 3
	allocateBackoffBase = 25 * time.Millisecond
)

// allocateSQL bumps the namespace counter and returns the new value in one
// statement. Upsert plus RETURNING means concurrent callers serialize on the
// row and can never observe the same value.
const allocateSQL = `
INSERT INTO sequences (namespace, value) VALUES (?, 1)
ON CONFLICT (namespace) DO UPDATE SET value = sequences.value + 1
RETURNING value`

// GormSequenceAllocator implements numbering.Allocator on the sequences table
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Next returns the next sequential number in the namespace. Transient
// failures are retried with a short backoff; the statement itself is atomic,
// so a retry after an ambiguous failure can at worst skip a number, never
// hand one out twice.
func (a *GormSequenceAllocator) Next(ctx context.Context, ns numbering.Namespace) (int64, error) {
	if !ns.IsValid() {
		return 0, shared.NewDomainError("INVALID_INPUT", "Sequence namespace must be non-empty without whitespace")
	}

	var lastErr error
	for attempt := 0; attempt < allocateMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(allocateBackoffBase << (attempt - 1)):
			}
		}

		var value int64
		err := a.db.WithContext(ctx).Raw(allocateSQL, ns.String()).Scan(&value).Error
		if err == nil {
			return value, nil
		}
		lastErr = err
	}

	return 0, fmt.Errorf("failed to allocate number in namespace %q: %w", ns, lastErr)
}

// Ensure GormSequenceAllocator implements Allocator
var _ numbering.Allocator = (*GormSequenceAllocator)(nil)
