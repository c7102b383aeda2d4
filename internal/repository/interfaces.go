package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/landminer/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ActionRepo is the local journal of mining actions.
type ActionRepo interface {
	Create(ctx context.Context, e *domain.ActionEntry) error
	GetByID(ctx context.Context, id string) (*domain.ActionEntry, error)
	ListBySession(ctx context.Context, key domain.SessionKey) ([]*domain.ActionEntry, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.ActionEntry, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Snapshot is a stored copy of the last summary the API returned.
type Snapshot struct {
	ID         int64
	Summary    domain.MiningSummary
	CapturedAt time.Time
}

// SnapshotRepo keeps recent summary payloads for offline fallback.
type SnapshotRepo interface {
	Save(ctx context.Context, s *domain.MiningSummary, at time.Time) error
	Latest(ctx context.Context) (*Snapshot, error)
	Prune(ctx context.Context, keep int) error
}
