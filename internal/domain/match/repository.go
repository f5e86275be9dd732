package match

import (
	"context"
	"time"
)

// Repository persists matches. Upsert creates the match if absent and
// otherwise refreshes only feed-owned fields; team names never change after
// creation.
type Repository interface {
	Upsert(ctx context.Context, item Match) (Match, error)
	ApplyPatch(ctx context.Context, matchID string, patch Patch) (bool, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	List(ctx context.Context, filter ListFilter) ([]Match, error)
	ListActive(ctx context.Context) ([]Match, error)
	ListActiveScheduledBefore(ctx context.Context, cutoff time.Time) ([]Match, error)
	ListScheduledSince(ctx context.Context, since time.Time) ([]Match, error)
	MarkCompleted(ctx context.Context, matchIDs []string) (int, error)
}
