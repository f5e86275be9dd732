package odds

import "context"

type Repository interface {
	// ResetInSheet clears the in-sheet flag on every record before a pass.
	ResetInSheet(ctx context.Context) (int64, error)
	Upsert(ctx context.Context, item Odds) (Odds, error)
	// MarkCompleted sets status only; IsInSheet is left as is.
	MarkCompleted(ctx context.Context, matchIDs []string) (int, error)
	GetByMatchID(ctx context.Context, matchID string) (Odds, bool, error)
	List(ctx context.Context, filter ListFilter) ([]Odds, error)
}
