package matchmapping

import "context"

type Repository interface {
	// Create inserts the mapping unless one already exists for the odds
	// match id. created is false when an earlier mapping was kept.
	Create(ctx context.Context, item Mapping) (created bool, err error)
	GetByOddsMatchID(ctx context.Context, oddsMatchID string) (Mapping, bool, error)
	GetBySportradarID(ctx context.Context, sportradarMatchID string) (Mapping, bool, error)
	ListByOddsMatchIDs(ctx context.Context, oddsMatchIDs []string) (map[string]Mapping, error)
}
