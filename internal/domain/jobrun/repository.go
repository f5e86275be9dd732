package jobrun

import "context"

type Repository interface {
	UpsertRun(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, routine string, limit int) ([]Run, error)
}
