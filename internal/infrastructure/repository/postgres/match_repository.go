package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	qb "github.com/riskibarqy/cricket-odds/internal/platform/querybuilder"
)

const matchesTable = "matches"

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Upsert inserts a new match or refreshes the feed-owned fields of an
// existing one. Team names and provider metadata are never touched on
// conflict.
func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) (match.Match, error) {
	query, args, err := qb.InsertModel(matchesTable, newMatchTableModel(item), `ON CONFLICT (match_id)
DO UPDATE SET
    scheduled_at = EXCLUDED.scheduled_at,
    status = EXCLUDED.status,
    last_updated = EXCLUDED.last_updated
RETURNING `+joinColumns(matchColumns))
	if err != nil {
		return match.Match{}, fmt.Errorf("build upsert match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return match.Match{}, fmt.Errorf("upsert match match_id=%s: %w", item.MatchID, err)
	}
	return row.toDomain(), nil
}

func (r *MatchRepository) ApplyPatch(ctx context.Context, matchID string, patch match.Patch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	builder := qb.Update(matchesTable)
	if patch.ScheduledAt != nil {
		builder = builder.Set("scheduled_at", patch.ScheduledAt.UTC())
	}
	if patch.Status != nil {
		builder = builder.Set("status", string(*patch.Status))
	}
	if patch.Venue != nil {
		builder = builder.Set("venue", *patch.Venue)
	}
	if patch.Competition != nil {
		builder = builder.Set("competition", *patch.Competition)
	}
	if patch.HomeScore != nil {
		builder = builder.Set("home_score", *patch.HomeScore)
	}
	if patch.AwayScore != nil {
		builder = builder.Set("away_score", *patch.AwayScore)
	}
	if patch.Result != nil {
		builder = builder.Set("result", *patch.Result)
	}
	builder = builder.SetExpr("last_updated", "NOW()").Where(qb.Eq("match_id", matchID))

	query, args, err := builder.ToSQL()
	if err != nil {
		return false, fmt.Errorf("build patch match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("patch match match_id=%s: %w", matchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read patched rows match_id=%s: %w", matchID, err)
	}
	return affected > 0, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).
		From(matchesTable).
		Where(qb.Eq("match_id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchRepository) List(ctx context.Context, filter match.ListFilter) ([]match.Match, error) {
	conditions := make([]qb.Condition, 0, 1)
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("status", string(filter.Status)))
	}
	return r.selectMatches(ctx, "list matches", filter.Limit, conditions...)
}

func (r *MatchRepository) ListActive(ctx context.Context) ([]match.Match, error) {
	return r.selectMatches(ctx, "list active matches", 0,
		qb.NotEq("status", string(match.StatusCompleted)),
	)
}

func (r *MatchRepository) ListActiveScheduledBefore(ctx context.Context, cutoff time.Time) ([]match.Match, error) {
	return r.selectMatches(ctx, "list stale matches", 0,
		qb.NotEq("status", string(match.StatusCompleted)),
		qb.Lt("scheduled_at", cutoff.UTC()),
	)
}

func (r *MatchRepository) ListScheduledSince(ctx context.Context, since time.Time) ([]match.Match, error) {
	return r.selectMatches(ctx, "list matches scheduled since", 0,
		qb.Or(qb.Gte("scheduled_at", since.UTC()), qb.IsNull("scheduled_at")),
	)
}

func (r *MatchRepository) MarkCompleted(ctx context.Context, matchIDs []string) (int, error) {
	if len(matchIDs) == 0 {
		return 0, nil
	}

	query, args, err := qb.Update(matchesTable).
		Set("status", string(match.StatusCompleted)).
		SetExpr("last_updated", "NOW()").
		Where(
			qb.InStrings("match_id", matchIDs),
			qb.NotEq("status", string(match.StatusCompleted)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build complete matches query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("complete matches count=%d: %w", len(matchIDs), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read completed rows: %w", err)
	}
	return int(affected), nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, op string, limit int, conditions ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).
		From(matchesTable).
		Where(conditions...).
		OrderBy("scheduled_at ASC NULLS LAST", "match_id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
