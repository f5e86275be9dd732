package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	qb "github.com/riskibarqy/cricket-odds/internal/platform/querybuilder"
)

const oddsTable = "odds"

type OddsRepository struct {
	db *sqlx.DB
}

func NewOddsRepository(db *sqlx.DB) *OddsRepository {
	return &OddsRepository{db: db}
}

func (r *OddsRepository) ResetInSheet(ctx context.Context) (int64, error) {
	query, args, err := qb.Update(oddsTable).
		Set("is_in_sheet", false).
		Where(qb.Eq("is_in_sheet", true)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build reset in-sheet query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset in-sheet flags: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read reset rows: %w", err)
	}
	return affected, nil
}

func (r *OddsRepository) Upsert(ctx context.Context, item odds.Odds) (odds.Odds, error) {
	query, args, err := qb.InsertModel(oddsTable, newOddsTableModel(item), `ON CONFLICT (match_id)
DO UPDATE SET
    home_odds = EXCLUDED.home_odds,
    away_odds = EXCLUDED.away_odds,
    bookmaker = EXCLUDED.bookmaker,
    scheduled_at = EXCLUDED.scheduled_at,
    status = EXCLUDED.status,
    is_in_sheet = EXCLUDED.is_in_sheet,
    last_updated = EXCLUDED.last_updated
RETURNING `+joinColumns(oddsColumns))
	if err != nil {
		return odds.Odds{}, fmt.Errorf("build upsert odds query: %w", err)
	}

	var row oddsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return odds.Odds{}, fmt.Errorf("upsert odds match_id=%s: %w", item.MatchID, err)
	}
	return row.toDomain(), nil
}

func (r *OddsRepository) MarkCompleted(ctx context.Context, matchIDs []string) (int, error) {
	if len(matchIDs) == 0 {
		return 0, nil
	}

	query, args, err := qb.Update(oddsTable).
		Set("status", odds.StatusCompleted).
		SetExpr("last_updated", "NOW()").
		Where(qb.InStrings("match_id", matchIDs)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build complete odds query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("complete odds count=%d: %w", len(matchIDs), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read completed odds rows: %w", err)
	}
	return int(affected), nil
}

func (r *OddsRepository) GetByMatchID(ctx context.Context, matchID string) (odds.Odds, bool, error) {
	query, args, err := qb.Select(oddsColumns...).
		From(oddsTable).
		Where(qb.Eq("match_id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return odds.Odds{}, false, fmt.Errorf("build select odds by match query: %w", err)
	}

	var row oddsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return odds.Odds{}, false, nil
		}
		return odds.Odds{}, false, fmt.Errorf("select odds by match: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *OddsRepository) List(ctx context.Context, filter odds.ListFilter) ([]odds.Odds, error) {
	builder := qb.Select(oddsColumns...).From(oddsTable)
	if filter.InSheetOnly {
		builder = builder.Where(qb.Eq("is_in_sheet", true))
	}
	query, args, err := builder.OrderBy("match_id ASC").Limit(filter.Limit).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list odds query: %w", err)
	}

	var rows []oddsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list odds: %w", err)
	}

	out := make([]odds.Odds, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
