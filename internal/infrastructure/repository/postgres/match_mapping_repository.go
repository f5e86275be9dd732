package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	qb "github.com/riskibarqy/cricket-odds/internal/platform/querybuilder"
)

const matchMappingsTable = "match_mappings"

type MatchMappingRepository struct {
	db *sqlx.DB
}

func NewMatchMappingRepository(db *sqlx.DB) *MatchMappingRepository {
	return &MatchMappingRepository{db: db}
}

// Create inserts the mapping once. An existing mapping for the same odds
// match is left as is and reported with created=false.
func (r *MatchMappingRepository) Create(ctx context.Context, item matchmapping.Mapping) (bool, error) {
	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel(matchMappingsTable, matchMappingTableModel{
		OddsMatchID:       item.OddsMatchID,
		SportradarMatchID: item.SportradarMatchID,
		CreatedAt:         createdAt,
	}, `ON CONFLICT DO NOTHING`)
	if err != nil {
		return false, fmt.Errorf("build insert match mapping query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert match mapping odds_match_id=%s: %w", item.OddsMatchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read inserted mapping rows: %w", err)
	}
	return affected > 0, nil
}

func (r *MatchMappingRepository) GetByOddsMatchID(ctx context.Context, oddsMatchID string) (matchmapping.Mapping, bool, error) {
	return r.getOne(ctx, "odds_match_id", oddsMatchID)
}

func (r *MatchMappingRepository) GetBySportradarID(ctx context.Context, sportradarMatchID string) (matchmapping.Mapping, bool, error) {
	return r.getOne(ctx, "sportradar_match_id", sportradarMatchID)
}

func (r *MatchMappingRepository) ListByOddsMatchIDs(ctx context.Context, oddsMatchIDs []string) (map[string]matchmapping.Mapping, error) {
	out := make(map[string]matchmapping.Mapping, len(oddsMatchIDs))
	if len(oddsMatchIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select(matchMappingColumns...).
		From(matchMappingsTable).
		Where(qb.InStrings("odds_match_id", oddsMatchIDs)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match mappings query: %w", err)
	}

	var rows []matchMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match mappings: %w", err)
	}
	for _, row := range rows {
		out[row.OddsMatchID] = row.toDomain()
	}
	return out, nil
}

func (r *MatchMappingRepository) getOne(ctx context.Context, column, value string) (matchmapping.Mapping, bool, error) {
	query, args, err := qb.Select(matchMappingColumns...).
		From(matchMappingsTable).
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchmapping.Mapping{}, false, fmt.Errorf("build select match mapping query: %w", err)
	}

	var row matchMappingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchmapping.Mapping{}, false, nil
		}
		return matchmapping.Mapping{}, false, fmt.Errorf("select match mapping by %s: %w", column, err)
	}
	return row.toDomain(), true, nil
}
