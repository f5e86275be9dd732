package postgres

import (
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
)

type matchMappingTableModel struct {
	OddsMatchID       string    `db:"odds_match_id"`
	SportradarMatchID string    `db:"sportradar_match_id"`
	CreatedAt         time.Time `db:"created_at"`
}

var matchMappingColumns = []string{"odds_match_id", "sportradar_match_id", "created_at"}

func (m matchMappingTableModel) toDomain() matchmapping.Mapping {
	return matchmapping.Mapping{
		OddsMatchID:       m.OddsMatchID,
		SportradarMatchID: m.SportradarMatchID,
		CreatedAt:         m.CreatedAt.UTC(),
	}
}
