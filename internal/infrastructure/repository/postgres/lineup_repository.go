package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/lineup"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

const lineupsTable = "match_lineups"

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) Get(ctx context.Context, matchID, teamID string) (lineup.Lineup, bool, error) {
	query, args, err := qb.Select(selectColumns(lineupTableModel{})).
		From(lineupsTable).
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("team_public_id", teamID),
		).
		ToSQL()
	if err != nil {
		return lineup.Lineup{}, false, crerr.Wrap(err, "build get lineup query")
	}

	var row lineupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Lineup{}, false, nil
		}
		return lineup.Lineup{}, false, crerr.Wrapf(err, "get lineup %s/%s", matchID, teamID)
	}

	return lineupFromRow(row), true, nil
}

// Upsert replaces every slot of the (match, team) lineup in one statement.
// The original public_id survives replacement.
func (r *LineupRepository) Upsert(ctx context.Context, item lineup.Lineup) error {
	query, args, err := qb.InsertModel(lineupsTable, lineupInsertFromDomain(item), `ON CONFLICT (match_public_id, team_public_id)
DO UPDATE SET
    formation_name = EXCLUDED.formation_name,
    position_codes = EXCLUDED.position_codes,
    player_refs = EXCLUDED.player_refs,
    display_names = EXCLUDED.display_names,
    updated_by = EXCLUDED.updated_by,
    updated_at = EXCLUDED.updated_at,
    version = EXCLUDED.version`)
	if err != nil {
		return crerr.Wrap(err, "build lineup upsert query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert lineup %s/%s", item.MatchID, item.TeamID)
	}
	return nil
}
