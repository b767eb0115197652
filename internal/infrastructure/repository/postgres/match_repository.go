package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/match"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

const matchesTable = "matches"

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(selectColumns(matchTableModel{})).
		From(matchesTable).
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, crerr.Wrap(err, "build get match query")
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, crerr.Wrapf(err, "get match %s", matchID)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	version := item.Version
	if version < 1 {
		version = 1
	}
	insertModel := matchInsertModel{
		PublicID:   item.ID,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
		Status:     string(item.Status),
		Version:    version,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}

	query, args, err := qb.InsertModel(matchesTable, insertModel, "")
	if err != nil {
		return crerr.Wrap(err, "build insert match query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return crerr.Wrapf(err, "match %s already exists", item.ID)
		}
		return crerr.Wrapf(err, "insert match %s", item.ID)
	}

	return nil
}

// UpdateAtomic writes the mutable columns only when version still equals
// expectedVersion. Zero rows affected means another writer moved it first.
func (r *MatchRepository) UpdateAtomic(ctx context.Context, item match.Match, expectedVersion int64) (match.Match, error) {
	halfDuration := nullInt(nil)
	if item.HalfDurationMinutes > 0 {
		halfDuration = nullInt(&item.HalfDurationMinutes)
	}

	query, args, err := qb.Update(matchesTable).
		Set("home_score", item.HomeScore).
		Set("away_score", item.AwayScore).
		Set("status", string(item.Status)).
		Set("half_duration_minutes", halfDuration).
		Set("kickoff_at", item.KickoffAt).
		Set("halftime_started_at", item.HalftimeStartedAt).
		Set("second_half_started_at", item.SecondHalfStartedAt).
		Set("ended_at", item.EndedAt).
		Set("updated_at", item.UpdatedAt).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", item.ID),
			qb.Eq("version", expectedVersion),
		).
		Suffix("RETURNING " + selectColumns(matchTableModel{})).
		ToSQL()
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "build update match query")
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) {
			return match.Match{}, crerr.Wrapf(err, "update match %s", item.ID)
		}
		_, exists, getErr := r.GetByID(ctx, item.ID)
		if getErr != nil {
			return match.Match{}, getErr
		}
		if !exists {
			return match.Match{}, crerr.Newf("update match %s: not found", item.ID)
		}
		return match.Match{}, crerr.Wrapf(match.ErrVersionConflict, "match=%s expected_version=%d", item.ID, expectedVersion)
	}

	return matchFromRow(row), nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, statuses ...match.Status) ([]match.Match, error) {
	builder := qb.Select(selectColumns(matchTableModel{})).From(matchesTable)
	if len(statuses) > 0 {
		values := make([]any, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		builder = builder.Where(qb.In("status", values))
	}

	query, args, err := builder.OrderBy("public_id").ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list matches by status query")
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list matches by status")
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}
