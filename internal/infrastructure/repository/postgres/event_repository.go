package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

const eventsTable = "match_events"

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, item matchevent.Event) error {
	query, args, err := qb.InsertModel(eventsTable, eventInsertFromDomain(item), "")
	if err != nil {
		return crerr.Wrap(err, "build insert event query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert event %s", item.ID)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID string) (matchevent.Event, bool, error) {
	query, args, err := qb.Select(selectColumns(eventTableModel{})).
		From(eventsTable).
		Where(qb.Eq("public_id", eventID)).
		ToSQL()
	if err != nil {
		return matchevent.Event{}, false, crerr.Wrap(err, "build get event query")
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchevent.Event{}, false, nil
		}
		return matchevent.Event{}, false, crerr.Wrapf(err, "get event %s", eventID)
	}
	return eventFromRow(row), true, nil
}

// UpdateAtomic locks the row with SELECT ... FOR UPDATE, applies mutate and
// writes the moderation columns back in the same transaction.
func (r *EventRepository) UpdateAtomic(
	ctx context.Context,
	eventID string,
	mutate func(current matchevent.Event) (matchevent.Event, bool, error),
) (out matchevent.Event, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return matchevent.Event{}, crerr.Wrap(err, "begin event update tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := qb.Select(selectColumns(eventTableModel{})).
		From(eventsTable).
		Where(qb.Eq("public_id", eventID)).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		return matchevent.Event{}, crerr.Wrap(err, "build lock event query")
	}

	var row eventTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchevent.Event{}, crerr.Newf("event %s not found", eventID)
		}
		return matchevent.Event{}, crerr.Wrapf(err, "lock event %s", eventID)
	}
	current := eventFromRow(row)

	next, changed, err := mutate(current.Clone())
	if err != nil {
		return matchevent.Event{}, err
	}
	if !changed {
		if err := tx.Commit(); err != nil {
			return matchevent.Event{}, crerr.Wrap(err, "commit event read")
		}
		return current, nil
	}

	update, updateArgs, err := qb.Update(eventsTable).
		Set("is_deleted", next.IsDeleted).
		Set("deleted_by", nullString(next.DeletedBy)).
		Set("deleted_at", next.DeletedAt).
		Where(qb.Eq("public_id", eventID)).
		Suffix("RETURNING " + selectColumns(eventTableModel{})).
		ToSQL()
	if err != nil {
		return matchevent.Event{}, crerr.Wrap(err, "build update event query")
	}

	var updated eventTableModel
	if err := tx.GetContext(ctx, &updated, update, updateArgs...); err != nil {
		return matchevent.Event{}, crerr.Wrapf(err, "update event %s", eventID)
	}
	if err := tx.Commit(); err != nil {
		return matchevent.Event{}, crerr.Wrap(err, "commit event update")
	}

	return eventFromRow(updated), nil
}

func (r *EventRepository) ListRecent(ctx context.Context, q matchevent.ListQuery) ([]matchevent.Event, error) {
	conditions := []qb.Condition{
		qb.Eq("match_public_id", q.MatchID),
		qb.Eq("is_deleted", false),
		qb.Expr("(expires_at IS NULL OR expires_at > ?)", q.Now),
	}
	if q.Cursor != nil {
		conditions = append(conditions, qb.TupleLt([]string{"created_at", "public_id"}, q.Cursor.CreatedAt, q.Cursor.ID))
	}

	query, args, err := qb.Select(selectColumns(eventTableModel{})).
		From(eventsTable).
		Where(conditions...).
		OrderBy("created_at DESC", "public_id DESC").
		Limit(q.Limit).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list events query")
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list events for match %s", q.MatchID)
	}

	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

func (r *EventRepository) CountGoals(ctx context.Context, matchID string) (map[string]int, error) {
	query, args, err := qb.Select("team_public_id", "COUNT(*) AS goals").
		From(eventsTable).
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("event_type", string(matchevent.TypeGoal)),
			qb.Eq("is_deleted", false),
			qb.Expr("team_public_id IS NOT NULL"),
		).
		GroupBy("team_public_id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build count goals query")
	}

	var rows []goalCountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "count goals for match %s", matchID)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.TeamID] = row.Goals
	}
	return out, nil
}
