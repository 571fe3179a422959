package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/libs/db"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

type ScheduleRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewScheduleRepository(pool *db.Pool, outboxRepo *outbox.Repository) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, outbox: outboxRepo}
}

func (r *ScheduleRepository) ListWeekly(ctx context.Context) ([]model.WeeklyScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day_of_week, time_slots, updated_at
		FROM weekly_schedule
		ORDER BY day_of_week ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.WeeklyScheduleEntry
	for rows.Next() {
		var e model.WeeklyScheduleEntry
		var raw []byte
		if err := rows.Scan(&e.DayOfWeek, &raw, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if e.TimeSlots, err = decodeSlots(raw); err != nil {
			return nil, fmt.Errorf("weekly schedule day %d: %w", e.DayOfWeek, err)
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

func (r *ScheduleRepository) UpsertWeekly(ctx context.Context, entry model.WeeklyScheduleEntry, events ...outbox.Event) error {
	slots, err := encodeSlots(entry.TimeSlots)
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO weekly_schedule (day_of_week, time_slots, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (day_of_week) DO UPDATE
		SET time_slots = EXCLUDED.time_slots,
			updated_at = now()
	`, entry.DayOfWeek, slots); err != nil {
		return err
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ScheduleRepository) ListSpecialHours(ctx context.Context, from, to time.Time) ([]model.SpecialHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, day, time_slots, reason, created_at
		FROM special_hours
		WHERE day >= $1::date
			AND ($2::date IS NULL OR day <= $2::date)
		ORDER BY day ASC
	`, dateArg(from), optionalDateArg(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SpecialHours
	for rows.Next() {
		var sh model.SpecialHours
		var raw []byte
		if err := rows.Scan(&sh.ID, &sh.Date, &raw, &sh.Reason, &sh.CreatedAt); err != nil {
			return nil, err
		}
		if sh.TimeSlots, err = decodeSlots(raw); err != nil {
			return nil, fmt.Errorf("special hours %s: %w", timeofday.FormatDate(sh.Date), err)
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ScheduleRepository) CreateSpecialHours(ctx context.Context, sh model.SpecialHours, events ...outbox.Event) error {
	slots, err := encodeSlots(sh.TimeSlots)
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO special_hours (id, day, time_slots, reason)
		VALUES ($1, $2::date, $3, $4)
	`, sh.ID, timeofday.FormatDate(sh.Date), slots, sh.Reason); err != nil {
		return translate(err, "special hours", timeofday.FormatDate(sh.Date))
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ScheduleRepository) DeleteSpecialHours(ctx context.Context, day time.Time, events ...outbox.Event) error {
	return r.deleteByDay(ctx, "special_hours", "special hours", day, events)
}

func (r *ScheduleRepository) ListClosedDays(ctx context.Context, from, to time.Time) ([]model.ClosedDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, day, reason, created_at
		FROM closed_days
		WHERE day >= $1::date
			AND ($2::date IS NULL OR day <= $2::date)
		ORDER BY day ASC
	`, dateArg(from), optionalDateArg(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ClosedDay
	for rows.Next() {
		var cd model.ClosedDay
		if err := rows.Scan(&cd.ID, &cd.Date, &cd.Reason, &cd.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cd)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ScheduleRepository) CreateClosedDay(ctx context.Context, cd model.ClosedDay, events ...outbox.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO closed_days (id, day, reason)
		VALUES ($1, $2::date, $3)
	`, cd.ID, timeofday.FormatDate(cd.Date), cd.Reason); err != nil {
		return translate(err, "closed day", timeofday.FormatDate(cd.Date))
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ScheduleRepository) DeleteClosedDay(ctx context.Context, day time.Time, events ...outbox.Event) error {
	return r.deleteByDay(ctx, "closed_days", "closed day", day, events)
}

// deleteByDay removes the override of one day; table is one of two constants above.
func (r *ScheduleRepository) deleteByDay(ctx context.Context, table, resource string, day time.Time, events []outbox.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	key := timeofday.FormatDate(day)
	tag, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE day = $1::date`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: resource, Key: key}
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func encodeSlots(slots []model.TimeSlot) ([]byte, error) {
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	return json.Marshal(slots)
}

func decodeSlots(raw []byte) ([]model.TimeSlot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var slots []model.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func dateArg(t time.Time) string {
	if t.IsZero() {
		return "-infinity"
	}
	return timeofday.FormatDate(t)
}

func optionalDateArg(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := timeofday.FormatDate(t)
	return &s
}
