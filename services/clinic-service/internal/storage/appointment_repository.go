package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tammy-rb/siri-cosmetics-server/libs/db"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
)

type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

const appointmentColumns = `id::text, user_id, appointment_type_id::text, start_time, duration_minutes, status, notes, created_at, updated_at`

func (r *AppointmentRepository) FindAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !f.From.IsZero() {
		add("end_time > $%d", f.From)
	}
	if !f.To.IsZero() {
		add("start_time < $%d", f.To)
	}
	if len(f.Statuses) > 0 {
		add("status = ANY($%d)", f.Statuses)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.TypeID != "" {
		add("appointment_type_id::text = $%d", f.TypeID)
	}
	if f.ExcludeID != "" {
		add("id::text <> $%d", f.ExcludeID)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_time ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, translate(err, "appointment", id)
	}
	return appt, nil
}

// CreateAppointment relies on the appointments_no_overlap exclusion constraint
// as the final guard against double booking.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, a model.Appointment, events ...outbox.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments
			(id, user_id, appointment_type_id, start_time, duration_minutes, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.UserID, a.AppointmentTypeID, a.Start, a.DurationMinutes, a.End(), a.Status, a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return &model.NotFoundError{Resource: "appointment type", Key: a.AppointmentTypeID}
		}
		return translate(err, "appointment", a.ID)
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, a model.Appointment, events ...outbox.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET appointment_type_id = $2,
			start_time = $3,
			duration_minutes = $4,
			end_time = $5,
			status = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $1
	`, a.ID, a.AppointmentTypeID, a.Start, a.DurationMinutes, a.End(), a.Status, a.Notes, a.UpdatedAt)
	if err != nil {
		return translate(err, "appointment", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "appointment", Key: a.ID}
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AppointmentRepository) DeleteAppointment(ctx context.Context, id string, events ...outbox.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "appointment", id)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "appointment", Key: id}
	}
	if err := r.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AppointmentTypeID,
		&a.Start,
		&a.DurationMinutes,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
