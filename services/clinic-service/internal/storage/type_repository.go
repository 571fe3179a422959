package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tammy-rb/siri-cosmetics-server/libs/db"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

type AppointmentTypeRepository struct {
	pool *db.Pool
}

func NewAppointmentTypeRepository(pool *db.Pool) *AppointmentTypeRepository {
	return &AppointmentTypeRepository{pool: pool}
}

const typeColumns = `id::text, name, duration_minutes, price::float8, description, created_at, updated_at`

func (r *AppointmentTypeRepository) CreateAppointmentType(ctx context.Context, t model.AppointmentType) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_types (id, name, duration_minutes, price, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.Name, t.DurationMinutes, t.Price, t.Description, t.CreatedAt, t.UpdatedAt)
	return translate(err, "appointment type", t.Name)
}

func (r *AppointmentTypeRepository) GetAppointmentType(ctx context.Context, id string) (model.AppointmentType, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+typeColumns+` FROM appointment_types WHERE id = $1`, id)
	t, err := scanType(row)
	if err != nil {
		return model.AppointmentType{}, translate(err, "appointment type", id)
	}
	return t, nil
}

func (r *AppointmentTypeRepository) ListAppointmentTypes(ctx context.Context, f model.AppointmentTypeFilter) ([]model.AppointmentType, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.NameContains != "" {
		add("name ILIKE '%%' || $%d || '%%'", f.NameContains)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.MinDuration != nil {
		add("duration_minutes >= $%d", *f.MinDuration)
	}
	if f.MaxDuration != nil {
		add("duration_minutes <= $%d", *f.MaxDuration)
	}

	query := `SELECT ` + typeColumns + ` FROM appointment_types`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY lower(name) ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AppointmentType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *AppointmentTypeRepository) UpdateAppointmentType(ctx context.Context, t model.AppointmentType) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment_types
		SET name = $2,
			duration_minutes = $3,
			price = $4,
			description = $5,
			updated_at = $6
		WHERE id = $1
	`, t.ID, t.Name, t.DurationMinutes, t.Price, t.Description, t.UpdatedAt)
	if err != nil {
		return translate(err, "appointment type", t.Name)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "appointment type", Key: t.ID}
	}
	return nil
}

func (r *AppointmentTypeRepository) DeleteAppointmentType(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment_types WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return &model.ConflictError{Message: "appointment type is in use"}
		}
		return translate(err, "appointment type", id)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "appointment type", Key: id}
	}
	return nil
}

func scanType(row pgx.Row) (model.AppointmentType, error) {
	var t model.AppointmentType
	err := row.Scan(&t.ID, &t.Name, &t.DurationMinutes, &t.Price, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
