package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/pkg/config"
	"deskbook/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, desk_id, user_id, date_from, date_to, created_at`

type postgresBookingRepository struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func NewPostgresBookingRepository(cfg *config.Config) BookingRepository {
	return &postgresBookingRepository{cfg: cfg, pool: cfg.Client.Postgres}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b        model.Booking
		from, to time.Time
	)
	if err := row.Scan(&b.ID, &b.DeskID, &b.UserID, &from, &to, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Dates = model.DateRange{From: model.DateOf(from), To: model.DateOf(to)}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return b, nil
}

func (r *postgresBookingRepository) FindByDesk(ctx context.Context, deskID int64) ([]*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE desk_id = $1 ORDER BY date_from, id`, deskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *postgresBookingRepository) FindByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY date_from, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return collectBookings(rows)
}

// InsertIfAdmissible locks the desk row for the length of the transaction,
// so concurrent creates for the same desk run one after another.
func (r *postgresBookingRepository) InsertIfAdmissible(ctx context.Context, b *model.Booking, check AdmissionCheck) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM desks WHERE id = $1 FOR UPDATE`, b.DeskID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookingserrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock desk: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE desk_id = $1 ORDER BY date_from, id`, b.DeskID)
	if err != nil {
		return fmt.Errorf("failed to read desk bookings: %w", err)
	}
	existing, err := collectBookings(rows)
	if err != nil {
		return err
	}
	if err := check(existing); err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (desk_id, user_id, date_from, date_to) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		b.DeskID, b.UserID, b.Dates.From, b.Dates.To,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		b.ID = 0
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) Delete(ctx context.Context, id int64) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, `DELETE FROM bookings WHERE id = $1 RETURNING `+bookingColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	return b, nil
}

func (r *postgresBookingRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type postgresDeskRepository struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func NewPostgresDeskRepository(cfg *config.Config) DeskRepository {
	return &postgresDeskRepository{cfg: cfg, pool: cfg.Client.Postgres}
}

func (r *postgresDeskRepository) FindByID(ctx context.Context, id int64) (*model.Desk, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var d model.Desk
	err := r.pool.QueryRow(ctx, `SELECT id, building_id, floor, label FROM desks WHERE id = $1`, id).
		Scan(&d.ID, &d.BuildingID, &d.Floor, &d.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find desk: %w", err)
	}
	return &d, nil
}

func (r *postgresDeskRepository) List(ctx context.Context, filter model.DeskFilter) ([]*model.Desk, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query, args := deskListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list desks: %w", err)
	}
	defer rows.Close()

	var desks []*model.Desk
	for rows.Next() {
		var d model.Desk
		if err := rows.Scan(&d.ID, &d.BuildingID, &d.Floor, &d.Label); err != nil {
			return nil, fmt.Errorf("failed to scan desk: %w", err)
		}
		desks = append(desks, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read desks: %w", err)
	}
	return desks, nil
}

func deskListQuery(f model.DeskFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.BuildingID != 0 {
		args = append(args, f.BuildingID)
		where = append(where, "building_id = $"+strconv.Itoa(len(args)))
	}
	if f.Floor != nil {
		args = append(args, *f.Floor)
		where = append(where, "floor = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, building_id, floor, label FROM desks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return query + ` ORDER BY building_id, floor, id`, args
}
