package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/classhub/internal/domain/class"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// discovery thresholds carried over from the original catalog
const (
	PopularEnrolledThreshold = 2000
)

const classColumns = `id, name, instructor_name, instructor_email, image, price,
	available_seats, enrolled, status, feedback, created_at, updated_at`

type ClassesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewClassesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ClassesRepo {
	return &ClassesRepo{pool: pool, prom: prom}
}

func (r *ClassesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanClass(row pgx.Row) (class.Class, error) {
	var c class.Class
	var status string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.InstructorName,
		&c.InstructorEmail,
		&c.Image,
		&c.Price,
		&c.AvailableSeats,
		&c.Enrolled,
		&status,
		&c.Feedback,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		return class.Class{}, err
	}

	c.Status = class.Status(status)

	return c, nil
}

func (r *ClassesRepo) collect(rows pgx.Rows) ([]class.Class, error) {
	defer rows.Close()

	out := make([]class.Class, 0)

	for rows.Next() {
		c, err := scanClass(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *ClassesRepo) Create(ctx context.Context, req class.CreateClassRequest) (class.Class, error) {
	c := class.NewFromCreateRequest(req)

	err := r.observe("classes.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO classes (id, name, instructor_name, instructor_email, image, price,
				available_seats, enrolled, status, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			c.ID, c.Name, c.InstructorName, c.InstructorEmail, c.Image, c.Price,
			c.AvailableSeats, c.Enrolled, string(c.Status), c.CreatedAt, c.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return class.Class{}, err
	}

	return c, nil
}

// Upsert is the full replace-or-insert keyed by id that backs PUT /myClasses/:id.
func (r *ClassesRepo) Upsert(ctx context.Context, id string, req class.UpsertClassRequest) (class.Class, error) {
	var c class.Class

	err := r.observe("classes.upsert", func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO classes (id, name, instructor_name, instructor_email, image, price,
				available_seats, enrolled, status, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,0,'pending',NOW(),NOW())
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name,
			     instructor_name = EXCLUDED.instructor_name,
			     instructor_email = EXCLUDED.instructor_email,
			     image = EXCLUDED.image,
			     price = EXCLUDED.price,
			     available_seats = EXCLUDED.available_seats,
			     updated_at = NOW()
			 RETURNING `+classColumns,
			id, req.Name, req.InstructorName, req.InstructorEmail, req.Image, req.Price,
			req.AvailableSeats,
		)

		var err error
		c, err = scanClass(row)
		return err
	})

	if err != nil {
		return class.Class{}, err
	}

	return c, nil
}

func (r *ClassesRepo) GetByID(ctx context.Context, id string) (class.Class, error) {
	var c class.Class

	err := r.observe("classes.get_by_id", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+classColumns+` FROM classes WHERE id = $1`, id)

		var err error
		c, err = scanClass(row)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, err
	}

	return c, nil
}

// ListApproved is the public catalog view.
func (r *ClassesRepo) ListApproved(ctx context.Context) (classes []class.Class, err error) {
	var rows pgx.Rows

	err = r.observe("classes.list_approved", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+classColumns+`
			 FROM classes
			 WHERE status = 'approved'
			 ORDER BY created_at ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	return r.collect(rows)
}

// ListManaged is the admin management view. Unreviewed submissions sort
// first so the review queue is on top; decided ones come last.
func (r *ClassesRepo) ListManaged(ctx context.Context, filter class.ListFilter) (classes []class.Class, err error) {
	baseQuery := `SELECT ` + classColumns + ` FROM classes`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, string(*filter.Status))
		argsPosition++
	}

	if filter.InstructorEmail != nil {
		conds = append(conds, fmt.Sprintf("instructor_email = $%d", argsPosition))
		args = append(args, *filter.InstructorEmail)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += ` ORDER BY (status <> 'pending') ASC, created_at DESC, id ASC`

	var rows pgx.Rows

	err = r.observe("classes.list_managed", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return
	}

	return r.collect(rows)
}

// ListByInstructor is the instructor's own dashboard view.
func (r *ClassesRepo) ListByInstructor(ctx context.Context, email string) (classes []class.Class, err error) {
	var rows pgx.Rows

	err = r.observe("classes.list_by_instructor", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+classColumns+`
			 FROM classes
			 WHERE instructor_email = $1
			 ORDER BY created_at DESC, id ASC`,
			email,
		)
		return err
	})

	if err != nil {
		return
	}

	return r.collect(rows)
}

// ListPopular projects classes with heavy enrollment and seats still open.
func (r *ClassesRepo) ListPopular(ctx context.Context) (summaries []class.Summary, err error) {
	var rows pgx.Rows

	err = r.observe("classes.list_popular", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, image, instructor_name, enrolled
			 FROM classes
			 WHERE enrolled > $1 AND available_seats > 0
			 ORDER BY enrolled DESC, id ASC`,
			PopularEnrolledThreshold,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	summaries = make([]class.Summary, 0)

	for rows.Next() {
		var s class.Summary

		e := rows.Scan(&s.ID, &s.Name, &s.Image, &s.Instructor, &s.Enrolled)

		if e != nil {
			err = e
			return
		}

		summaries = append(summaries, s)
	}

	err = rows.Err()

	return
}

func (r *ClassesRepo) SetStatus(ctx context.Context, id string, status class.Status) error {
	var rowsAffected int64

	err := r.observe("classes.set_status", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE classes
			 SET status = $2,
			     updated_at = NOW()
			 WHERE id = $1`,
			id, string(status),
		)

		if err != nil {
			return err
		}

		rowsAffected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return class.ErrNotFound
	}

	return nil
}

func (r *ClassesRepo) SetFeedback(ctx context.Context, id string, message string) error {
	var rowsAffected int64

	err := r.observe("classes.set_feedback", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE classes
			 SET feedback = $2,
			     updated_at = NOW()
			 WHERE id = $1`,
			id, message,
		)

		if err != nil {
			return err
		}

		rowsAffected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return class.ErrNotFound
	}

	return nil
}

// DecrementSeatTx consumes one seat inside the finalization transaction.
// The WHERE guard makes the decrement conditional: two finalizations racing
// on the last seat cannot both pass, and available_seats never goes negative.
func (r *ClassesRepo) DecrementSeatTx(ctx context.Context, tx pgx.Tx, id string) error {
	var rowsAffected int64

	err := r.observe("classes.decrement_seat_tx", func() error {
		tag, err := tx.Exec(ctx,
			`UPDATE classes
			 SET available_seats = available_seats - 1,
			     enrolled = enrolled + 1,
			     updated_at = NOW()
			 WHERE id = $1 AND available_seats > 0`,
			id,
		)

		if err != nil {
			return err
		}

		rowsAffected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// distinguish a missing class from a sold-out one
		var dummy string

		err = r.observe("classes.decrement_seat_tx.exists_check", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM classes WHERE id = $1`, id).Scan(&dummy)
		})

		if errors.Is(err, pgx.ErrNoRows) {
			return class.ErrNotFound
		}

		if err != nil {
			return err
		}

		return class.ErrNoSeatsAvailable
	}

	return nil
}
