package postgres

import (
	"context"

	"github.com/geocoder89/classhub/internal/domain/instructor"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const PopularStudentsThreshold = 5000

type InstructorsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewInstructorsRepo(pool *pgxpool.Pool, prom *observability.Prom) *InstructorsRepo {
	return &InstructorsRepo{pool: pool, prom: prom}
}

func (r *InstructorsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *InstructorsRepo) List(ctx context.Context) (instructors []instructor.Instructor, err error) {
	var rows pgx.Rows

	err = r.observe("instructors.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, email, image, students
			 FROM instructors
			 ORDER BY name ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	instructors = make([]instructor.Instructor, 0)

	for rows.Next() {
		var ins instructor.Instructor

		e := rows.Scan(&ins.ID, &ins.Name, &ins.Email, &ins.Image, &ins.Students)

		if e != nil {
			err = e
			return
		}

		instructors = append(instructors, ins)
	}

	err = rows.Err()

	return
}

// ListPopular projects instructors with a large student following.
func (r *InstructorsRepo) ListPopular(ctx context.Context) (summaries []instructor.Summary, err error) {
	var rows pgx.Rows

	err = r.observe("instructors.list_popular", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, image, students
			 FROM instructors
			 WHERE students > $1
			 ORDER BY students DESC, id ASC`,
			PopularStudentsThreshold,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	summaries = make([]instructor.Summary, 0)

	for rows.Next() {
		var s instructor.Summary

		e := rows.Scan(&s.ID, &s.Name, &s.Image, &s.Students)

		if e != nil {
			err = e
			return
		}

		summaries = append(summaries, s)
	}

	err = rows.Err()

	return
}

// Upsert keeps the directory row for an instructor in sync when an admin
// promotes a user.
func (r *InstructorsRepo) Upsert(ctx context.Context, ins instructor.Instructor) error {
	return r.observe("instructors.upsert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO instructors (id, name, email, image, students)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (email) DO UPDATE
			 SET name = EXCLUDED.name,
			     image = EXCLUDED.image`,
			ins.ID, ins.Name, ins.Email, ins.Image, ins.Students,
		)
		return err
	})
}
