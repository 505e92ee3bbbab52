package postgres

import (
	"context"

	"github.com/geocoder89/classhub/internal/domain/selection"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SelectionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSelectionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SelectionsRepo {
	return &SelectionsRepo{pool: pool, prom: prom}
}

func (r *SelectionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SelectionsRepo) Insert(ctx context.Context, s selection.Selection) error {
	return r.observe("selections.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO selections (id, email, class_id, class_name, image, price, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.Email, s.ClassID, s.ClassName, s.Image, s.Price, s.CreatedAt,
		)
		return err
	})
}

func (r *SelectionsRepo) ListByEmail(ctx context.Context, email string) (selections []selection.Selection, err error) {
	var rows pgx.Rows

	err = r.observe("selections.list_by_email", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, email, class_id, class_name, image, price, created_at
			 FROM selections
			 WHERE email = $1
			 ORDER BY created_at ASC, id ASC`,
			email,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	selections = make([]selection.Selection, 0)

	for rows.Next() {
		var s selection.Selection

		e := rows.Scan(&s.ID, &s.Email, &s.ClassID, &s.ClassName, &s.Image, &s.Price, &s.CreatedAt)

		if e != nil {
			err = e
			return
		}

		selections = append(selections, s)
	}

	err = rows.Err()

	return
}

// Delete removes a single cart entry. Deleting an id that is already gone
// still reports zero rows, the handler passes that count through unchanged.
func (r *SelectionsRepo) Delete(ctx context.Context, id string) (int64, error) {
	var deleted int64

	err := r.observe("selections.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM selections WHERE id = $1`, id)

		if err != nil {
			return err
		}

		deleted = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// DeleteManyTx clears the paid-for entries inside the finalization
// transaction.
func (r *SelectionsRepo) DeleteManyTx(ctx context.Context, tx pgx.Tx, ids []string) (int64, error) {
	var deleted int64

	err := r.observe("selections.delete_many_tx", func() error {
		tag, err := tx.Exec(ctx, `DELETE FROM selections WHERE id = ANY($1)`, ids)

		if err != nil {
			return err
		}

		deleted = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}
