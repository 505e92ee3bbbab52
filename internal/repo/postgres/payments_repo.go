package postgres

import (
	"context"
	"time"

	"github.com/geocoder89/classhub/internal/domain/job"
	"github.com/geocoder89/classhub/internal/domain/payment"
	"github.com/geocoder89/classhub/internal/jobs"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/geocoder89/classhub/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentsRepo struct {
	pool       *pgxpool.Pool
	prom       *observability.Prom
	classes    *ClassesRepo
	selections *SelectionsRepo
	jobs       *JobsRepo
}

func NewPaymentsRepo(
	pool *pgxpool.Pool,
	prom *observability.Prom,
	classes *ClassesRepo,
	selections *SelectionsRepo,
	jobs *JobsRepo,
) *PaymentsRepo {
	return &PaymentsRepo{
		pool:       pool,
		prom:       prom,
		classes:    classes,
		selections: selections,
		jobs:       jobs,
	}
}

func (r *PaymentsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Finalize records a confirmed purchase in a single transaction: the payment
// row is inserted, the paid-for cart entries are removed, and one seat is
// consumed per purchased class. Any failed step rolls back all three, so a
// sold-out class never leaves a payment row or a half-emptied cart behind.
// The receipt job rides the same transaction; the idempotency key keeps a
// retried finalization from queuing a second receipt.
func (r *PaymentsRepo) Finalize(ctx context.Context, req payment.CreatePaymentRequest) (payment.Payment, payment.FinalizeResult, error) {
	p := payment.NewFromCreateRequest(req)

	var result payment.FinalizeResult

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return payment.Payment{}, result, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("payments.finalize.insert", func() error {
		_, e := tx.Exec(ctx,
			`INSERT INTO payments (id, email, price, class_ids, selection_ids, paid_at, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.Email, p.Price, p.ClassIDs, p.SelectionIDs, p.PaidAt, p.CreatedAt,
		)
		return e
	})

	if err != nil {
		return payment.Payment{}, result, err
	}

	result.InsertResult.InsertedID = p.ID

	if len(p.SelectionIDs) > 0 {
		deleted, e := r.selections.DeleteManyTx(ctx, tx, p.SelectionIDs)

		if e != nil {
			return payment.Payment{}, payment.FinalizeResult{}, e
		}

		result.DeleteResult.DeletedCount = deleted
	}

	for _, classID := range p.ClassIDs {
		e := r.classes.DecrementSeatTx(ctx, tx, classID)

		if e != nil {
			return payment.Payment{}, payment.FinalizeResult{}, e
		}

		result.PatchResult.ModifiedCount++
	}

	payload, err := jobs.EnrollmentReceiptPayload{
		PaymentID: p.ID,
		Email:     p.Email,
		Price:     p.Price,
		ClassIDs:  p.ClassIDs,
		PaidAt:    p.PaidAt,
	}.JSON()

	if err != nil {
		return payment.Payment{}, payment.FinalizeResult{}, err
	}

	idemKey := "receipt:payment:" + p.ID

	_, err = r.jobs.CreateTx(ctx, tx, job.CreateRequest{
		Type:           jobs.TypeEnrollmentReceipt,
		Payload:        payload,
		IdempotencyKey: &idemKey,
	})

	if err != nil {
		return payment.Payment{}, payment.FinalizeResult{}, err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return payment.Payment{}, payment.FinalizeResult{}, err
	}

	if r.prom != nil {
		r.prom.PaymentIntentsTotal.WithLabelValues("finalized").Inc()
	}

	return p, result, nil
}

// ListByEmailCursor pages the purchase history newest first.
func (r *PaymentsRepo) ListByEmailCursor(
	ctx context.Context,
	email string,
	limit int,
	beforePaidAt time.Time,
	beforeID string,
) (items []payment.Payment, nextCursor *string, hasMore bool, err error) {
	op := "payments.list_by_email_cursor"

	q := `
		SELECT id, email, price, class_ids, selection_ids, paid_at, created_at
		FROM payments
		WHERE email = $1
		  AND (paid_at, id) < ($2, $3)
		ORDER BY paid_at DESC, id DESC
		LIMIT $4
	`
	limitPlusOne := limit + 1

	var rows pgx.Rows

	err = r.observe(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, email, beforePaidAt, beforeID, limitPlusOne)
		return qerr
	})

	if err != nil {
		return nil, nil, false, err
	}

	defer rows.Close()

	out := make([]payment.Payment, 0, limit)

	for rows.Next() {
		var p payment.Payment

		if scanErr := rows.Scan(&p.ID, &p.Email, &p.Price, &p.ClassIDs, &p.SelectionIDs, &p.PaidAt, &p.CreatedAt); scanErr != nil {
			return nil, nil, false, scanErr
		}

		out = append(out, p)
	}

	if rows.Err() != nil {
		return nil, nil, false, rows.Err()
	}

	if len(out) > limit {
		hasMore = true
		out = out[:limit]
		last := out[len(out)-1]

		cur, encErr := utils.EncodePaymentCursor(last.PaidAt, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}

// CountByEmail backs the history endpoint's total field.
func (r *PaymentsRepo) CountByEmail(ctx context.Context, email string) (int, error) {
	var total int

	err := r.observe("payments.count_by_email", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE email = $1`, email).Scan(&total)
	})

	return total, err
}
