package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var role string

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, name, image, role, credential_hash, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Name,
			&u.Image,
			&role,
			&u.CredentialHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	u.Role = user.Role(role)

	return u, nil
}

// CreateIfAbsent is the first-sign-in upsert: an existing email is not an
// error for the caller, it just reports ErrAlreadyExists so the handler can
// answer with the "already exists" message instead of a duplicate row.
func (r *UsersRepo) CreateIfAbsent(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Image:     req.Image,
		Role:      user.RoleNone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var tagRows int64

	err := r.observe("users.create_if_absent", func() error {
		tag, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, name, image, role, credential_hash, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,'',$6,$7)
			 ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Email, u.Name, u.Image, string(u.Role), u.CreatedAt, u.UpdatedAt,
		)

		if err != nil {
			return err
		}

		tagRows = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return user.User{}, err
	}

	if tagRows == 0 {
		return user.User{}, user.ErrAlreadyExists
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) (users []user.User, err error) {
	var rows pgx.Rows

	err = r.observe("users.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, email, name, image, role, created_at, updated_at
			 FROM users
			 ORDER BY created_at ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	users = make([]user.User, 0)

	for rows.Next() {
		var u user.User
		var role string

		e := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &role, &u.CreatedAt, &u.UpdatedAt)

		if e != nil {
			err = e
			return
		}

		u.Role = user.Role(role)
		users = append(users, u)
	}

	err = rows.Err()

	return
}

// UpdateRole returns the updated row so the caller can sync dependent state,
// the instructor directory in particular.
func (r *UsersRepo) UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	var u user.User

	err := r.observe("users.update_role", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
			 SET role = $2,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, email, name, image`,
			id, string(role),
		).Scan(&u.ID, &u.Email, &u.Name, &u.Image)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	u.Role = role

	return u, nil
}

// HasRole answers the /users/admin/:email and /users/instructor/:email
// checks. An unknown email is simply "no".
func (r *UsersRepo) HasRole(ctx context.Context, email string, role user.Role) (bool, error) {
	u, err := r.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return u.Role == role, nil
}
