package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/geocoder89/classhub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the bootstrap admin once. Token issuance itself is
// open, so the seeded admin is the only way the first role promotion happens.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:             uuid.NewString(),
		Email:          cfg.AdminEmail,
		Name:           cfg.AdminName,
		Role:           user.RoleAdmin,
		CredentialHash: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, name, image, role, credential_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
		u.ID, u.Email, u.Name, u.Image, string(u.Role), u.CredentialHash, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
