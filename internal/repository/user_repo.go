package repository

import (
	"context"
	"errors"
	"fmt"

	"viralclip/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// UpsertUser records a sign-in and provisions a lite tier for new users
	// in the same transaction.
	UpsertUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `user_id, name, email, login_method, role, stripe_customer_id, created_at, updated_at, last_signed_in`

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(&u.UserID, &u.Name, &u.Email, &u.LoginMethod, &u.Role, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn)
}

func (r *userRepo) UpsertUser(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction for user %s: %w", u.UserID, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// An admin promotion sticks; a plain sign-in never demotes.
	q := `
        INSERT INTO users (user_id, name, email, login_method, role, last_signed_in)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (user_id) DO UPDATE
            SET name = COALESCE(EXCLUDED.name, users.name),
                email = COALESCE(EXCLUDED.email, users.email),
                login_method = COALESCE(EXCLUDED.login_method, users.login_method),
                role = CASE WHEN EXCLUDED.role = 'admin' THEN 'admin' ELSE users.role END,
                last_signed_in = NOW(),
                updated_at = NOW()
        RETURNING ` + userColumns
	row := tx.QueryRow(ctx, q, u.UserID, u.Name, u.Email, u.LoginMethod, u.Role)
	if err := scanUser(row, u); err != nil {
		return fmt.Errorf("upserting user %s: %w", u.UserID, err)
	}

	const tierQ = `INSERT INTO user_tiers (user_id, tier) VALUES ($1, 'lite') ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, tierQ, u.UserID); err != nil {
		return fmt.Errorf("provisioning tier for user %s: %w", u.UserID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing sign-in for user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	if err := scanUser(r.pool.QueryRow(ctx, q, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return &u, nil
}

func (r *userRepo) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	var u model.User
	q := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	if err := scanUser(r.pool.QueryRow(ctx, q, customerID), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user by stripe customer %s: %w", customerID, err)
	}
	return &u, nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const q = `UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, q, userID, customerID)
	if err != nil {
		return fmt.Errorf("update stripe customer for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stripe customer for user %s: %w", userID, pgx.ErrNoRows)
	}
	return nil
}
