package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Deeppati2005/hms/internal/platform/db"
)

const uniqueViolation = "23505"

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const accountCols = `id, role, username, password_hash, name, email, phone,
	security_question, security_answer_hash, specialty, experience, status,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO accounts (
			role, username, password_hash, name, email, phone,
			security_question, security_answer_hash, specialty, experience, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`,
		a.Role, a.Username, a.PasswordHash, a.Name, a.Email, a.Phone,
		a.SecurityQuestion, a.SecurityAnswerHash, a.Specialty, a.Experience, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("account create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, role Role, id int64) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE role = $1 AND id = $2`, role, id))
}

func (r *repoPG) GetByUsername(ctx context.Context, role Role, username string) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE role = $1 AND username = $2`, role, username))
}

func (r *repoPG) ExistsByUsername(ctx context.Context, role Role, username string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE role = $1 AND username = $2)`, role, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return exists, nil
}

func (r *repoPG) First(ctx context.Context, role Role) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE role = $1 ORDER BY id LIMIT 1`, role))
}

func (r *repoPG) List(ctx context.Context, role Role) ([]*Account, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("account list: %w", err)
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, a *Account) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE accounts SET
			password_hash = $3, name = $4, email = $5, phone = $6,
			security_question = $7, security_answer_hash = $8,
			specialty = $9, experience = $10, status = $11,
			updated_at = NOW()
		WHERE role = $1 AND id = $2
		RETURNING updated_at`,
		a.Role, a.ID, a.PasswordHash, a.Name, a.Email, a.Phone,
		a.SecurityQuestion, a.SecurityAnswerHash,
		a.Specialty, a.Experience, a.Status,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("account update: %w", err)
	}
	return nil
}

func (r *repoPG) DeleteByUsername(ctx context.Context, role Role, username string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM accounts WHERE role = $1 AND username = $2`, role, username)
	if err != nil {
		return fmt.Errorf("account delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Role, &a.Username, &a.PasswordHash, &a.Name, &a.Email, &a.Phone,
		&a.SecurityQuestion, &a.SecurityAnswerHash, &a.Specialty, &a.Experience, &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account scan: %w", err)
	}
	return &a, nil
}
