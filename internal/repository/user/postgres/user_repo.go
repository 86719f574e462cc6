package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQueryThreshold = 100 * time.Millisecond

// pgUniqueViolation is the PostgreSQL error code for unique constraint hits.
const pgUniqueViolation = "23505"

// Storage persists users in PostgreSQL. Email uniqueness is backed by the
// unique index, duplicate hits map to the repository sentinel.
type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users (id, name, email, password_hash, created_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.Name,
		userToCreate.Email,
		userToCreate.PasswordHash,
		time.Now(),
	).Scan(&userToCreate.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicateEmail
		}
		logger.Error("Repository: failed to insert user", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting user: %w", err)
	}

	s.warnIfSlow("Create", start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	start := time.Now()

	query := `SELECT id, name, email, password_hash, created_at, updated_at
				FROM users
				WHERE id = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get user", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("getting user: %w", err)
	}

	s.warnIfSlow("GetByID", start)
	return u, nil
}

func (s *Storage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	start := time.Now()

	query := `SELECT id, name, email, password_hash, created_at, updated_at
				FROM users
				WHERE email = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get user by email", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	s.warnIfSlow("GetByEmail", start)
	return u, nil
}

func (s *Storage) Update(ctx context.Context, userToUpdate *user.User) error {
	start := time.Now()

	query := `UPDATE users
			SET name = $1,
				email = $2,
				password_hash = $3,
				updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		userToUpdate.Name,
		userToUpdate.Email,
		userToUpdate.PasswordHash,
		userToUpdate.ID,
	).Scan(&userToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repo.ErrDuplicateEmail
		}
		logger.Error("Repository: failed to update user", err)
		return fmt.Errorf("updating user: %w", err)
	}

	s.warnIfSlow("Update", start)
	return nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete user", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	s.warnIfSlow("Delete", start)
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *Storage) warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQueryThreshold {
		logger.Warn("Repository: slow query",
			zap.String("operation", op),
			zap.Duration("ms", elapsed))
	}
}
