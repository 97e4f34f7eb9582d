package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finkiranked/internal/common"
	"finkiranked/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// DailyAward is everything the evaluation service decided for one correct
// submission; the repository applies it in a single update.
type DailyAward struct {
	Score     int
	NewPoints int
	NewRank   string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByIDForUpdate locks the user row for the duration of tx so the
	// already-solved check and the award cannot race a second submission.
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error)
	IncrementAttempts(ctx context.Context, id string) (int, error)
	ApplyDailyAward(ctx context.Context, tx *sql.Tx, id string, award DailyAward) error

	ResetDailyState(ctx context.Context) (int64, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, int, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, role, points, rank, solved_problems,
	attempts, daily_points, solved_daily_challenge, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Role,
		&user.Points, &user.Rank, &user.SolvedProblems,
		&user.Attempts, &user.DailyPoints, &user.SolvedDailyChallenge,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, role, rank)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.HashedPassword, user.Role, user.Rank)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	user, err := scanUser(tx.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByIDForUpdate: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	query := `UPDATE users SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 RETURNING attempts`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgUserRepository.IncrementAttempts: %w", err)
	}
	return attempts, nil
}

func (r *pgUserRepository) ApplyDailyAward(ctx context.Context, tx *sql.Tx, id string, award DailyAward) error {
	query := `UPDATE users SET
	            points = points + $1,
	            attempts = attempts + 1,
	            solved_problems = solved_problems + 1,
	            solved_daily_challenge = TRUE,
	            daily_points = $1,
	            rank = $2,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3`
	res, err := tx.ExecContext(ctx, query, award.Score, award.NewRank, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.ApplyDailyAward: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) ResetDailyState(ctx context.Context) (int64, error) {
	query := `UPDATE users SET attempts = 0, daily_points = 0, solved_daily_challenge = FALSE,
	          updated_at = CURRENT_TIMESTAMP
	          WHERE attempts <> 0 OR daily_points <> 0 OR solved_daily_challenge`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.ResetDailyState: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *pgUserRepository) ListLeaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.ListLeaderboard count: %w", err)
	}

	query := `SELECT id, username, points, rank, solved_problems
	          FROM users
	          ORDER BY points DESC, created_at ASC
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.ListLeaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	position := offset
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.Rank, &e.SolvedProblems); err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.ListLeaderboard scan: %w", err)
		}
		position++
		e.Position = position
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.ListLeaderboard rows.Err: %w", err)
	}
	return entries, total, nil
}
