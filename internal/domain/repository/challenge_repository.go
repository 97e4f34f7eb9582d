package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finkiranked/internal/common"
	"finkiranked/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ChallengeRepository interface {
	CreateChallenge(ctx context.Context, tx *sql.Tx, ch *model.Challenge) error
	AddTestCases(ctx context.Context, tx *sql.Tx, challengeID string, testCases []model.TestCase) error

	FindChallengeByID(ctx context.Context, id string) (*model.Challenge, error)
	FindChallengeBySlug(ctx context.Context, slug string) (*model.Challenge, error)
	// FindChallengeByDay returns the unexpired challenge scheduled for the
	// given challenge day.
	FindChallengeByDay(ctx context.Context, day time.Time) (*model.Challenge, error)
	// ListChallenges pages challenges newest first. When includeUpcoming is
	// false only challenges whose solve date is on or before the given
	// challenge day are returned.
	ListChallenges(ctx context.Context, day time.Time, limit, offset int, includeUpcoming bool) ([]model.Challenge, int, error)

	GetTestCase(ctx context.Context, id string) (*model.TestCase, error)
	GetTestCasesByChallengeID(ctx context.Context, challengeID string) ([]model.TestCase, error)

	IncrementAttempted(ctx context.Context, id string) error
	IncrementAttemptedAndSolved(ctx context.Context, tx *sql.Tx, id string) error
	ExpireBefore(ctx context.Context, day time.Time) (int64, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

const challengeColumns = `c.id, c.title, c.slug, c.description, c.difficulty, c.output_type,
	c.solve_date, c.expired, c.attempted_by, c.solved_by, c.created_by, c.created_at, c.updated_at`

func (r *pgChallengeRepository) CreateChallenge(ctx context.Context, tx *sql.Tx, ch *model.Challenge) error {
	query := `INSERT INTO challenges (id, title, slug, description, difficulty, output_type, solve_date, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query, ch.ID, ch.Title, ch.Slug, ch.Description,
		ch.Difficulty, ch.OutputType, ch.SolveDate, ch.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // slug or solve_date already taken
			return fmt.Errorf("challenge with this slug or solve date already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.CreateChallenge: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) AddTestCases(ctx context.Context, tx *sql.Tx, challengeID string, testCases []model.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO test_cases (id, challenge_id, input, expected_output, sort_order)
	                                     VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.AddTestCases prepare: %w", err)
	}
	defer stmt.Close()

	for i, tc := range testCases {
		tc.SortOrder = i + 1
		if _, err := stmt.ExecContext(ctx, tc.ID, challengeID, tc.Input, tc.ExpectedOutput, tc.SortOrder); err != nil {
			return fmt.Errorf("pgChallengeRepository.AddTestCases exec for test case %s: %w", tc.ID, err)
		}
	}
	return nil
}

func (r *pgChallengeRepository) scanChallenge(row *sql.Row) (*model.Challenge, error) {
	ch := &model.Challenge{}
	err := row.Scan(
		&ch.ID, &ch.Title, &ch.Slug, &ch.Description, &ch.Difficulty, &ch.OutputType,
		&ch.SolveDate, &ch.Expired, &ch.AttemptedBy, &ch.SolvedBy, &ch.CreatedByID,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return ch, nil
}

func (r *pgChallengeRepository) FindChallengeByID(ctx context.Context, id string) (*model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges c WHERE c.id = $1`
	ch, err := r.scanChallenge(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgChallengeRepository.FindChallengeByID: %w", err)
	}
	return ch, err
}

func (r *pgChallengeRepository) FindChallengeBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges c WHERE c.slug = $1`
	ch, err := r.scanChallenge(r.db.QueryRowContext(ctx, query, slug))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgChallengeRepository.FindChallengeBySlug: %w", err)
	}
	return ch, err
}

func (r *pgChallengeRepository) FindChallengeByDay(ctx context.Context, day time.Time) (*model.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges c
	          WHERE c.solve_date = $1 AND c.expired = FALSE`
	ch, err := r.scanChallenge(r.db.QueryRowContext(ctx, query, day.Format("2006-01-02")))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgChallengeRepository.FindChallengeByDay: %w", err)
	}
	return ch, err
}

func (r *pgChallengeRepository) ListChallenges(ctx context.Context, day time.Time, limit, offset int, includeUpcoming bool) ([]model.Challenge, int, error) {
	// The challenge day starts at 07:00 local, not at the database server's
	// midnight, so the boundary is passed in rather than using CURRENT_DATE.
	where := ""
	args := []interface{}{}
	if !includeUpcoming {
		where = ` WHERE c.solve_date <= $1`
		args = append(args, day.Format("2006-01-02"))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.ListChallenges count: %w", err)
	}

	query := `SELECT ` + challengeColumns + `, u.username
	          FROM challenges c LEFT JOIN users u ON c.created_by = u.id` + where +
		fmt.Sprintf(` ORDER BY c.solve_date DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.ListChallenges query: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var ch model.Challenge
		if err := rows.Scan(
			&ch.ID, &ch.Title, &ch.Slug, &ch.Description, &ch.Difficulty, &ch.OutputType,
			&ch.SolveDate, &ch.Expired, &ch.AttemptedBy, &ch.SolvedBy, &ch.CreatedByID,
			&ch.CreatedAt, &ch.UpdatedAt, &ch.CreatedByUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("pgChallengeRepository.ListChallenges scan: %w", err)
		}
		challenges = append(challenges, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.ListChallenges rows.Err: %w", err)
	}
	return challenges, total, nil
}

func (r *pgChallengeRepository) GetTestCase(ctx context.Context, id string) (*model.TestCase, error) {
	query := `SELECT id, challenge_id, input, expected_output, sort_order, created_at
	          FROM test_cases WHERE id = $1`
	tc := &model.TestCase{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tc.ID, &tc.ChallengeID, &tc.Input, &tc.ExpectedOutput, &tc.SortOrder, &tc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.GetTestCase: %w", err)
	}
	return tc, nil
}

func (r *pgChallengeRepository) GetTestCasesByChallengeID(ctx context.Context, challengeID string) ([]model.TestCase, error) {
	query := `SELECT id, challenge_id, input, expected_output, sort_order, created_at
	          FROM test_cases WHERE challenge_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.GetTestCasesByChallengeID query: %w", err)
	}
	defer rows.Close()

	var testCases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ChallengeID, &tc.Input, &tc.ExpectedOutput, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.GetTestCasesByChallengeID scan: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.GetTestCasesByChallengeID rows.Err: %w", err)
	}
	return testCases, nil
}

func (r *pgChallengeRepository) IncrementAttempted(ctx context.Context, id string) error {
	query := `UPDATE challenges SET attempted_by = attempted_by + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgChallengeRepository.IncrementAttempted: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) IncrementAttemptedAndSolved(ctx context.Context, tx *sql.Tx, id string) error {
	query := `UPDATE challenges SET attempted_by = attempted_by + 1, solved_by = solved_by + 1,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgChallengeRepository.IncrementAttemptedAndSolved: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) ExpireBefore(ctx context.Context, day time.Time) (int64, error) {
	query := `UPDATE challenges SET expired = TRUE, updated_at = CURRENT_TIMESTAMP
	          WHERE solve_date < $1 AND expired = FALSE`
	res, err := r.db.ExecContext(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("pgChallengeRepository.ExpireBefore: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
