package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finkiranked/internal/common"
	"finkiranked/internal/core/scoring"
	"finkiranked/internal/domain/model"
	"finkiranked/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	db            *sql.DB // For transactions
}

func NewChallengeService(challengeRepo repository.ChallengeRepository, db *sql.DB) *ChallengeService {
	return &ChallengeService{challengeRepo: challengeRepo, db: db}
}

type CreateTestCaseRequest struct {
	Input          string `json:"input" validate:"required"`
	ExpectedOutput string `json:"expected_output" validate:"required"`
}

type CreateChallengeRequest struct {
	Title       string                  `json:"title" validate:"required,max=200"`
	Description string                  `json:"description" validate:"required"`
	Difficulty  scoring.Difficulty      `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	OutputType  scoring.OutputType      `json:"output_type" validate:"required,oneof=string integer float array"`
	SolveDate   string                  `json:"solve_date" validate:"required,datetime=2006-01-02"`
	TestCases   []CreateTestCaseRequest `json:"test_cases" validate:"required,min=1,dive"`
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, userID string, req CreateChallengeRequest) (*model.Challenge, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	solveDate, err := time.ParseInLocation("2006-01-02", req.SolveDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid solve date: %w", common.ErrBadRequest)
	}

	challenge := &model.Challenge{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Difficulty:  req.Difficulty,
		OutputType:  req.OutputType,
		SolveDate:   solveDate,
		CreatedByID: &userID,
	}

	testCases := make([]model.TestCase, 0, len(req.TestCases))
	for i, tc := range req.TestCases {
		testCases = append(testCases, model.TestCase{
			ID:             uuid.NewString(),
			ChallengeID:    challenge.ID,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			SortOrder:      i + 1,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.challengeRepo.CreateChallenge(ctx, tx, challenge); err != nil {
		return nil, common.Errorf("failed to create challenge: %w", err)
	}
	if err := s.challengeRepo.AddTestCases(ctx, tx, challenge.ID, testCases); err != nil {
		return nil, common.Errorf("failed to add test cases: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("challenge_id", challenge.ID).Str("slug", challenge.Slug).
		Str("solve_date", req.SolveDate).Msg("challenge created")

	challenge.TestCases = testCases // Moderator response view
	return challenge, nil
}

// GetTodaysChallenge returns the challenge for the current challenge day with
// its test-case inputs. Expected outputs are withheld unless the caller is a
// moderator.
func (s *ChallengeService) GetTodaysChallenge(ctx context.Context, userRole string) (*model.Challenge, error) {
	day := scoring.DayStart(time.Now())
	challenge, err := s.challengeRepo.FindChallengeByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return s.attachTestCases(ctx, challenge, userRole)
}

func (s *ChallengeService) GetChallengeBySlug(ctx context.Context, challengeSlug, userRole string) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.FindChallengeBySlug(ctx, challengeSlug)
	if err != nil {
		return nil, err
	}
	// Upcoming challenges are visible to moderators only.
	if !isModerator(userRole) && scoring.DayStart(time.Now()).Before(challenge.SolveDate) {
		return nil, common.ErrNotFound
	}
	return s.attachTestCases(ctx, challenge, userRole)
}

func (s *ChallengeService) attachTestCases(ctx context.Context, challenge *model.Challenge, userRole string) (*model.Challenge, error) {
	testCases, err := s.challengeRepo.GetTestCasesByChallengeID(ctx, challenge.ID)
	if err != nil {
		log.Warn().Err(err).Str("challenge_id", challenge.ID).Msg("failed to fetch test cases")
		return challenge, nil
	}
	if !isModerator(userRole) {
		for i := range testCases {
			testCases[i].ExpectedOutput = ""
		}
	}
	challenge.TestCases = testCases
	return challenge, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context, page, pageSize int, userRole string) ([]model.Challenge, int, error) {
	limit := pageSize
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	day := scoring.DayStart(time.Now())
	return s.challengeRepo.ListChallenges(ctx, day, limit, offset, isModerator(userRole))
}

func isModerator(role string) bool {
	return role == model.RoleModerator || role == model.RoleAdmin
}
