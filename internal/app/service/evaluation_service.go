package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finkiranked/internal/common"
	"finkiranked/internal/core/scoring"
	"finkiranked/internal/domain/repository"

	"github.com/rs/zerolog/log"
)

// LeaderboardCache is the slice of the leaderboard service the evaluation
// service needs: dropping the cached standings after a score changes.
type LeaderboardCache interface {
	Invalidate(ctx context.Context)
}

type EvaluationService struct {
	userRepo      repository.UserRepository
	challengeRepo repository.ChallengeRepository
	leaderboard   LeaderboardCache
	db            *sql.DB // For transactions

	now func() time.Time
}

func NewEvaluationService(
	userRepo repository.UserRepository,
	challengeRepo repository.ChallengeRepository,
	leaderboard LeaderboardCache,
	db *sql.DB,
) *EvaluationService {
	return &EvaluationService{
		userRepo:      userRepo,
		challengeRepo: challengeRepo,
		leaderboard:   leaderboard,
		db:            db,
		now:           time.Now,
	}
}

type EvaluateRequest struct {
	ChallengeID string `json:"challenge_id" validate:"required,uuid4"`
	TestCaseID  string `json:"test_case_id" validate:"required,uuid4"`
	Output      string `json:"output"`
}

type EvaluateResponse struct {
	Correct  bool   `json:"correct"`
	Attempts int    `json:"attempts"`
	Score    int    `json:"score,omitempty"`
	Points   int    `json:"points,omitempty"`
	Rank     string `json:"rank,omitempty"`
}

// Evaluate checks one submission against the challenge's expected output and,
// when correct, awards points inside a single transaction. The user row is
// locked while awarding so a concurrent duplicate submission can never score
// twice.
func (s *EvaluationService) Evaluate(ctx context.Context, userID string, req EvaluateRequest) (*EvaluateResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	challenge, err := s.challengeRepo.FindChallengeByID(ctx, req.ChallengeID)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}
	testCase, err := s.challengeRepo.GetTestCase(ctx, req.TestCaseID)
	if err != nil {
		return nil, common.Errorf("test case not found: %w", err)
	}
	if testCase.ChallengeID != challenge.ID {
		return nil, common.Errorf("test case does not belong to challenge: %w", common.ErrBadRequest)
	}
	if challenge.Expired {
		return nil, common.ErrChallengeExpired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, common.Errorf("user not found: %w", err)
	}
	if user.SolvedDailyChallenge {
		return nil, common.ErrAlreadySolved
	}

	if !scoring.OutputsMatch(req.Output, testCase.ExpectedOutput, challenge.OutputType) {
		return s.recordFailedAttempt(ctx, userID, challenge.ID)
	}
	return s.awardScore(ctx, userID, challenge.ID, challenge.Difficulty)
}

func (s *EvaluationService) recordFailedAttempt(ctx context.Context, userID, challengeID string) (*EvaluateResponse, error) {
	attempts, err := s.userRepo.IncrementAttempts(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to record attempt: %w", err)
	}
	if err := s.challengeRepo.IncrementAttempted(ctx, challengeID); err != nil {
		// The user-side counter is authoritative for scoring; a missed
		// challenge statistic is only logged.
		log.Warn().Err(err).Str("challenge_id", challengeID).Msg("failed to bump attempted counter")
	}
	return &EvaluateResponse{Correct: false, Attempts: attempts}, nil
}

func (s *EvaluationService) awardScore(ctx context.Context, userID, challengeID string, difficulty scoring.Difficulty) (*EvaluateResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, common.Errorf("failed to lock user row: %w", err)
	}
	// Re-check under the lock: a concurrent submission may have solved the
	// challenge between the handler-level check and here.
	if user.SolvedDailyChallenge {
		return nil, common.ErrAlreadySolved
	}

	attemptNumber := user.Attempts + 1
	total, err := scoring.TotalScore(s.now(), attemptNumber, difficulty)
	if err != nil {
		return nil, common.Errorf("failed to compute score: %w", err)
	}
	newPoints := user.Points + total
	newRank := scoring.RankForPoints(newPoints)

	award := repository.DailyAward{Score: total, NewPoints: newPoints, NewRank: newRank.Title}
	if err := s.userRepo.ApplyDailyAward(ctx, tx, userID, award); err != nil {
		return nil, common.Errorf("failed to apply award: %w", err)
	}
	if err := s.challengeRepo.IncrementAttemptedAndSolved(ctx, tx, challengeID); err != nil {
		return nil, common.Errorf("failed to bump challenge counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	s.leaderboard.Invalidate(ctx)

	log.Info().Str("user_id", userID).Str("challenge_id", challengeID).
		Int("score", total).Int("attempt", attemptNumber).Str("rank", newRank.Title).
		Msg("daily challenge solved")

	return &EvaluateResponse{
		Correct:  true,
		Attempts: attemptNumber,
		Score:    total,
		Points:   newPoints,
		Rank:     newRank.Title,
	}, nil
}
