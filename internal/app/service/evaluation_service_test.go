package service

import (
	"context"
	"testing"
	"time"

	"finkiranked/internal/common"
	"finkiranked/internal/core/scoring"
	"finkiranked/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID      = "5a2e1b3c-0f4d-4b6a-9c8e-1d2f3a4b5c6d"
	testChallengeID = "9f8e7d6c-5b4a-4c3d-8e2f-1a0b9c8d7e6f"
	testCaseID      = "1b2c3d4e-5f6a-4b7c-8d9e-0f1a2b3c4d5e"
)

func newEvaluationFixture(t *testing.T) (*EvaluationService, *fakeUserRepo, *fakeChallengeRepo, *fakeLeaderboardCache, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := newFakeUserRepo(&model.User{
		ID:       testUserID,
		Username: "student",
		Rank:     "Novice",
	})
	challengeRepo := newFakeChallengeRepo()
	challengeRepo.add(
		&model.Challenge{
			ID:         testChallengeID,
			Title:      "Sum of Two",
			Slug:       "sum-of-two",
			Difficulty: scoring.DifficultyEasy,
			OutputType: scoring.OutputInteger,
		},
		&model.TestCase{ID: testCaseID, ChallengeID: testChallengeID, Input: "40 2", ExpectedOutput: "42"},
	)
	lb := &fakeLeaderboardCache{}

	svc := NewEvaluationService(userRepo, challengeRepo, lb, db)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, scoring.DayStartHour, 0, 0, 0, time.Local)
	}
	return svc, userRepo, challengeRepo, lb, mock
}

func evalReq(output string) EvaluateRequest {
	return EvaluateRequest{ChallengeID: testChallengeID, TestCaseID: testCaseID, Output: output}
}

func TestEvaluateCorrectFirstAttemptAtDayStart(t *testing.T) {
	svc, userRepo, challengeRepo, lb, mock := newEvaluationFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Evaluate(context.Background(), testUserID, evalReq("42"))
	require.NoError(t, err)

	// 60 time bonus + 40 first attempt + 10 Easy.
	assert.True(t, resp.Correct)
	assert.Equal(t, 110, resp.Score)
	assert.Equal(t, 110, resp.Points)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, "Novice", resp.Rank, "110 points is still below the Learner threshold")

	user := userRepo.users[testUserID]
	assert.Equal(t, 110, user.Points)
	assert.Equal(t, 1, user.Attempts)
	assert.Equal(t, 1, user.SolvedProblems)
	assert.True(t, user.SolvedDailyChallenge)
	assert.Equal(t, 110, user.DailyPoints)

	assert.Equal(t, 1, challengeRepo.attempted)
	assert.Equal(t, 1, challengeRepo.solved)
	assert.Equal(t, 1, lb.invalidations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateTolerantAnswerFormats(t *testing.T) {
	svc, _, _, _, mock := newEvaluationFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	// Whitespace and stray punctuation are absorbed by normalization.
	resp, err := svc.Evaluate(context.Background(), testUserID, evalReq("  42! "))
	require.NoError(t, err)
	assert.True(t, resp.Correct)
}

func TestEvaluateIncorrectOnlyCountsAttempt(t *testing.T) {
	svc, userRepo, challengeRepo, lb, _ := newEvaluationFixture(t)

	resp, err := svc.Evaluate(context.Background(), testUserID, evalReq("41"))
	require.NoError(t, err)

	assert.False(t, resp.Correct)
	assert.Equal(t, 1, resp.Attempts)
	assert.Zero(t, resp.Score)

	user := userRepo.users[testUserID]
	assert.Equal(t, 0, user.Points)
	assert.Equal(t, 1, user.Attempts)
	assert.False(t, user.SolvedDailyChallenge)

	assert.Equal(t, 1, challengeRepo.attempted)
	assert.Equal(t, 0, challengeRepo.solved)
	assert.Equal(t, 0, lb.invalidations)
}

func TestEvaluateSecondAttemptScoresLower(t *testing.T) {
	svc, userRepo, _, _, mock := newEvaluationFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Evaluate(context.Background(), testUserID, evalReq("41"))
	require.NoError(t, err)

	resp, err := svc.Evaluate(context.Background(), testUserID, evalReq("42"))
	require.NoError(t, err)

	// 60 time bonus + 35 second attempt + 10 Easy.
	assert.Equal(t, 105, resp.Score)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, 2, userRepo.users[testUserID].Attempts)
}

func TestEvaluateRejectedWhenAlreadySolved(t *testing.T) {
	svc, userRepo, challengeRepo, lb, _ := newEvaluationFixture(t)
	userRepo.users[testUserID].SolvedDailyChallenge = true
	userRepo.users[testUserID].Points = 110

	_, err := svc.Evaluate(context.Background(), testUserID, evalReq("42"))
	assert.ErrorIs(t, err, common.ErrAlreadySolved)

	// Nothing moved.
	assert.Equal(t, 110, userRepo.users[testUserID].Points)
	assert.Equal(t, 0, userRepo.users[testUserID].Attempts)
	assert.Equal(t, 0, challengeRepo.attempted)
	assert.Equal(t, 0, lb.invalidations)
}

func TestEvaluateRejectedWhenRaceLostUnderLock(t *testing.T) {
	svc, userRepo, _, lb, mock := newEvaluationFixture(t)
	// The initial read sees the flag clear, but by the time the row lock is
	// taken a concurrent submission has already solved it.
	userRepo.solvedOnLock = true
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Evaluate(context.Background(), testUserID, evalReq("42"))
	assert.ErrorIs(t, err, common.ErrAlreadySolved)
	assert.Nil(t, userRepo.lastAward)
	assert.Equal(t, 0, lb.invalidations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateRejectedForeignTestCase(t *testing.T) {
	svc, userRepo, challengeRepo, _, _ := newEvaluationFixture(t)
	otherID := "2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f"
	challengeRepo.testCases[otherID] = &model.TestCase{
		ID: otherID, ChallengeID: "someone-elses-challenge", ExpectedOutput: "42",
	}

	req := EvaluateRequest{ChallengeID: testChallengeID, TestCaseID: otherID, Output: "42"}
	_, err := svc.Evaluate(context.Background(), testUserID, req)
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.Equal(t, 0, userRepo.users[testUserID].Attempts, "rejected before any counter moves")
}

func TestEvaluateRejectedExpiredChallenge(t *testing.T) {
	svc, _, challengeRepo, _, _ := newEvaluationFixture(t)
	challengeRepo.challenges[testChallengeID].Expired = true

	_, err := svc.Evaluate(context.Background(), testUserID, evalReq("42"))
	assert.ErrorIs(t, err, common.ErrChallengeExpired)
}

func TestEvaluateRejectsMalformedRequest(t *testing.T) {
	svc, _, _, _, _ := newEvaluationFixture(t)

	_, err := svc.Evaluate(context.Background(), testUserID, EvaluateRequest{ChallengeID: "not-a-uuid", TestCaseID: testCaseID})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestEvaluateRankPromotion(t *testing.T) {
	svc, userRepo, _, _, mock := newEvaluationFixture(t)
	userRepo.users[testUserID].Points = 250
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Evaluate(context.Background(), testUserID, evalReq("42"))
	require.NoError(t, err)
	assert.Equal(t, 360, resp.Points)
	assert.Equal(t, "Learner", resp.Rank)
	assert.Equal(t, "Learner", userRepo.users[testUserID].Rank)
}
