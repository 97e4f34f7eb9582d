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

func newChallengeFixture(t *testing.T) (*ChallengeService, *fakeChallengeRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newFakeChallengeRepo()
	return NewChallengeService(repo, db), repo, mock
}

func validCreateChallenge() CreateChallengeRequest {
	return CreateChallengeRequest{
		Title:       "Two Sum",
		Description: "Given two integers, print their sum.",
		Difficulty:  scoring.DifficultyEasy,
		OutputType:  scoring.OutputInteger,
		SolveDate:   "2025-03-10",
		TestCases: []CreateTestCaseRequest{
			{Input: "40 2", ExpectedOutput: "42"},
			{Input: "1 2", ExpectedOutput: "3"},
		},
	}
}

func TestCreateChallenge(t *testing.T) {
	svc, repo, mock := newChallengeFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ch, err := svc.CreateChallenge(context.Background(), "mod-1", validCreateChallenge())
	require.NoError(t, err)

	assert.Equal(t, "two-sum", ch.Slug)
	assert.Len(t, ch.TestCases, 2)
	assert.Equal(t, 1, ch.TestCases[0].SortOrder)
	assert.Equal(t, 2, ch.TestCases[1].SortOrder)
	assert.Contains(t, repo.challenges, ch.ID)
	assert.Len(t, repo.testCases, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateChallengeValidation(t *testing.T) {
	svc, _, _ := newChallengeFixture(t)

	cases := []struct {
		name string
		mut  func(*CreateChallengeRequest)
	}{
		{"unknown difficulty", func(r *CreateChallengeRequest) { r.Difficulty = "Impossible" }},
		{"unknown output type", func(r *CreateChallengeRequest) { r.OutputType = "boolean" }},
		{"bad solve date", func(r *CreateChallengeRequest) { r.SolveDate = "10-03-2025" }},
		{"no test cases", func(r *CreateChallengeRequest) { r.TestCases = nil }},
		{"empty expected output", func(r *CreateChallengeRequest) { r.TestCases[0].ExpectedOutput = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateChallenge()
			tc.mut(&req)
			_, err := svc.CreateChallenge(context.Background(), "mod-1", req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCreateChallengeDuplicateSlug(t *testing.T) {
	svc, _, mock := newChallengeFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.CreateChallenge(context.Background(), "mod-1", validCreateChallenge())
	require.NoError(t, err)

	_, err = svc.CreateChallenge(context.Background(), "mod-1", validCreateChallenge())
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestGetChallengeBySlugHidesAnswers(t *testing.T) {
	svc, repo, _ := newChallengeFixture(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	repo.add(
		&model.Challenge{ID: testChallengeID, Slug: "two-sum", SolveDate: yesterday},
		&model.TestCase{ID: testCaseID, ChallengeID: testChallengeID, Input: "40 2", ExpectedOutput: "42"},
	)

	ch, err := svc.GetChallengeBySlug(context.Background(), "two-sum", model.RoleUser)
	require.NoError(t, err)
	require.Len(t, ch.TestCases, 1)
	assert.Equal(t, "40 2", ch.TestCases[0].Input)
	assert.Empty(t, ch.TestCases[0].ExpectedOutput)

	ch, err = svc.GetChallengeBySlug(context.Background(), "two-sum", model.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, "42", ch.TestCases[0].ExpectedOutput)
}

func TestListChallengesHidesUpcomingFromUsers(t *testing.T) {
	svc, repo, _ := newChallengeFixture(t)
	repo.add(&model.Challenge{ID: testChallengeID, Slug: "past", SolveDate: time.Now().AddDate(0, 0, -1)})
	repo.add(&model.Challenge{ID: testCaseID, Slug: "future", SolveDate: time.Now().AddDate(0, 0, 7)})

	_, total, err := svc.ListChallenges(context.Background(), 1, 20, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.ListChallenges(context.Background(), 1, 20, model.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestGetUpcomingChallengeModeratorOnly(t *testing.T) {
	svc, repo, _ := newChallengeFixture(t)
	nextWeek := time.Now().AddDate(0, 0, 7)
	repo.add(&model.Challenge{ID: testChallengeID, Slug: "future", SolveDate: nextWeek})

	_, err := svc.GetChallengeBySlug(context.Background(), "future", model.RoleUser)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.GetChallengeBySlug(context.Background(), "future", model.RoleModerator)
	assert.NoError(t, err)
}
