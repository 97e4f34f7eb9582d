package model

import (
	"time"

	"finkiranked/internal/core/scoring"
)

type Challenge struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Difficulty  scoring.Difficulty `json:"difficulty"`
	OutputType  scoring.OutputType `json:"output_type"`
	// SolveDate is the calendar day (local) the challenge is live.
	SolveDate   time.Time `json:"solve_date"`
	Expired     bool      `json:"expired"`
	AttemptedBy int       `json:"attempted_by"`
	SolvedBy    int       `json:"solved_by"`
	CreatedByID *string   `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	TestCases         []TestCase `json:"test_cases,omitempty"`      // Moderator view; input-only for users
	CreatedByUsername *string    `json:"created_by_username,omitempty"` // For display
}

// TestCase holds one input and the expected output for a challenge.
// Immutable after creation.
type TestCase struct {
	ID             string    `json:"id"`
	ChallengeID    string    `json:"challenge_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output,omitempty"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}
