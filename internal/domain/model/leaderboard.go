package model

type LeaderboardEntry struct {
	Position       int    `json:"position"`
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Points         int    `json:"points"`
	Rank           string `json:"rank"`
	SolvedProblems int    `json:"solved_problems"`
}
