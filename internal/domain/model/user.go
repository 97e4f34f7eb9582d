package model

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // Not exposed
	Role           string `json:"role"`
	Points         int    `json:"points"`
	Rank           string `json:"rank"`
	SolvedProblems int    `json:"solved_problems"`
	// Daily state, zeroed by the rollover worker each morning.
	Attempts             int  `json:"attempts"`
	DailyPoints          int  `json:"daily_points"`
	SolvedDailyChallenge bool `json:"solved_daily_challenge"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
