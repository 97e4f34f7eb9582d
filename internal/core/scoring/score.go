package scoring

import (
	"fmt"
	"math"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// DayStartHour is the local hour at which a challenge day begins and at which
// the daily rollover runs.
const DayStartHour = 7

const (
	maxTimeBonus    = 60
	timeDecayFactor = 0.0833 // roughly 1/12: the bonus hits zero after ~12h

	maxAttemptScore   = 40
	minAttemptScore   = 5
	attemptScoreDecay = 5
)

// DayStart returns the start of the challenge day containing now: today's
// 07:00 local, or yesterday's if now is earlier than that.
func DayStart(now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), DayStartHour, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// TimeBonus rewards solving early in the challenge day: 60 points at 07:00,
// decaying to 0 about twelve hours later.
func TimeBonus(now time.Time) int {
	elapsed := int(now.Sub(DayStart(now)).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}
	bonus := maxTimeBonus - int(math.Floor(float64(elapsed)*timeDecayFactor))
	if bonus < 0 {
		bonus = 0
	}
	return bonus
}

// AttemptScore rewards solving in few attempts. The attempt number is
// 1-indexed: 40 on the first attempt, 5 less per failed attempt before it,
// floored at 5 from the eighth attempt on.
func AttemptScore(attemptNumber int) int {
	score := maxAttemptScore - (attemptNumber-1)*attemptScoreDecay
	if score < minAttemptScore {
		score = minAttemptScore
	}
	return score
}

// DifficultyScore maps a challenge difficulty to its fixed score component.
// Difficulty is validated at challenge creation, so an unknown value here is
// a configuration error.
func DifficultyScore(d Difficulty) (int, error) {
	switch d {
	case DifficultyEasy:
		return 10, nil
	case DifficultyMedium:
		return 20, nil
	case DifficultyHard:
		return 30, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", d)
}

// TotalScore is the full award for one correct submission. Range: 15 (no time
// bonus, eighth-or-later attempt, Easy) to 130 (day start, first attempt,
// Hard).
func TotalScore(now time.Time, attemptNumber int, difficulty Difficulty) (int, error) {
	ds, err := DifficultyScore(difficulty)
	if err != nil {
		return 0, err
	}
	return TimeBonus(now) + AttemptScore(attemptNumber) + ds, nil
}
