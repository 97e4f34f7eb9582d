package scoring

type RankTier struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Threshold int    `json:"threshold"`
}

// rankTiers is ordered descending by threshold so a lookup can return the
// first tier whose threshold fits. Built once; never mutated.
var rankTiers = []RankTier{
	{ID: 10, Title: "FINKI Legend", Threshold: 16000},
	{ID: 9, Title: "Grandmaster", Threshold: 12000},
	{ID: 8, Title: "Master", Threshold: 8500},
	{ID: 7, Title: "Expert", Threshold: 6000},
	{ID: 6, Title: "Strategist", Threshold: 4000},
	{ID: 5, Title: "Challenger", Threshold: 2500},
	{ID: 4, Title: "Solver", Threshold: 1500},
	{ID: 3, Title: "Apprentice", Threshold: 800},
	{ID: 2, Title: "Learner", Threshold: 300},
	{ID: 1, Title: "Novice", Threshold: 0},
}

// RankForPoints returns the highest tier whose threshold does not exceed the
// user's cumulative points. The Novice fallback is unreachable for
// non-negative points since its threshold is 0, but is kept explicit.
func RankForPoints(points int) RankTier {
	for _, t := range rankTiers {
		if t.Threshold <= points {
			return t
		}
	}
	return rankTiers[len(rankTiers)-1]
}

// RankTiers returns the full tier table, lowest tier first, for API exposure.
func RankTiers() []RankTier {
	out := make([]RankTier, len(rankTiers))
	for i, t := range rankTiers {
		out[len(rankTiers)-1-i] = t
	}
	return out
}
