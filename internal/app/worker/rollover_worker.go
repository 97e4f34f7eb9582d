package worker

import (
	"context"
	"errors"
	"time"

	"finkiranked/internal/app/service"
	"finkiranked/internal/core/scoring"
	"finkiranked/internal/domain/repository"
	"finkiranked/internal/platform/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dayLayout = "2006-01-02"

// RolloverState is the rollover's cross-restart bookkeeping: the multi-instance
// lock and the last challenge day whose rollover completed. The completed-day
// marker must not expire; it is what keeps a mid-day process restart from
// re-running the reset and handing out second awards.
type RolloverState interface {
	AcquireLock(ctx context.Context) (bool, error)
	ReleaseLock(ctx context.Context)
	LastDay(ctx context.Context) (string, error)
	SetLastDay(ctx context.Context, day string) error
}

type redisRolloverState struct {
	rdb *redis.Client
}

func NewRedisRolloverState(rdb *redis.Client) RolloverState {
	return &redisRolloverState{rdb: rdb}
}

func (s *redisRolloverState) AcquireLock(ctx context.Context) (bool, error) {
	conf := config.AppConfig
	return s.rdb.SetNX(ctx, conf.RolloverLockKey, time.Now().Format(time.RFC3339), conf.RolloverLockTTL).Result()
}

func (s *redisRolloverState) ReleaseLock(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.AppConfig.RolloverLockKey).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to release rollover lock")
	}
}

func (s *redisRolloverState) LastDay(ctx context.Context) (string, error) {
	day, err := s.rdb.Get(ctx, config.AppConfig.RolloverDayKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return day, err
}

func (s *redisRolloverState) SetLastDay(ctx context.Context, day string) error {
	return s.rdb.Set(ctx, config.AppConfig.RolloverDayKey, day, 0).Err()
}

// RolloverWorker runs the daily reset: at 07:00 local it expires outgoing
// challenges, zeroes per-user daily state and drops the cached leaderboard.
// The state's lock keeps multiple instances from rolling over at once; its
// completed-day marker makes the rollover run at most once per challenge day.
type RolloverWorker struct {
	state         RolloverState
	userRepo      repository.UserRepository
	challengeRepo repository.ChallengeRepository
	leaderboard   service.LeaderboardCache
}

func NewRolloverWorker(
	state RolloverState,
	userRepo repository.UserRepository,
	challengeRepo repository.ChallengeRepository,
	leaderboard service.LeaderboardCache,
) *RolloverWorker {
	return &RolloverWorker{
		state:         state,
		userRepo:      userRepo,
		challengeRepo: challengeRepo,
		leaderboard:   leaderboard,
	}
}

func (w *RolloverWorker) Start(ctx context.Context) {
	log.Info().Msg("Rollover worker started")

	// Catch up in case the process was down at 07:00; the completed-day
	// marker makes this a no-op when today's rollover already ran.
	w.runOnce(ctx)

	for {
		wait := time.Until(nextRollover(time.Now()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Rollover worker stopping")
			return
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

// nextRollover returns the next 07:00 local strictly after now.
func nextRollover(now time.Time) time.Time {
	next := scoring.DayStart(now).AddDate(0, 0, 1)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *RolloverWorker) runOnce(ctx context.Context) {
	day := scoring.DayStart(time.Now())
	dayKey := day.Format(dayLayout)

	ok, err := w.state.AcquireLock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to acquire rollover lock")
		return
	}
	if !ok {
		log.Info().Msg("rollover already handled by another instance")
		return
	}
	defer w.state.ReleaseLock(ctx)

	lastDay, err := w.state.LastDay(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read last completed rollover day")
		return
	}
	if lastDay == dayKey {
		// Restarted mid-day. Resetting again would clear
		// solved_daily_challenge and let users score twice.
		log.Info().Str("day", dayKey).Msg("rollover already completed for today")
		return
	}

	expired, err := w.challengeRepo.ExpireBefore(ctx, day)
	if err != nil {
		log.Error().Err(err).Msg("failed to expire outgoing challenges")
	} else if expired > 0 {
		log.Info().Int64("count", expired).Msg("expired outgoing challenges")
	}

	reset, err := w.userRepo.ResetDailyState(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to reset daily user state")
		return
	}
	log.Info().Int64("users", reset).Msg("daily user state reset")

	w.leaderboard.Invalidate(ctx)

	if err := w.state.SetLastDay(ctx, dayKey); err != nil {
		log.Error().Err(err).Str("day", dayKey).Msg("failed to record completed rollover day")
	}

	if _, err := w.challengeRepo.FindChallengeByDay(ctx, day); err != nil {
		log.Warn().Str("day", dayKey).Msg("no challenge scheduled for today")
	}
}
