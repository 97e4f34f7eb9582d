package service

import (
	"context"
	"encoding/json"

	"finkiranked/internal/domain/model"
	"finkiranked/internal/domain/repository"
	"finkiranked/internal/platform/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type LeaderboardService struct {
	userRepo repository.UserRepository
	rdb      *redis.Client
}

func NewLeaderboardService(userRepo repository.UserRepository, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{userRepo: userRepo, rdb: rdb}
}

type LeaderboardPage struct {
	Entries  []model.LeaderboardEntry `json:"entries"`
	Total    int                      `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

// GetLeaderboard returns one page of the standings. The first page is the one
// everybody loads, so it is served from Redis when fresh.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, page, pageSize int) (*LeaderboardPage, error) {
	cacheable := page == 1 && pageSize == config.DefaultPageSize
	if cacheable {
		if cached := s.fromCache(ctx); cached != nil {
			return cached, nil
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.userRepo.ListLeaderboard(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}

	result := &LeaderboardPage{Entries: entries, Total: total, Page: page, PageSize: pageSize}
	if cacheable {
		s.toCache(ctx, result)
	}
	return result, nil
}

// Invalidate drops the cached first page. Called after any score award and at
// the daily rollover.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.AppConfig.LeaderboardCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

func (s *LeaderboardService) fromCache(ctx context.Context) *LeaderboardPage {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, config.AppConfig.LeaderboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("leaderboard cache read failed")
		}
		return nil
	}
	var page LeaderboardPage
	if err := json.Unmarshal(raw, &page); err != nil {
		log.Warn().Err(err).Msg("leaderboard cache entry corrupt, dropping")
		s.Invalidate(ctx)
		return nil
	}
	return &page
}

func (s *LeaderboardService) toCache(ctx context.Context, page *LeaderboardPage) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.AppConfig.LeaderboardCacheKey, raw, config.AppConfig.LeaderboardCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("leaderboard cache write failed")
	}
}
