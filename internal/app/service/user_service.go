package service

import (
	"context"

	"finkiranked/internal/core/scoring"
	"finkiranked/internal/domain/model"
	"finkiranked/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type ProfileResponse struct {
	User     *model.User     `json:"user"`
	RankTier scoring.RankTier `json:"rank_tier"`
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return &ProfileResponse{User: user, RankTier: scoring.RankForPoints(user.Points)}, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*ProfileResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	user.Email = "" // Public profile hides the email
	return &ProfileResponse{User: user, RankTier: scoring.RankForPoints(user.Points)}, nil
}

// RankTable exposes the static tier table for the frontend.
func (s *UserService) RankTable() []scoring.RankTier {
	return scoring.RankTiers()
}
