package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

// Profile carries the identity claims extracted from the caller's token.
type Profile struct {
	Name  string
	Email string
	Image string
}

// UserService mirrors identity-provider profiles into the local user table
// so messages and members can be enriched without calling out.
type UserService interface {
	// Ensure upserts the caller's profile on first contact and whenever
	// the claims change.
	Ensure(ctx context.Context, userID string, profile Profile) (*dto.UserResponse, error)
	// Current returns the caller's stored profile, or nil when the user
	// has never hit the API before.
	Current(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type userService struct {
	users repository.UserRepository
	log   zerolog.Logger
}

func NewUserService(users repository.UserRepository, log zerolog.Logger) UserService {
	return &userService{
		users: users,
		log:   log.With().Str("component", "user-service").Logger(),
	}
}

func (s *userService) Ensure(ctx context.Context, userID string, profile Profile) (*dto.UserResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	user := &models.User{
		ID:    userID,
		Name:  profile.Name,
		Email: profile.Email,
		Image: profile.Image,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	resp := dto.NewUserResponse(*user)
	return &resp, nil
}

func (s *userService) Current(ctx context.Context, userID string) (*dto.UserResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		// Missing is not an error here: the client treats nil as
		// "complete your profile".
		return nil, nil
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}
