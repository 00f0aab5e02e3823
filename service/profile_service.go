package service

import (
	"context"
	"time"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
	"github.com/annazecevic/profile-service/logger"
	"github.com/annazecevic/profile-service/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type ProfilePage struct {
	Items []*domain.Profile
	Total int64
	Page  int64
}

type ProfileService interface {
	Register(ctx context.Context, req *dto.RegisterProfileRequest) (*domain.Profile, error)
	GetWithRating(ctx context.Context, email string) (*domain.Profile, error)
	List(ctx context.Context, filter string, page, pageSize int64) (*ProfilePage, error)
	UpdateProfile(ctx context.Context, email string, req *dto.UpdateProfileRequest) error
}

type profileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) Register(ctx context.Context, req *dto.RegisterProfileRequest) (*domain.Profile, error) {
	if req.Email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "required"}
	}

	now := time.Now()
	profile := &domain.Profile{
		ID:        uuid.New().String(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Counters start at zero; the unique email index rejects a second
	// registration for the same address.
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info(logger.EventProfileCreated, "Profile registered", logger.Fields(
		"email", profile.Email,
	))

	return profile, nil
}

func (s *profileService) GetWithRating(ctx context.Context, email string) (*domain.Profile, error) {
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "required"}
	}
	return s.profiles.FindByEmail(ctx, email)
}

func (s *profileService) List(ctx context.Context, filter string, page, pageSize int64) (*ProfilePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, total, err := s.profiles.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &ProfilePage{Items: items, Total: total, Page: page}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, email string, req *dto.UpdateProfileRequest) error {
	if email == "" {
		return &domain.ValidationError{Field: "email", Reason: "required"}
	}

	fields := bson.M{}
	if req.FirstName != nil {
		fields["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["lastName"] = *req.LastName
	}
	if len(fields) == 0 {
		return &domain.ValidationError{Field: "body", Reason: "no fields to update"}
	}

	if err := s.profiles.Update(ctx, email, fields); err != nil {
		return err
	}

	logger.Info(logger.EventProfileUpdated, "Profile updated", logger.Fields(
		"email", email,
	))

	return nil
}
