package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := NewProfileService(profiles)

	req := &dto.RegisterProfileRequest{Email: "alice@x.com", FirstName: "Alice"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for duplicate email, got %v", err)
	}
}

func TestRegisterStartsWithZeroCounters(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := NewProfileService(profiles)

	p, err := svc.Register(context.Background(), &dto.RegisterProfileRequest{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalRating != 0 || p.Reviewer != 0 {
		t.Fatalf("new profile must start with zero counters, got %+v", p)
	}
	if p.AverageRating() != 0 {
		t.Fatalf("zero reviews must derive average 0, got %v", p.AverageRating())
	}
}

func TestGetWithRatingMissingProfile(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo())

	_, err := svc.GetWithRating(context.Background(), "nobody@x.com")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func seedProfiles(t *testing.T, repo *mockProfileRepo, n int) {
	t.Helper()
	base := time.Now()
	for i := 0; i < n; i++ {
		p := &domain.Profile{
			ID:        fmt.Sprintf("id-%d", i),
			Email:     fmt.Sprintf("user%d@x.com", i),
			FirstName: fmt.Sprintf("User%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestListPagination(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := NewProfileService(profiles)
	seedProfiles(t, profiles, 45)

	page1, err := svc.List(context.Background(), "", 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page1.Items) != 20 || page1.Total != 45 {
		t.Fatalf("expected 20 items and total 45, got %d items total %d", len(page1.Items), page1.Total)
	}

	page3, err := svc.List(context.Background(), "", 3, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page3.Items) != 5 || page3.Total != 45 {
		t.Fatalf("expected 5 items and total 45, got %d items total %d", len(page3.Items), page3.Total)
	}
}

func TestListDefaultsInvalidPaging(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := NewProfileService(profiles)
	seedProfiles(t, profiles, 3)

	result, err := svc.List(context.Background(), "", 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 1 {
		t.Fatalf("expected page defaulted to 1, got %d", result.Page)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected all 3 items under default page size, got %d", len(result.Items))
	}
}

func TestListCaseInsensitiveFilter(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := NewProfileService(profiles)

	if _, err := svc.Register(context.Background(), &dto.RegisterProfileRequest{
		Email:     "alice@x.com",
		FirstName: "Alice",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(context.Background(), &dto.RegisterProfileRequest{
		Email:    "bob@x.com",
		LastName: "Builder",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.List(context.Background(), "alice", 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 || result.Items[0].Email != "alice@x.com" {
		t.Fatalf("expected only Alice to match filter, got %+v", result)
	}
}

func TestUpdateProfileRequiresFields(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo())

	err := svc.UpdateProfile(context.Background(), "alice@x.com", &dto.UpdateProfileRequest{})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for empty update, got %v", err)
	}
}

func TestUpdateProfileSetsFields(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := NewProfileService(profiles)

	first := "Alicia"
	if err := svc.UpdateProfile(context.Background(), "alice@x.com", &dto.UpdateProfileRequest{
		FirstName: &first,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := profiles.FindByEmail(context.Background(), "alice@x.com")
	if err != nil {
		t.Fatalf("upsert expected to create the profile: %v", err)
	}
	if p.FirstName != "Alicia" {
		t.Fatalf("expected first name updated, got %q", p.FirstName)
	}
}
