package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
	"github.com/annazecevic/profile-service/service"
	"github.com/gin-gonic/gin"
)

type mockRatingService struct {
	SubmitResp *domain.Review
	SubmitErr  error
	LiveResp   domain.ReviewStats
	CachedResp domain.ReviewStats
}

func (m *mockRatingService) SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest) (*domain.Review, error) {
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	return m.SubmitResp, nil
}

func (m *mockRatingService) LiveRating(ctx context.Context, email string) (domain.ReviewStats, error) {
	return m.LiveResp, nil
}

func (m *mockRatingService) CachedRating(ctx context.Context, email string) (domain.ReviewStats, error) {
	return m.CachedResp, nil
}

func (m *mockRatingService) ReviewsForSubject(ctx context.Context, email string) ([]*domain.Review, error) {
	return nil, nil
}

func (m *mockRatingService) ReconcileProfile(ctx context.Context, email string) (domain.ReviewStats, error) {
	return m.LiveResp, nil
}

type mockProfileService struct {
	RegisterResp *domain.Profile
	RegisterErr  error
	GetResp      *domain.Profile
	GetErr       error
	ListResp     *service.ProfilePage
}

func (m *mockProfileService) Register(ctx context.Context, req *dto.RegisterProfileRequest) (*domain.Profile, error) {
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}
	return m.RegisterResp, nil
}

func (m *mockProfileService) GetWithRating(ctx context.Context, email string) (*domain.Profile, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.GetResp, nil
}

func (m *mockProfileService) List(ctx context.Context, filter string, page, pageSize int64) (*service.ProfilePage, error) {
	return m.ListResp, nil
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, email string, req *dto.UpdateProfileRequest) error {
	return nil
}

func setupRouter(ratings service.RatingService, profiles service.ProfileService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	reviewHandler := NewReviewHandler(ratings)
	profileHandler := NewProfileHandler(profiles, ratings)
	profileHandler.RegisterRoutes(router, reviewHandler)
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Envelope {
	t.Helper()
	var env dto.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope json: %v", err)
	}
	return env
}

func TestSubmitReviewSuccessEnvelope(t *testing.T) {
	ratings := &mockRatingService{
		SubmitResp: &domain.Review{
			ID:            "r1",
			ReviewerEmail: "a@b.com",
			ReceiverEmail: "c@d.com",
			Rating:        5,
			CreatedAt:     time.Now(),
		},
	}
	router := setupRouter(ratings, &mockProfileService{})

	body := `{"receiverEmail":"c@d.com","rating":5}`
	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Reviewer-Email", "a@b.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success || env.Message != "Successfully done" || env.Data == nil {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestSubmitReviewMissingIdentityHeader(t *testing.T) {
	router := setupRouter(&mockRatingService{}, &mockProfileService{})

	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"rating":5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSubmitReviewValidationFailure(t *testing.T) {
	ratings := &mockRatingService{
		SubmitErr: &domain.ValidationError{Field: "rating", Reason: "required"},
	}
	router := setupRouter(ratings, &mockProfileService{})

	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"receiverEmail":"c@d.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Reviewer-Email", "a@b.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success {
		t.Fatalf("validation failure must not be success: %+v", env)
	}
}

func TestGetProfileNotFoundEnvelope(t *testing.T) {
	profiles := &mockProfileService{
		GetErr: &domain.NotFoundError{Resource: "profile", Key: "nobody@x.com"},
	}
	router := setupRouter(&mockRatingService{}, profiles)

	req := httptest.NewRequest(http.MethodGet, "/users/nobody@x.com", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Not-found is success:false with null data, not an error status.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for not-found, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Data != nil {
		t.Fatalf("expected success:false with null data, got %+v", env)
	}
}

func TestRegisterDuplicateMessage(t *testing.T) {
	profiles := &mockProfileService{
		RegisterErr: &domain.ValidationError{Field: "email", Reason: "already registered"},
	}
	router := setupRouter(&mockRatingService{}, profiles)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Message != "User already exists" {
		t.Fatalf("expected duplicate-user envelope, got %+v", env)
	}
}

func TestListProfilesEnvelopeCarriesTotal(t *testing.T) {
	profiles := &mockProfileService{
		ListResp: &service.ProfilePage{
			Items: []*domain.Profile{{ID: "1", Email: "a@b.com", FirstName: "Alice"}},
			Total: 45,
			Page:  1,
		},
	}
	router := setupRouter(&mockRatingService{}, profiles)

	req := httptest.NewRequest(http.MethodGet, "/users?searchTerm=ali&page=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool                    `json:"success"`
		Data    dto.ProfilePageResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if !resp.Success || resp.Data.Total != 45 || len(resp.Data.Items) != 1 {
		t.Fatalf("unexpected page response: %+v", resp)
	}
}

func TestCachedRatingGuardsDivideByZero(t *testing.T) {
	router := setupRouter(&mockRatingService{}, &mockProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/users/nobody@x.com/rating", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool                    `json:"success"`
		Data    dto.RatingStatsResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if !resp.Success || resp.Data.AverageRating != 0 || resp.Data.TotalReviews != 0 {
		t.Fatalf("expected zero stats, got %+v", resp)
	}
}
