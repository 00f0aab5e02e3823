package handler

import (
	"net/http"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
	"github.com/annazecevic/profile-service/logger"
	"github.com/annazecevic/profile-service/service"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service service.RatingService
}

func NewReviewHandler(service service.RatingService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// POST /reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid review request", logger.Fields(
			"error", err.Error(),
		))
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Message: "invalid request, rating must be a number"})
		return
	}

	// The identity middleware sets reviewer_email when the header is
	// present; the body value wins only if the header is missing.
	if reviewer := c.GetString("reviewer_email"); reviewer != "" {
		req.ReviewerEmail = reviewer
	}

	review, err := h.service.SubmitReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Successfully done", toReviewResponse(review))
}

// GET /reviews/:email
func (h *ReviewHandler) ListReviewsForSubject(c *gin.Context) {
	email := c.Param("email")

	reviews, err := h.service.ReviewsForSubject(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, toReviewResponse(r))
	}

	respondOK(c, "", response)
}

// GET /reviews/:email/average
func (h *ReviewHandler) GetLiveRating(c *gin.Context) {
	email := c.Param("email")

	stats, err := h.service.LiveRating(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", toStatsResponse(email, stats))
}

// POST /users/:email/reconcile
func (h *ReviewHandler) ReconcileProfile(c *gin.Context) {
	email := c.Param("email")

	stats, err := h.service.ReconcileProfile(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Counters reconciled", toStatsResponse(email, stats))
}

// GET /users/:email/rating
func (h *ReviewHandler) GetCachedRating(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Message: "email is required"})
		return
	}

	stats, err := h.service.CachedRating(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", toStatsResponse(email, stats))
}

func toReviewResponse(r *domain.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:            r.ID,
		ReviewerEmail: r.ReviewerEmail,
		ReceiverEmail: r.ReceiverEmail,
		Rating:        r.Rating,
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt,
	}
}

func toStatsResponse(email string, stats domain.ReviewStats) dto.RatingStatsResponse {
	return dto.RatingStatsResponse{
		Email:         email,
		AverageRating: stats.AverageRating,
		TotalReviews:  stats.TotalReviews,
	}
}
