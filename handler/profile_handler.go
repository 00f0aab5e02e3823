package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
	"github.com/annazecevic/profile-service/logger"
	"github.com/annazecevic/profile-service/middleware"
	"github.com/annazecevic/profile-service/service"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles service.ProfileService
	ratings  service.RatingService
}

func NewProfileHandler(profiles service.ProfileService, ratings service.RatingService) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		ratings:  ratings,
	}
}

// POST /users
func (h *ProfileHandler) Register(c *gin.Context) {
	var req dto.RegisterProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(logger.EventValidationFailure, "Invalid registration request", logger.Fields(
			"error", err.Error(),
		))
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Message: "invalid request body"})
		return
	}

	profile, err := h.profiles.Register(c.Request.Context(), &req)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) && validation.Field == "email" && validation.Reason == "already registered" {
			c.JSON(http.StatusOK, dto.Envelope{Success: false, Message: "User already exists"})
			return
		}
		respondError(c, err)
		return
	}

	respondOK(c, "Successfully done", toProfileResponse(profile))
}

// GET /users?searchTerm=&page=&pageSize=
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	searchTerm := c.Query("searchTerm")
	page := parseQueryInt(c, "page", 1)
	pageSize := parseQueryInt(c, "pageSize", 20)

	result, err := h.profiles.List(c.Request.Context(), searchTerm, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.ProfileResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toProfileResponse(p))
	}

	respondOK(c, "", dto.ProfilePageResponse{
		Items: items,
		Total: result.Total,
		Page:  result.Page,
	})
}

// GET /users/:email
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	email := c.Param("email")

	profile, err := h.profiles.GetWithRating(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", toProfileResponse(profile))
}

// PUT /users?email=
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Message: "email is required"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Message: "invalid request body"})
		return
	}

	if err := h.profiles.UpdateProfile(c.Request.Context(), email, &req); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Successfully done", nil)
}

func toProfileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		TotalRating:   p.TotalRating,
		Reviewer:      p.Reviewer,
		AverageRating: p.AverageRating(),
		CreatedAt:     p.CreatedAt,
	}
}

func parseQueryInt(c *gin.Context, key string, fallback int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// RegisterRoutes wires all endpoints onto the router.
func (h *ProfileHandler) RegisterRoutes(router *gin.Engine, reviews *ReviewHandler) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.Envelope{Success: true})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", h.ListProfiles)
		users.PUT("", h.UpdateProfile)
		users.GET("/:email", h.GetProfile)
		users.GET("/:email/rating", reviews.GetCachedRating)
		users.POST("/:email/reconcile", reviews.ReconcileProfile)
	}

	reviewRoutes := router.Group("/reviews")
	{
		reviewRoutes.POST("", middleware.IdentityMiddleware(), reviews.SubmitReview)
		reviewRoutes.GET("/:email", reviews.ListReviewsForSubject)
		reviewRoutes.GET("/:email/average", reviews.GetLiveRating)
	}
}
