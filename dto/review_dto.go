package dto

import "time"

// SubmitReviewRequest carries one rating event. Rating is a pointer so
// a missing field can be told apart from an explicit zero.
type SubmitReviewRequest struct {
	ReviewerEmail string   `json:"reviewerEmail"`
	ReceiverEmail string   `json:"receiverEmail"`
	Rating        *float64 `json:"rating"`
	Comment       string   `json:"comment,omitempty"`
}

type ReviewResponse struct {
	ID            string    `json:"id"`
	ReviewerEmail string    `json:"reviewerEmail"`
	ReceiverEmail string    `json:"receiverEmail"`
	Rating        float64   `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type RatingStatsResponse struct {
	Email         string  `json:"email"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}
