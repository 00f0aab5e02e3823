package dto

import "time"

// Envelope is the response shape expected by existing consumers of the
// service. Every endpoint answers with it.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type RegisterProfileRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

type ProfileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	TotalRating   float64   `json:"totalRating"`
	Reviewer      int64     `json:"reviewer"`
	AverageRating float64   `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ProfilePageResponse struct {
	Items []ProfileResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int64             `json:"page"`
}
