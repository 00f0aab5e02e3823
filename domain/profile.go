package domain

import "time"

// Profile is a rated subject keyed by email. TotalRating and Reviewer
// are denormalized counters kept in sync with the review log on a
// best-effort basis; they may drift and can be recomputed from the log.
type Profile struct {
	ID          string    `bson:"id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	FirstName   string    `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string    `bson:"lastName,omitempty" json:"lastName,omitempty"`
	TotalRating float64   `bson:"totalRating" json:"totalRating"`
	Reviewer    int64     `bson:"reviewer" json:"reviewer"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AverageRating derives the mean rating from the counters, 0 when the
// profile has no reviews.
func (p *Profile) AverageRating() float64 {
	if p.Reviewer == 0 {
		return 0
	}
	return p.TotalRating / float64(p.Reviewer)
}
