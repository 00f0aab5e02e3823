package domain

import "time"

// Review is one immutable rating event in the append-only log.
// Reviews are never updated or deleted; the profile counters are
// derived from them.
type Review struct {
	ID            string    `bson:"id" json:"id"`
	ReviewerEmail string    `bson:"reviewerEmail" json:"reviewerEmail"`
	ReceiverEmail string    `bson:"receiverEmail" json:"receiverEmail"`
	Rating        float64   `bson:"rating" json:"rating"`
	Comment       string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// ReviewStats is the aggregate view over a subject's reviews, either
// computed live from the log or read from the profile counters.
type ReviewStats struct {
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
	TotalRating   float64 `bson:"totalRating" json:"totalRating"`
	TotalReviews  int64   `bson:"totalReviews" json:"totalReviews"`
}
