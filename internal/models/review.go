package models

import "time"

// Review is a user's rating of a mechanic. At most one exists per
// (user, mechanic) pair; resubmission updates in place.
type Review struct {
	ID         string
	UserID     string
	MechanicID string
	Rating     int // 1..5
	Comment    string
	CreatedAt  time.Time
}

// ReviewWithAuthor carries the reviewer's display identity alongside the
// review for listings.
type ReviewWithAuthor struct {
	Review
	AuthorUsername string
	AuthorFullName string
}

// ReviewSummary is a mechanic's review list with its computed average.
type ReviewSummary struct {
	Reviews       []*ReviewWithAuthor
	TotalReviews  int
	AverageRating float64 // mean rounded to one decimal, 0.0 with no reviews
}
