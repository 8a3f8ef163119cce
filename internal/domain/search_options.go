package domain

import "time"

// IntervalQuery represents search criteria for intervals. It mirrors the
// database search options but belongs to the domain layer. From/To select
// intervals that intersect [From, To); running intervals intersect when they
// started before To.
type IntervalQuery struct {
	OwnerID     *int64
	ProjectID   *int64
	From        *time.Time
	To          *time.Time
	RunningOnly bool
	Limit       int
}
