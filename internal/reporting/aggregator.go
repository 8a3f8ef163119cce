package reporting

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"workhours/internal/domain"
	"workhours/internal/errors"
)

// NoProject is the project key for intervals without a project.
const NoProject int64 = 0

// OwnerKey addresses one (period, owner) bucket. Period is an index into
// Totals.Periods.
type OwnerKey struct {
	Period  int
	OwnerID int64
}

// ProjectKey addresses one (period, owner, project) bucket.
type ProjectKey struct {
	Period    int
	OwnerID   int64
	ProjectID int64
}

// Totals holds aggregated seconds. Totals built over a range containing
// "now" are a snapshot and are not guaranteed repeatable.
type Totals struct {
	Periods   []domain.Period
	ByOwner   map[OwnerKey]int64
	ByProject map[ProjectKey]int64
	Intervals int
}

func newTotals(periods []domain.Period) *Totals {
	return &Totals{
		Periods:   periods,
		ByOwner:   make(map[OwnerKey]int64),
		ByProject: make(map[ProjectKey]int64),
	}
}

// Seconds returns the total for one owner in one period.
func (t *Totals) Seconds(period int, ownerID int64) int64 {
	return t.ByOwner[OwnerKey{Period: period, OwnerID: ownerID}]
}

// PeriodSeconds returns the total across owners for one period.
func (t *Totals) PeriodSeconds(period int) int64 {
	var sum int64
	for k, v := range t.ByOwner {
		if k.Period == period {
			sum += v
		}
	}
	return sum
}

// OwnerSeconds returns the total across periods for one owner.
func (t *Totals) OwnerSeconds(ownerID int64) int64 {
	var sum int64
	for k, v := range t.ByOwner {
		if k.OwnerID == ownerID {
			sum += v
		}
	}
	return sum
}

// Total returns the grand total.
func (t *Totals) Total() int64 {
	var sum int64
	for _, v := range t.ByOwner {
		sum += v
	}
	return sum
}

// OwnerIDs returns the owners with any time, ascending.
func (t *Totals) OwnerIDs() []int64 {
	seen := make(map[int64]struct{})
	for k := range t.ByOwner {
		seen[k.OwnerID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ProjectRows returns the project breakdown ordered by period, owner, project.
func (t *Totals) ProjectRows() []ProjectRow {
	rows := make([]ProjectRow, 0, len(t.ByProject))
	for k, v := range t.ByProject {
		rows = append(rows, ProjectRow{ProjectKey: k, Seconds: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].ProjectKey, rows[j].ProjectKey
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.OwnerID != b.OwnerID {
			return a.OwnerID < b.OwnerID
		}
		return a.ProjectID < b.ProjectID
	})
	return rows
}

// ProjectRow is one entry of the project breakdown.
type ProjectRow struct {
	ProjectKey
	Seconds int64
}

func (t *Totals) merge(other *Totals) {
	for k, v := range other.ByOwner {
		t.ByOwner[k] += v
	}
	for k, v := range other.ByProject {
		t.ByProject[k] += v
	}
	t.Intervals += other.Intervals
}

// Aggregator folds interval overlaps into per-period totals. Its input must
// already be tenant-scoped: it does not re-check tenant identity.
type Aggregator struct {
	clock Clock
}

// NewAggregator creates an aggregator reading "now" from clock.
func NewAggregator(clock Clock) *Aggregator {
	if clock == nil {
		clock = SystemClock
	}
	return &Aggregator{clock: clock}
}

// Aggregate computes totals keyed by (period, owner) and
// (period, owner, project). Malformed intervals fail the whole call.
func (a *Aggregator) Aggregate(intervals []domain.Interval, periods []domain.Period) (*Totals, error) {
	if err := ValidatePeriods(periods); err != nil {
		return nil, err
	}
	totals := newTotals(periods)
	if err := accumulate(totals, intervals, a.clock.Now()); err != nil {
		return nil, err
	}
	return totals, nil
}

// AggregateContext is Aggregate with the intervals sharded across workers.
// Buckets are independent, so partial totals merge without ordering.
func (a *Aggregator) AggregateContext(ctx context.Context, intervals []domain.Interval, periods []domain.Period, workers int) (*Totals, error) {
	if err := ValidatePeriods(periods); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(intervals) {
		workers = max(len(intervals), 1)
	}

	now := a.clock.Now()
	partials := make([]*Totals, workers)
	chunk := (len(intervals) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := min(w*chunk, len(intervals))
		hi := min(lo+chunk, len(intervals))
		partials[w] = newTotals(periods)
		part := partials[w]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return accumulate(part, intervals[lo:hi], now)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := newTotals(periods)
	for _, part := range partials {
		totals.merge(part)
	}
	return totals, nil
}

func accumulate(totals *Totals, intervals []domain.Interval, now time.Time) error {
	for _, iv := range intervals {
		pieces, err := Overlaps(iv, totals.Periods, now)
		if err != nil {
			return err
		}
		projectID := NoProject
		if iv.ProjectID != nil {
			projectID = *iv.ProjectID
		}
		for _, piece := range pieces {
			totals.ByOwner[OwnerKey{Period: piece.PeriodIndex, OwnerID: iv.OwnerID}] += piece.Seconds
			totals.ByProject[ProjectKey{Period: piece.PeriodIndex, OwnerID: iv.OwnerID, ProjectID: projectID}] += piece.Seconds
		}
		totals.Intervals++
	}
	return nil
}

// visitCandidates calls fn for each period whose range intersects
// [start, end). This is a range pre-filter only; callers still compute the
// overlap.
func visitCandidates(periods []domain.Period, start, end time.Time, fn func(i int)) {
	first := sort.Search(len(periods), func(i int) bool {
		return periods[i].End.After(start)
	})
	for i := first; i < len(periods) && periods[i].Intersects(start, end); i++ {
		fn(i)
	}
}

// ValidatePeriods checks that periods are non-empty buckets laid end to end.
func ValidatePeriods(periods []domain.Period) error {
	for i, p := range periods {
		if p.Length() <= 0 {
			return errors.NewInvalidRangeError(p.Start, p.End, "period start must be before end")
		}
		if i > 0 && !periods[i-1].End.Equal(p.Start) {
			return errors.NewInvalidRangeError(periods[i-1].End, p.Start, "periods must be contiguous")
		}
	}
	return nil
}
