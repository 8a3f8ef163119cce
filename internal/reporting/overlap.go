package reporting

import (
	"time"

	"workhours/internal/domain"
)

// OverlapSeconds returns the whole seconds interval iv shares with period p:
//
//	max(0, min(effectiveEnd, p.End) - max(iv.Start, p.Start))
//
// Instants are floored to the second before subtracting, so the overlaps of
// one interval with contiguous periods telescope to its exact duration.
// Running intervals resolve their end to now and are not stable between
// calls.
func OverlapSeconds(iv domain.Interval, p domain.Period, now time.Time) (int64, error) {
	end, err := domain.EffectiveEnd(iv, now)
	if err != nil {
		return 0, err
	}
	return overlapUnix(iv.Start.Unix(), end.Unix(), p.Start.Unix(), p.End.Unix()), nil
}

func overlapUnix(start, end, periodStart, periodEnd int64) int64 {
	lo := max(start, periodStart)
	hi := min(end, periodEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Overlaps splits one interval across periods and returns the non-zero
// pieces in period order. Periods must be ordered and contiguous.
func Overlaps(iv domain.Interval, periods []domain.Period, now time.Time) ([]domain.OverlapResult, error) {
	end, err := domain.EffectiveEnd(iv, now)
	if err != nil {
		return nil, err
	}
	var results []domain.OverlapResult
	visitCandidates(periods, iv.Start, end, func(i int) {
		p := periods[i]
		if s := overlapUnix(iv.Start.Unix(), end.Unix(), p.Start.Unix(), p.End.Unix()); s > 0 {
			results = append(results, domain.OverlapResult{IntervalID: iv.ID, Period: p, PeriodIndex: i, Seconds: s})
		}
	})
	return results, nil
}
