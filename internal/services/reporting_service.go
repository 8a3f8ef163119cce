package services

import (
	"context"
	"math"
	"time"

	"workhours/internal/domain"
	"workhours/internal/errors"
	"workhours/internal/reporting"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo        sqlite.Repository
	clock       reporting.Clock
	aggregator  *reporting.Aggregator
	mapper      *domain.IntervalMapper
	tenants     *domain.TenantMapper
	defaultLoc  *time.Location
	strictScope bool
	workers     int
	observer    UseCaseObserver
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo sqlite.Repository, settings Settings) ReportingService {
	settings = settings.withDefaults()
	return &reportingServiceImpl{
		repo:        repo,
		clock:       settings.Clock,
		aggregator:  reporting.NewAggregator(settings.Clock),
		mapper:      domain.NewIntervalMapper(),
		tenants:     domain.NewTenantMapper(),
		defaultLoc:  settings.DefaultLocation,
		strictScope: settings.StrictScope,
		workers:     settings.Workers,
		observer:    settings.Observer,
	}
}

// aggregation is the intermediate result shared by every report flavour.
type aggregation struct {
	scope     tenancy.TenantScope
	location  *time.Location
	intervals []domain.Interval
	totals    *reporting.Totals
	names     *nameIndex
}

// BuildReport aggregates the intervals visible to the actor into the
// requested periods.
func (r *reportingServiceImpl) BuildReport(ctx context.Context, actor tenancy.Actor, req ReportRequest) (*Report, error) {
	started := time.Now()
	report, err := r.buildReport(ctx, actor, req)

	event := UseCaseEvent{
		Name:      "report_built",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		StartedAt: started,
		Fields:    map[string]any{"kind": string(req.Kind), "by_project": req.ByProject},
	}
	if report != nil {
		event.Fields["scope"] = report.Scope.String()
		event.Fields["periods"] = len(report.Periods)
		event.Fields["intervals"] = report.Intervals
		event.Fields["total_seconds"] = report.TotalSeconds
	}
	r.observer.ObserveUseCase(ctx, event)
	return report, err
}

func (r *reportingServiceImpl) buildReport(ctx context.Context, actor tenancy.Actor, req ReportRequest) (*Report, error) {
	agg, err := r.aggregate(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Scope:        agg.scope,
		Location:     agg.location,
		Periods:      agg.totals.Periods,
		Rows:         make([]ReportRow, 0),
		TotalSeconds: agg.totals.Total(),
		Intervals:    agg.totals.Intervals,
		ByProject:    req.ByProject,
		GeneratedAt:  r.clock.Now(),
	}

	if req.ByProject {
		for _, row := range agg.totals.ProjectRows() {
			report.Rows = append(report.Rows, ReportRow{
				Period:      agg.totals.Periods[row.Period],
				OwnerID:     row.OwnerID,
				OwnerName:   agg.names.owner(row.OwnerID),
				ProjectID:   row.ProjectID,
				ProjectName: agg.names.project(row.ProjectID),
				Seconds:     row.Seconds,
			})
		}
		return report, nil
	}

	owners := agg.totals.OwnerIDs()
	for i, period := range agg.totals.Periods {
		for _, ownerID := range owners {
			seconds := agg.totals.Seconds(i, ownerID)
			if seconds == 0 {
				continue
			}
			report.Rows = append(report.Rows, ReportRow{
				Period:    period,
				OwnerID:   ownerID,
				OwnerName: agg.names.owner(ownerID),
				Seconds:   seconds,
			})
		}
	}
	return report, nil
}

// Payroll rolls the report up into pay per owner and period. Gross pay is
// rounded half up to the cent.
func (r *reportingServiceImpl) Payroll(ctx context.Context, actor tenancy.Actor, req ReportRequest) ([]PayrollLine, error) {
	req.ByProject = false
	agg, err := r.aggregate(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	lines := make([]PayrollLine, 0)
	owners := agg.totals.OwnerIDs()
	for i, period := range agg.totals.Periods {
		for _, ownerID := range owners {
			seconds := agg.totals.Seconds(i, ownerID)
			if seconds == 0 {
				continue
			}
			rate := agg.names.rate(ownerID)
			lines = append(lines, PayrollLine{
				Period:          period,
				OwnerID:         ownerID,
				OwnerName:       agg.names.owner(ownerID),
				Seconds:         seconds,
				Hours:           SecondsToHours(seconds),
				HourlyRateCents: rate,
				GrossCents:      GrossCents(seconds, rate),
			})
		}
	}
	return lines, nil
}

// GetDayStatistics returns summary statistics for the calendar day containing
// date, in the scope's time zone. Intervals crossing midnight only count the
// part inside the day.
func (r *reportingServiceImpl) GetDayStatistics(ctx context.Context, actor tenancy.Actor, date time.Time) (*DayStatistics, error) {
	agg, err := r.aggregate(ctx, actor, ReportRequest{Kind: domain.PeriodDay, Anchor: &date, Count: 1})
	if err != nil {
		return nil, err
	}

	running := 0
	for _, iv := range agg.intervals {
		if iv.IsRunning() {
			running++
		}
	}
	total := agg.totals.Total()
	return &DayStatistics{
		Date:          agg.totals.Periods[0].Start,
		TotalSeconds:  total,
		TotalTime:     FormatSeconds(total),
		OwnerCount:    len(agg.totals.OwnerIDs()),
		IntervalCount: len(agg.intervals),
		RunningCount:  running,
	}, nil
}

// GetTodayStatistics returns summary statistics for today
func (r *reportingServiceImpl) GetTodayStatistics(ctx context.Context, actor tenancy.Actor) (*DayStatistics, error) {
	return r.GetDayStatistics(ctx, actor, r.clock.Now())
}

// aggregate resolves scope and time zone, loads only the intervals that can
// touch the periods, optionally re-checks their tenant and aggregates them.
func (r *reportingServiceImpl) aggregate(ctx context.Context, actor tenancy.Actor, req ReportRequest) (*aggregation, error) {
	scope, err := tenancy.EffectiveScope(actor, req.Scope)
	if err != nil {
		return nil, err
	}
	loc, err := r.location(ctx, scope)
	if err != nil {
		return nil, err
	}

	anchor := r.clock.Now()
	if req.Anchor != nil {
		anchor = *req.Anchor
	}
	periods, err := reporting.BuildPeriods(reporting.PeriodRequest{
		Kind:     req.Kind,
		Anchor:   anchor,
		Location: loc,
		Start:    req.From,
		End:      req.To,
		Count:    req.Count,
	})
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, errors.NewInvalidRangeError(anchor, anchor, "request produced no periods")
	}

	from, to := periods[0].Start, periods[len(periods)-1].End
	rows, err := r.repo.SearchIntervals(ctx, scope, sqlite.SearchOptions{
		OwnerID:   req.OwnerID,
		ProjectID: req.ProjectID,
		From:      &from,
		To:        &to,
	})
	if err != nil {
		return nil, err
	}
	intervals := r.mapper.FromDatabaseSlice(rows)

	if r.strictScope {
		if err := reporting.VerifyScope(intervals, scope); err != nil {
			return nil, err
		}
	}

	totals, err := r.aggregator.AggregateContext(ctx, intervals, periods, r.workers)
	if err != nil {
		return nil, err
	}
	names, err := loadNames(ctx, r.repo, scope, req.ByProject)
	if err != nil {
		return nil, err
	}

	return &aggregation{
		scope:     scope,
		location:  loc,
		intervals: intervals,
		totals:    totals,
		names:     names,
	}, nil
}

// location returns the time zone period boundaries are computed in: the
// tenant's own zone for a single tenant, the configured default otherwise.
func (r *reportingServiceImpl) location(ctx context.Context, scope tenancy.TenantScope) (*time.Location, error) {
	id, ok := scope.TenantID()
	if !ok {
		return r.defaultLoc, nil
	}
	row, err := r.repo.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.tenants.FromDatabase(*row).Location(r.defaultLoc)
}

// SecondsToHours converts seconds to decimal hours rounded to two places
func SecondsToHours(seconds int64) float64 {
	return math.Round(float64(seconds)/36) / 100
}

// GrossCents returns the pay for seconds at an hourly rate, rounded half up
func GrossCents(seconds, hourlyRateCents int64) int64 {
	return (seconds*hourlyRateCents + 1800) / 3600
}
