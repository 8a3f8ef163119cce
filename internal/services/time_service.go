package services

import (
	"context"
	"fmt"
	"time"

	"workhours/internal/domain"
	"workhours/internal/errors"
	"workhours/internal/logging"
	"workhours/internal/reporting"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
	"workhours/internal/validation"
)

// timerServiceImpl implements the TimerService interface
type timerServiceImpl struct {
	repo      sqlite.Repository
	clock     reporting.Clock
	mapper    *domain.IntervalMapper
	validator *validation.IntervalValidator
}

// NewTimerService creates a new TimerService instance
func NewTimerService(repo sqlite.Repository, settings Settings) TimerService {
	settings = settings.withDefaults()
	return &timerServiceImpl{
		repo:      repo,
		clock:     settings.Clock,
		mapper:    domain.NewIntervalMapper(),
		validator: validation.NewIntervalValidator(settings.Validator),
	}
}

// now is truncated to the second because that is what storage keeps.
func (t *timerServiceImpl) now() time.Time {
	return t.clock.Now().UTC().Truncate(time.Second)
}

// Start opens a running interval for the owner after stopping the owner's
// current one. The interval belongs to the owner's tenant.
func (t *timerServiceImpl) Start(ctx context.Context, actor tenancy.Actor, req StartRequest) (*domain.Interval, error) {
	owner, err := ownerFor(ctx, t.repo, actor, req.OwnerID)
	if err != nil {
		return nil, err
	}
	ownerScope := tenancy.FromRecord(owner.TenantID)
	if err := t.checkProject(ctx, ownerScope, req.ProjectID); err != nil {
		return nil, err
	}

	now := t.now()
	interval := domain.NewInterval(owner.ID, owner.TenantID, now)
	interval.ProjectID = req.ProjectID
	interval.Note = req.Note
	if err := t.validator.ValidateInterval(interval, now); err != nil {
		return nil, err
	}

	row := t.mapper.ToDatabase(interval)
	stopped, err := t.repo.StartInterval(ctx, ownerScope, &row)
	if err != nil {
		return nil, err
	}
	for _, s := range stopped {
		logging.Debugf("stopped interval %d for owner %d", s.ID, s.OwnerID)
	}
	created := t.mapper.FromDatabase(row)
	logging.Debugf("started interval %d for owner %d in %s", created.ID, created.OwnerID, domain.TenantLabel(created.TenantID))
	return &created, nil
}

// Stop closes the owner's running interval
func (t *timerServiceImpl) Stop(ctx context.Context, actor tenancy.Actor, ownerID *int64) (*domain.Interval, error) {
	owner, err := ownerFor(ctx, t.repo, actor, ownerID)
	if err != nil {
		return nil, err
	}
	stopped, err := t.stopRunning(ctx, tenancy.FromRecord(owner.TenantID), owner.ID, t.now())
	if err != nil {
		return nil, err
	}
	if len(stopped) == 0 {
		return nil, errors.NewNotFoundError("running interval", fmt.Sprintf("owner %d", owner.ID))
	}
	last := stopped[len(stopped)-1]
	return &last, nil
}

// Add records a finished interval
func (t *timerServiceImpl) Add(ctx context.Context, actor tenancy.Actor, req AddRequest) (*domain.Interval, error) {
	owner, err := ownerFor(ctx, t.repo, actor, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := t.checkProject(ctx, tenancy.FromRecord(owner.TenantID), req.ProjectID); err != nil {
		return nil, err
	}

	interval := domain.NewInterval(owner.ID, owner.TenantID, req.Start.UTC().Truncate(time.Second))
	interval = interval.Stop(req.End.UTC().Truncate(time.Second))
	interval.ProjectID = req.ProjectID
	interval.Note = req.Note
	return t.create(ctx, interval, t.now())
}

// Delete removes a whole interval visible to the actor
func (t *timerServiceImpl) Delete(ctx context.Context, actor tenancy.Actor, id int64) error {
	scope, err := tenancy.EffectiveScope(actor, nil)
	if err != nil {
		return err
	}
	return t.repo.DeleteInterval(ctx, scope, id)
}

// Current returns the owner's running interval, or nil when there is none
func (t *timerServiceImpl) Current(ctx context.Context, actor tenancy.Actor, ownerID *int64) (*domain.Interval, error) {
	owner, err := ownerFor(ctx, t.repo, actor, ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := t.repo.SearchIntervals(ctx, tenancy.FromRecord(owner.TenantID), sqlite.SearchOptions{
		OwnerID:     &owner.ID,
		RunningOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	current := t.mapper.FromDatabase(*rows[len(rows)-1])
	return &current, nil
}

func (t *timerServiceImpl) create(ctx context.Context, interval domain.Interval, now time.Time) (*domain.Interval, error) {
	if err := t.validator.ValidateInterval(interval, now); err != nil {
		return nil, err
	}
	row := t.mapper.ToDatabase(interval)
	if err := t.repo.CreateInterval(ctx, &row); err != nil {
		return nil, err
	}
	created := t.mapper.FromDatabase(row)
	logging.Debugf("created interval %d for owner %d in %s", created.ID, created.OwnerID, domain.TenantLabel(created.TenantID))
	return &created, nil
}

func (t *timerServiceImpl) checkProject(ctx context.Context, scope tenancy.TenantScope, projectID *int64) error {
	if projectID == nil {
		return nil
	}
	_, err := t.repo.GetProject(ctx, scope, *projectID)
	return err
}

// stopRunning closes every running interval of the owner at now. A running
// interval that starts after now is closed at its start.
func (t *timerServiceImpl) stopRunning(ctx context.Context, scope tenancy.TenantScope, ownerID int64, now time.Time) ([]domain.Interval, error) {
	rows, err := t.repo.SearchIntervals(ctx, scope, sqlite.SearchOptions{OwnerID: &ownerID, RunningOnly: true})
	if err != nil {
		return nil, err
	}

	stopped := make([]domain.Interval, 0, len(rows))
	for _, row := range rows {
		end := now
		if end.Before(row.StartTime) {
			end = row.StartTime
		}
		row.EndTime = &end
		if err := t.repo.UpdateInterval(ctx, scope, row); err != nil {
			return nil, err
		}
		stopped = append(stopped, t.mapper.FromDatabase(*row))
	}
	return stopped, nil
}

// FormatDuration formats a duration into human-readable string
func FormatDuration(duration time.Duration) string {
	if duration < 0 {
		return "0h 0m"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatSeconds formats a number of seconds like FormatDuration
func FormatSeconds(seconds int64) string {
	return FormatDuration(time.Duration(seconds) * time.Second)
}
