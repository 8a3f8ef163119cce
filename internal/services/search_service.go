package services

import (
	"context"
	"time"

	"workhours/internal/domain"
	"workhours/internal/reporting"
	"workhours/internal/repository/sqlite"
	"workhours/internal/tenancy"
	"workhours/internal/validation"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	repo         sqlite.Repository
	clock        reporting.Clock
	mapper       *domain.IntervalMapper
	searchMapper *domain.SearchOptionsMapper
	validator    *validation.IntervalValidator
	strictScope  bool
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo sqlite.Repository, settings Settings) SearchService {
	settings = settings.withDefaults()
	return &searchServiceImpl{
		repo:         repo,
		clock:        settings.Clock,
		mapper:       domain.NewIntervalMapper(),
		searchMapper: domain.NewSearchOptionsMapper(),
		validator:    validation.NewIntervalValidator(settings.Validator),
		strictScope:  settings.StrictScope,
	}
}

// SearchIntervals returns the intervals in scope matching query, oldest
// first, with owner and project names resolved.
func (s *searchServiceImpl) SearchIntervals(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, query domain.IntervalQuery) ([]IntervalView, error) {
	if err := s.validator.ValidateQuery(query); err != nil {
		return nil, err
	}
	effective, err := tenancy.EffectiveScope(actor, scope)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.SearchIntervals(ctx, effective, s.searchMapper.ToDatabase(query))
	if err != nil {
		return nil, err
	}
	intervals := s.mapper.FromDatabaseSlice(rows)
	if s.strictScope {
		if err := reporting.VerifyScope(intervals, effective); err != nil {
			return nil, err
		}
	}

	names, err := loadNames(ctx, s.repo, effective, true)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]IntervalView, 0, len(intervals))
	for _, iv := range intervals {
		d, err := iv.Duration(now)
		if err != nil {
			return nil, err
		}
		view := IntervalView{
			Interval:  iv,
			OwnerName: names.owner(iv.OwnerID),
			Seconds:   int64(d / time.Second),
			Duration:  FormatDuration(d),
		}
		if iv.ProjectID != nil {
			view.ProjectName = names.project(*iv.ProjectID)
		}
		views = append(views, view)
	}
	return views, nil
}

// CountIntervals counts the intervals in scope matching query, ignoring its
// limit.
func (s *searchServiceImpl) CountIntervals(ctx context.Context, actor tenancy.Actor, scope *tenancy.TenantScope, query domain.IntervalQuery) (int64, error) {
	if err := s.validator.ValidateQuery(query); err != nil {
		return 0, err
	}
	effective, err := tenancy.EffectiveScope(actor, scope)
	if err != nil {
		return 0, err
	}
	query.Limit = 0
	return s.repo.CountIntervals(ctx, effective, s.searchMapper.ToDatabase(query))
}

// nameIndex resolves owner and project ids to display names.
type nameIndex struct {
	owners   map[int64]sqlite.Owner
	projects map[int64]string
}

func loadNames(ctx context.Context, repo sqlite.Repository, scope tenancy.TenantScope, withProjects bool) (*nameIndex, error) {
	owners, err := repo.ListOwners(ctx, scope)
	if err != nil {
		return nil, err
	}
	idx := &nameIndex{
		owners:   make(map[int64]sqlite.Owner, len(owners)),
		projects: make(map[int64]string),
	}
	for _, o := range owners {
		idx.owners[o.ID] = *o
	}
	if !withProjects {
		return idx, nil
	}

	projects, err := repo.ListProjects(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		idx.projects[p.ID] = p.Name
	}
	return idx, nil
}

func (n *nameIndex) owner(id int64) string {
	if o, ok := n.owners[id]; ok {
		return o.Name
	}
	return "Unknown"
}

func (n *nameIndex) project(id int64) string {
	if id == reporting.NoProject {
		return "(no project)"
	}
	if name, ok := n.projects[id]; ok {
		return name
	}
	return "Unknown"
}

func (n *nameIndex) rate(id int64) int64 {
	return n.owners[id].HourlyRateCents
}
