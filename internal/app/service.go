package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/vitui/internal/domain"
)

// DefaultPerPage is the page size used when the config leaves it unset.
const DefaultPerPage = 50

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	ProjectID int64
	PerPage   int
	WebURL    string
}

// Service represents service data used by this package.
type Service struct {
	tracker   Tracker
	logger    Logger
	clock     Clock
	projectID int64
	perPage   int
	webURL    string
}

// Clock returns the current time.
type Clock func() time.Time

// NewService constructs a new value for this package.
func NewService(tracker Tracker, logger Logger, clock Clock, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = nopLogger{}
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.ProjectID <= 0 {
		cfg.ProjectID = 1
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	return &Service{
		tracker:   tracker,
		logger:    logger,
		clock:     clock,
		projectID: cfg.ProjectID,
		perPage:   cfg.PerPage,
		webURL:    strings.TrimRight(strings.TrimSpace(cfg.WebURL), "/"),
	}
}

// ListTasksQuery holds the paging and filter values for one list request.
type ListTasksQuery struct {
	Page        int
	PerPage     int
	IncludeDone bool
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    *int
	DueAt       *time.Time
}

// ListTasks lists one page of tasks, optionally including completed ones.
func (s *Service) ListTasks(ctx context.Context, page int, includeDone bool) ([]domain.Task, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	start := s.clock()
	q := ListTasksQuery{Page: page, PerPage: s.perPage, IncludeDone: includeDone}
	s.logger.Debug("list tasks requested", "page", page, "per_page", s.perPage, "include_done", includeDone)
	tasks, err := s.tracker.ListTasks(ctx, q)
	if err != nil {
		s.logger.Warn("list tasks failed", "page", page, "err", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	s.logger.Info("list tasks complete", "page", page, "count", len(tasks), "elapsed", s.clock().Sub(start))
	return tasks, nil
}

// GetTask fetches the full record for one task.
func (s *Service) GetTask(ctx context.Context, id int64) (domain.TaskDetail, error) {
	if id <= 0 {
		return domain.TaskDetail{}, fmt.Errorf("%w: %d", ErrInvalidTaskID, id)
	}
	s.logger.Debug("task detail requested", "task_id", id)
	detail, err := s.tracker.GetTask(ctx, id)
	if err != nil {
		s.logger.Warn("task detail failed", "task_id", id, "err", err)
		return domain.TaskDetail{}, fmt.Errorf("fetch task detail: %w", err)
	}
	return detail, nil
}

// CreateTask creates task in the configured project.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.ErrInvalidTitle
	}
	if in.Priority != nil && !domain.ValidPriority(*in.Priority) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidPriority, *in.Priority)
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		in.Description = nil
	}
	s.logger.Info("create task requested", "project_id", s.projectID, "has_priority", in.Priority != nil, "has_due", in.DueAt != nil)
	if err := s.tracker.CreateTask(ctx, s.projectID, in); err != nil {
		s.logger.Error("create task failed", "project_id", s.projectID, "err", err)
		return fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("create task complete", "project_id", s.projectID)
	return nil
}

// TaskURL returns the browser link for one task, or "" without a web URL.
func (s *Service) TaskURL(id int64) string {
	if s.webURL == "" || id <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/tasks/%d", s.webURL, id)
}
