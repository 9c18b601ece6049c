package session

import (
	"context"

	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/domain"
)

// Service is the slice of the application service a driver needs to run requests.
type Service interface {
	ListTasks(context.Context, int, bool) ([]domain.Task, error)
	GetTask(context.Context, int64) (domain.TaskDetail, error)
	CreateTask(context.Context, app.CreateTaskInput) error
}

// Execute performs one remote request and returns its result. A create request
// also refreshes the current page so the new task is visible; Created stays set
// when only that refresh fails.
func Execute(ctx context.Context, svc Service, req Request) Result {
	res := Result{Request: req}
	switch req.Kind {
	case RequestList:
		res.Tasks, res.Err = svc.ListTasks(ctx, req.Page, req.IncludeDone)
	case RequestDetail:
		res.Detail, res.Err = svc.GetTask(ctx, req.TaskID)
	case RequestCreate:
		if err := svc.CreateTask(ctx, req.Create); err != nil {
			res.Err = err
			return res
		}
		res.Created = true
		res.Tasks, res.Err = svc.ListTasks(ctx, req.Page, req.IncludeDone)
	}
	return res
}

// Run drives one action to completion synchronously, executing any remote
// request it produces. It returns the request so callers can observe quit.
func Run(ctx context.Context, m *Machine, svc Service, a Action) Request {
	req := m.Handle(a)
	if req.Remote() {
		m.Complete(Execute(ctx, svc, req))
	}
	return req
}
