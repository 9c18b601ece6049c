package app

import (
	"context"

	"github.com/hylla/vitui/internal/domain"
)

// Tracker represents the remote task-tracking service consumed by this package.
type Tracker interface {
	ListTasks(context.Context, ListTasksQuery) ([]domain.Task, error)
	GetTask(context.Context, int64) (domain.TaskDetail, error)
	CreateTask(context.Context, int64, CreateTaskInput) error
}

// Logger represents the structured logger used for remote-call lifecycle events.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// nopLogger discards every event.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
