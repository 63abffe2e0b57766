package taskservice

import (
	"context"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) CreateTask(ctx context.Context, p CreateTaskParams, createdBy string) (res result.Result[TaskResponse]) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"title", p.Title,
			"priority", p.Priority,
			"created_by", createdBy,
			"ok", res.IsSuccess(),
			"err", res.ErrorMessage(),
		)
	}()
	return mw.next.CreateTask(ctx, p, createdBy)
}

func (mw loggingMiddleware) Task(ctx context.Context, id uint64) (res result.Result[TaskResponse]) {
	defer func() {
		mw.logger.Log("method", "Task", "task_id", id, "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.Task(ctx, id)
}

func (mw loggingMiddleware) Tasks(ctx context.Context) (res result.Result[[]TaskResponse]) {
	defer func() {
		mw.logger.Log("method", "Tasks", "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.Tasks(ctx)
}

func (mw loggingMiddleware) TasksByUser(ctx context.Context, userID uint64) (res result.Result[[]TaskResponse]) {
	defer func() {
		mw.logger.Log("method", "TasksByUser", "user_id", userID, "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.TasksByUser(ctx, userID)
}

func (mw loggingMiddleware) TasksByStatus(ctx context.Context, status tasksvc.Status) (res result.Result[[]TaskResponse]) {
	defer func() {
		mw.logger.Log("method", "TasksByStatus", "status", status, "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.TasksByStatus(ctx, status)
}

func (mw loggingMiddleware) OverdueTasks(ctx context.Context) (res result.Result[[]TaskResponse]) {
	defer func() {
		mw.logger.Log("method", "OverdueTasks", "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.OverdueTasks(ctx)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, id uint64, p UpdateTaskParams, updatedBy string) (res result.Result[TaskResponse]) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"task_id", id,
			"title", p.Title,
			"updated_by", updatedBy,
			"ok", res.IsSuccess(),
			"err", res.ErrorMessage(),
		)
	}()
	return mw.next.UpdateTask(ctx, id, p, updatedBy)
}

func (mw loggingMiddleware) UpdateTaskStatus(ctx context.Context, id uint64, status tasksvc.Status, updatedBy string) (res result.Result[TaskResponse]) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTaskStatus",
			"task_id", id,
			"status", status,
			"updated_by", updatedBy,
			"ok", res.IsSuccess(),
			"err", res.ErrorMessage(),
		)
	}()
	return mw.next.UpdateTaskStatus(ctx, id, status, updatedBy)
}

func (mw loggingMiddleware) AssignTask(ctx context.Context, taskID, userID uint64, updatedBy string) (res result.Result[TaskResponse]) {
	defer func() {
		mw.logger.Log(
			"method", "AssignTask",
			"task_id", taskID,
			"user_id", userID,
			"updated_by", updatedBy,
			"ok", res.IsSuccess(),
			"err", res.ErrorMessage(),
		)
	}()
	return mw.next.AssignTask(ctx, taskID, userID, updatedBy)
}

func (mw loggingMiddleware) UnassignTask(ctx context.Context, taskID uint64, updatedBy string) (res result.Result[TaskResponse]) {
	defer func() {
		mw.logger.Log(
			"method", "UnassignTask",
			"task_id", taskID,
			"updated_by", updatedBy,
			"ok", res.IsSuccess(),
			"err", res.ErrorMessage(),
		)
	}()
	return mw.next.UnassignTask(ctx, taskID, updatedBy)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, id uint64) (res result.Void) {
	defer func() {
		mw.logger.Log("method", "DeleteTask", "task_id", id, "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.DeleteTask(ctx, id)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) instrument(method string, begin time.Time) {
	mw.requestCount.With("method", method).Add(1)
	mw.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, p CreateTaskParams, createdBy string) result.Result[TaskResponse] {
	defer mw.instrument("create_task", time.Now())
	return mw.next.CreateTask(ctx, p, createdBy)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, id uint64) result.Result[TaskResponse] {
	defer mw.instrument("task", time.Now())
	return mw.next.Task(ctx, id)
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context) result.Result[[]TaskResponse] {
	defer mw.instrument("tasks", time.Now())
	return mw.next.Tasks(ctx)
}

func (mw instrumentingMiddleware) TasksByUser(ctx context.Context, userID uint64) result.Result[[]TaskResponse] {
	defer mw.instrument("tasks_by_user", time.Now())
	return mw.next.TasksByUser(ctx, userID)
}

func (mw instrumentingMiddleware) TasksByStatus(ctx context.Context, status tasksvc.Status) result.Result[[]TaskResponse] {
	defer mw.instrument("tasks_by_status", time.Now())
	return mw.next.TasksByStatus(ctx, status)
}

func (mw instrumentingMiddleware) OverdueTasks(ctx context.Context) result.Result[[]TaskResponse] {
	defer mw.instrument("overdue_tasks", time.Now())
	return mw.next.OverdueTasks(ctx)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, id uint64, p UpdateTaskParams, updatedBy string) result.Result[TaskResponse] {
	defer mw.instrument("update_task", time.Now())
	return mw.next.UpdateTask(ctx, id, p, updatedBy)
}

func (mw instrumentingMiddleware) UpdateTaskStatus(ctx context.Context, id uint64, status tasksvc.Status, updatedBy string) result.Result[TaskResponse] {
	defer mw.instrument("update_task_status", time.Now())
	return mw.next.UpdateTaskStatus(ctx, id, status, updatedBy)
}

func (mw instrumentingMiddleware) AssignTask(ctx context.Context, taskID, userID uint64, updatedBy string) result.Result[TaskResponse] {
	defer mw.instrument("assign_task", time.Now())
	return mw.next.AssignTask(ctx, taskID, userID, updatedBy)
}

func (mw instrumentingMiddleware) UnassignTask(ctx context.Context, taskID uint64, updatedBy string) result.Result[TaskResponse] {
	defer mw.instrument("unassign_task", time.Now())
	return mw.next.UnassignTask(ctx, taskID, updatedBy)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, id uint64) result.Void {
	defer mw.instrument("delete_task", time.Now())
	return mw.next.DeleteTask(ctx, id)
}
