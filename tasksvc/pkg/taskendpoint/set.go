// Package taskendpoint exposes the task service as go-kit endpoints. The Set
// implements taskservice.Service, so client-side endpoint sets can stand in
// for the service anywhere it is consumed.
package taskendpoint

import (
	"context"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskservice"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
)

type Set struct {
	CreateTaskEndpoint       endpoint.Endpoint
	TaskEndpoint             endpoint.Endpoint
	TasksEndpoint            endpoint.Endpoint
	TasksByUserEndpoint      endpoint.Endpoint
	TasksByStatusEndpoint    endpoint.Endpoint
	OverdueTasksEndpoint     endpoint.Endpoint
	UpdateTaskEndpoint       endpoint.Endpoint
	UpdateTaskStatusEndpoint endpoint.Endpoint
	AssignTaskEndpoint       endpoint.Endpoint
	UnassignTaskEndpoint     endpoint.Endpoint
	DeleteTaskEndpoint       endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	wrap := func(method string, e endpoint.Endpoint) endpoint.Endpoint {
		return LoggingMiddleware(log.With(logger, "method", method))(e)
	}

	return Set{
		CreateTaskEndpoint:       wrap("CreateTask", MakeCreateTaskEndpoint(svc)),
		TaskEndpoint:             wrap("Task", MakeTaskEndpoint(svc)),
		TasksEndpoint:            wrap("Tasks", MakeTasksEndpoint(svc)),
		TasksByUserEndpoint:      wrap("TasksByUser", MakeTasksByUserEndpoint(svc)),
		TasksByStatusEndpoint:    wrap("TasksByStatus", MakeTasksByStatusEndpoint(svc)),
		OverdueTasksEndpoint:     wrap("OverdueTasks", MakeOverdueTasksEndpoint(svc)),
		UpdateTaskEndpoint:       wrap("UpdateTask", MakeUpdateTaskEndpoint(svc)),
		UpdateTaskStatusEndpoint: wrap("UpdateTaskStatus", MakeUpdateTaskStatusEndpoint(svc)),
		AssignTaskEndpoint:       wrap("AssignTask", MakeAssignTaskEndpoint(svc)),
		UnassignTaskEndpoint:     wrap("UnassignTask", MakeUnassignTaskEndpoint(svc)),
		DeleteTaskEndpoint:       wrap("DeleteTask", MakeDeleteTaskEndpoint(svc)),
	}
}

// LoggingMiddleware logs transport-level failures and duration per endpoint.
// Business outcomes travel inside the result envelope and are logged by the
// service middleware instead.
func LoggingMiddleware(logger log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				logger.Log("transport_error", err, "took", time.Since(begin))
			}(time.Now())
			return next(ctx, request)
		}
	}
}

func (s Set) CreateTask(ctx context.Context, p taskservice.CreateTaskParams, createdBy string) result.Result[taskservice.TaskResponse] {
	resp, err := s.CreateTaskEndpoint(ctx, CreateTaskRequest{
		Title:          p.Title,
		Description:    p.Description,
		DueDate:        p.DueDate,
		Priority:       p.Priority,
		AssignedUserID: p.AssignedUserID,
		CreatedBy:      createdBy,
	})
	if err != nil {
		return result.Failure[taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(CreateTaskResponse).Result
}

func (s Set) Task(ctx context.Context, id uint64) result.Result[taskservice.TaskResponse] {
	resp, err := s.TaskEndpoint(ctx, TaskRequest{TaskID: id})
	if err != nil {
		return result.Failure[taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TaskResponse).Result
}

func (s Set) Tasks(ctx context.Context) result.Result[[]taskservice.TaskResponse] {
	resp, err := s.TasksEndpoint(ctx, TasksRequest{})
	if err != nil {
		return result.Failure[[]taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TasksResponse).Result
}

func (s Set) TasksByUser(ctx context.Context, userID uint64) result.Result[[]taskservice.TaskResponse] {
	resp, err := s.TasksByUserEndpoint(ctx, TasksByUserRequest{UserID: userID})
	if err != nil {
		return result.Failure[[]taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TasksResponse).Result
}

func (s Set) TasksByStatus(ctx context.Context, status tasksvc.Status) result.Result[[]taskservice.TaskResponse] {
	resp, err := s.TasksByStatusEndpoint(ctx, TasksByStatusRequest{Status: status})
	if err != nil {
		return result.Failure[[]taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TasksResponse).Result
}

func (s Set) OverdueTasks(ctx context.Context) result.Result[[]taskservice.TaskResponse] {
	resp, err := s.OverdueTasksEndpoint(ctx, OverdueTasksRequest{})
	if err != nil {
		return result.Failure[[]taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TasksResponse).Result
}

func (s Set) UpdateTask(ctx context.Context, id uint64, p taskservice.UpdateTaskParams, updatedBy string) result.Result[taskservice.TaskResponse] {
	resp, err := s.UpdateTaskEndpoint(ctx, UpdateTaskRequest{
		TaskID:      id,
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		Priority:    p.Priority,
		UpdatedBy:   updatedBy,
	})
	if err != nil {
		return result.Failure[taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TaskResponse).Result
}

func (s Set) UpdateTaskStatus(ctx context.Context, id uint64, status tasksvc.Status, updatedBy string) result.Result[taskservice.TaskResponse] {
	resp, err := s.UpdateTaskStatusEndpoint(ctx, UpdateTaskStatusRequest{TaskID: id, Status: status, UpdatedBy: updatedBy})
	if err != nil {
		return result.Failure[taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TaskResponse).Result
}

func (s Set) AssignTask(ctx context.Context, taskID, userID uint64, updatedBy string) result.Result[taskservice.TaskResponse] {
	resp, err := s.AssignTaskEndpoint(ctx, AssignTaskRequest{TaskID: taskID, UserID: userID, UpdatedBy: updatedBy})
	if err != nil {
		return result.Failure[taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TaskResponse).Result
}

func (s Set) UnassignTask(ctx context.Context, taskID uint64, updatedBy string) result.Result[taskservice.TaskResponse] {
	resp, err := s.UnassignTaskEndpoint(ctx, UnassignTaskRequest{TaskID: taskID, UpdatedBy: updatedBy})
	if err != nil {
		return result.Failure[taskservice.TaskResponse](ErrServiceUnavailable)
	}
	return resp.(TaskResponse).Result
}

func (s Set) DeleteTask(ctx context.Context, id uint64) result.Void {
	resp, err := s.DeleteTaskEndpoint(ctx, DeleteTaskRequest{TaskID: id})
	if err != nil {
		return result.VoidFailure(ErrServiceUnavailable)
	}
	return resp.(DeleteTaskResponse).Result
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(CreateTaskRequest)
		res := s.CreateTask(ctx, taskservice.CreateTaskParams{
			Title:          req.Title,
			Description:    req.Description,
			DueDate:        req.DueDate,
			Priority:       req.Priority,
			AssignedUserID: req.AssignedUserID,
		}, req.CreatedBy)
		return CreateTaskResponse{Result: res}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TaskRequest)
		return TaskResponse{Result: s.Task(ctx, req.TaskID)}, nil
	}
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(TasksRequest)
		return TasksResponse{Result: s.Tasks(ctx)}, nil
	}
}

func MakeTasksByUserEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TasksByUserRequest)
		return TasksResponse{Result: s.TasksByUser(ctx, req.UserID)}, nil
	}
}

func MakeTasksByStatusEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TasksByStatusRequest)
		return TasksResponse{Result: s.TasksByStatus(ctx, req.Status)}, nil
	}
}

func MakeOverdueTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(OverdueTasksRequest)
		return TasksResponse{Result: s.OverdueTasks(ctx)}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UpdateTaskRequest)
		res := s.UpdateTask(ctx, req.TaskID, taskservice.UpdateTaskParams{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
			Priority:    req.Priority,
		}, req.UpdatedBy)
		return TaskResponse{Result: res}, nil
	}
}

func MakeUpdateTaskStatusEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UpdateTaskStatusRequest)
		return TaskResponse{Result: s.UpdateTaskStatus(ctx, req.TaskID, req.Status, req.UpdatedBy)}, nil
	}
}

func MakeAssignTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(AssignTaskRequest)
		return TaskResponse{Result: s.AssignTask(ctx, req.TaskID, req.UserID, req.UpdatedBy)}, nil
	}
}

func MakeUnassignTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UnassignTaskRequest)
		return TaskResponse{Result: s.UnassignTask(ctx, req.TaskID, req.UpdatedBy)}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(DeleteTaskRequest)
		return DeleteTaskResponse{Result: s.DeleteTask(ctx, req.TaskID)}, nil
	}
}

// ErrServiceUnavailable is what a client-side Set reports when the transport
// itself fails (no instance reachable, breaker open, retries exhausted).
const ErrServiceUnavailable = "Service unavailable"

type CreateTaskRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	Priority       tasksvc.Priority `json:"priority"`
	AssignedUserID *uint64          `json:"assignedUserId,omitempty"`
	CreatedBy      string           `json:"-"`
}

type TaskRequest struct {
	TaskID uint64 `json:"-"`
}

type TasksRequest struct{}

type TasksByUserRequest struct {
	UserID uint64 `json:"-"`
}

type TasksByStatusRequest struct {
	Status tasksvc.Status `json:"-"`
}

type OverdueTasksRequest struct{}

type UpdateTaskRequest struct {
	TaskID      uint64           `json:"-"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Priority    tasksvc.Priority `json:"priority"`
	UpdatedBy   string           `json:"-"`
}

type UpdateTaskStatusRequest struct {
	TaskID    uint64         `json:"-"`
	Status    tasksvc.Status `json:"status"`
	UpdatedBy string         `json:"-"`
}

type AssignTaskRequest struct {
	TaskID    uint64 `json:"-"`
	UserID    uint64 `json:"userId"`
	UpdatedBy string `json:"-"`
}

type UnassignTaskRequest struct {
	TaskID    uint64 `json:"-"`
	UpdatedBy string `json:"-"`
}

type DeleteTaskRequest struct {
	TaskID uint64 `json:"-"`
}

type CreateTaskResponse struct {
	Result result.Result[taskservice.TaskResponse]
}

type TaskResponse struct {
	Result result.Result[taskservice.TaskResponse]
}

type TasksResponse struct {
	Result result.Result[[]taskservice.TaskResponse]
}

type DeleteTaskResponse struct {
	Result result.Void
}
