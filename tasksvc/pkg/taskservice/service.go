package taskservice

import (
	"context"
	"errors"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	"github.com/asshiddiq1306/TaskManagement/usersvc"
	"github.com/go-kit/kit/log"
)

// TaskResponse is the shape tasks leave the service in. The derived fields
// and the resolved assignee name are computed at mapping time.
type TaskResponse struct {
	ID               uint64           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	Priority         tasksvc.Priority `json:"priority"`
	Status           tasksvc.Status   `json:"status"`
	AssignedUserID   *uint64          `json:"assignedUserId,omitempty"`
	AssignedUserName *string          `json:"assignedUserName,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	CreatedBy        string           `json:"createdBy"`
	UpdatedAt        *time.Time       `json:"updatedAt,omitempty"`
	UpdatedBy        string           `json:"updatedBy,omitempty"`
	IsOverdue        bool             `json:"isOverdue"`
	CanBeDeleted     bool             `json:"canBeDeleted"`
}

type CreateTaskParams struct {
	Title          string
	Description    string
	DueDate        *time.Time
	Priority       tasksvc.Priority
	AssignedUserID *uint64
}

type UpdateTaskParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    tasksvc.Priority
}

// Service orchestrates task operations. Every method reports its outcome
// through the result envelope; expected business failures never surface as
// Go errors, and internal faults are logged here and translated to a generic
// message.
type Service interface {
	CreateTask(ctx context.Context, p CreateTaskParams, createdBy string) result.Result[TaskResponse]
	Task(ctx context.Context, id uint64) result.Result[TaskResponse]
	Tasks(ctx context.Context) result.Result[[]TaskResponse]
	TasksByUser(ctx context.Context, userID uint64) result.Result[[]TaskResponse]
	TasksByStatus(ctx context.Context, status tasksvc.Status) result.Result[[]TaskResponse]
	OverdueTasks(ctx context.Context) result.Result[[]TaskResponse]
	UpdateTask(ctx context.Context, id uint64, p UpdateTaskParams, updatedBy string) result.Result[TaskResponse]
	UpdateTaskStatus(ctx context.Context, id uint64, status tasksvc.Status, updatedBy string) result.Result[TaskResponse]
	AssignTask(ctx context.Context, taskID, userID uint64, updatedBy string) result.Result[TaskResponse]
	UnassignTask(ctx context.Context, taskID uint64, updatedBy string) result.Result[TaskResponse]
	DeleteTask(ctx context.Context, id uint64) result.Void
}

func New(tasks tasksvc.TaskRepository, users usersvc.UserRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(tasks, users, logger)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks  tasksvc.TaskRepository
	users  usersvc.UserRepository
	logger log.Logger
}

func NewBasicService(tasks tasksvc.TaskRepository, users usersvc.UserRepository, logger log.Logger) Service {
	return basicService{tasks: tasks, users: users, logger: logger}
}

func (s basicService) CreateTask(ctx context.Context, p CreateTaskParams, createdBy string) result.Result[TaskResponse] {
	if p.AssignedUserID != nil {
		exists, err := s.users.Exists(ctx, *p.AssignedUserID)
		if err != nil {
			s.logger.Log("method", "CreateTask", "during", "user lookup", "err", err)
			return result.Failure[TaskResponse]("An error occurred while creating the task")
		}
		if !exists {
			return result.Failure[TaskResponse]("Assigned user does not exist")
		}
	}

	task, err := tasksvc.NewTask(p.Title, p.Description, p.DueDate, p.Priority, createdBy)
	if err != nil {
		var verr *tasksvc.ValidationError
		if errors.As(err, &verr) {
			return result.ValidationFailure[TaskResponse](verr.Messages)
		}
		s.logger.Log("method", "CreateTask", "err", err)
		return result.Failure[TaskResponse]("An error occurred while creating the task")
	}

	if p.AssignedUserID != nil {
		task.AssignTo(*p.AssignedUserID, createdBy)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Log("method", "CreateTask", "during", "create", "err", err)
		return result.Failure[TaskResponse]("An error occurred while creating the task")
	}

	return result.Success(s.toResponse(ctx, task))
}

func (s basicService) Task(ctx context.Context, id uint64) result.Result[TaskResponse] {
	task, err := s.tasks.Find(ctx, id)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			return result.Failure[TaskResponse]("Task not found")
		}
		s.logger.Log("method", "Task", "task_id", id, "err", err)
		return result.Failure[TaskResponse]("An error occurred while retrieving the task")
	}
	return result.Success(s.toResponse(ctx, task))
}

func (s basicService) Tasks(ctx context.Context) result.Result[[]TaskResponse] {
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		s.logger.Log("method", "Tasks", "err", err)
		return result.Failure[[]TaskResponse]("An error occurred while retrieving tasks")
	}
	return result.Success(s.toResponses(ctx, tasks))
}

func (s basicService) TasksByUser(ctx context.Context, userID uint64) result.Result[[]TaskResponse] {
	tasks, err := s.tasks.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Log("method", "TasksByUser", "user_id", userID, "err", err)
		return result.Failure[[]TaskResponse]("An error occurred while retrieving user tasks")
	}
	return result.Success(s.toResponses(ctx, tasks))
}

func (s basicService) TasksByStatus(ctx context.Context, status tasksvc.Status) result.Result[[]TaskResponse] {
	tasks, err := s.tasks.FindByStatus(ctx, status)
	if err != nil {
		s.logger.Log("method", "TasksByStatus", "status", status, "err", err)
		return result.Failure[[]TaskResponse]("An error occurred while retrieving tasks by status")
	}
	return result.Success(s.toResponses(ctx, tasks))
}

func (s basicService) OverdueTasks(ctx context.Context) result.Result[[]TaskResponse] {
	tasks, err := s.tasks.FindOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Log("method", "OverdueTasks", "err", err)
		return result.Failure[[]TaskResponse]("An error occurred while retrieving overdue tasks")
	}
	return result.Success(s.toResponses(ctx, tasks))
}

func (s basicService) UpdateTask(ctx context.Context, id uint64, p UpdateTaskParams, updatedBy string) result.Result[TaskResponse] {
	task, err := s.tasks.Find(ctx, id)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			return result.Failure[TaskResponse]("Task not found")
		}
		s.logger.Log("method", "UpdateTask", "task_id", id, "err", err)
		return result.Failure[TaskResponse]("An error occurred while updating the task")
	}

	if err := task.UpdateDetails(p.Title, p.Description, p.DueDate, p.Priority, updatedBy); err != nil {
		var verr *tasksvc.ValidationError
		if errors.As(err, &verr) {
			return result.ValidationFailure[TaskResponse](verr.Messages)
		}
		s.logger.Log("method", "UpdateTask", "task_id", id, "err", err)
		return result.Failure[TaskResponse]("An error occurred while updating the task")
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Log("method", "UpdateTask", "task_id", id, "during", "update", "err", err)
		return result.Failure[TaskResponse]("An error occurred while updating the task")
	}

	return result.Success(s.toResponse(ctx, task))
}

func (s basicService) UpdateTaskStatus(ctx context.Context, id uint64, status tasksvc.Status, updatedBy string) result.Result[TaskResponse] {
	task, err := s.tasks.Find(ctx, id)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			return result.Failure[TaskResponse]("Task not found")
		}
		s.logger.Log("method", "UpdateTaskStatus", "task_id", id, "err", err)
		return result.Failure[TaskResponse]("An error occurred while updating task status")
	}

	// Any status may follow any other; there is no transition guard.
	task.UpdateStatus(status, updatedBy)

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Log("method", "UpdateTaskStatus", "task_id", id, "during", "update", "err", err)
		return result.Failure[TaskResponse]("An error occurred while updating task status")
	}

	return result.Success(s.toResponse(ctx, task))
}

func (s basicService) AssignTask(ctx context.Context, taskID, userID uint64, updatedBy string) result.Result[TaskResponse] {
	task, err := s.tasks.Find(ctx, taskID)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			return result.Failure[TaskResponse]("Task not found")
		}
		s.logger.Log("method", "AssignTask", "task_id", taskID, "err", err)
		return result.Failure[TaskResponse]("An error occurred while assigning the task")
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.logger.Log("method", "AssignTask", "task_id", taskID, "during", "user lookup", "err", err)
		return result.Failure[TaskResponse]("An error occurred while assigning the task")
	}
	if !exists {
		return result.Failure[TaskResponse]("User not found")
	}

	task.AssignTo(userID, updatedBy)

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Log("method", "AssignTask", "task_id", taskID, "during", "update", "err", err)
		return result.Failure[TaskResponse]("An error occurred while assigning the task")
	}

	return result.Success(s.toResponse(ctx, task))
}

func (s basicService) UnassignTask(ctx context.Context, taskID uint64, updatedBy string) result.Result[TaskResponse] {
	task, err := s.tasks.Find(ctx, taskID)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			return result.Failure[TaskResponse]("Task not found")
		}
		s.logger.Log("method", "UnassignTask", "task_id", taskID, "err", err)
		return result.Failure[TaskResponse]("An error occurred while unassigning the task")
	}

	task.Unassign(updatedBy)

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Log("method", "UnassignTask", "task_id", taskID, "during", "update", "err", err)
		return result.Failure[TaskResponse]("An error occurred while unassigning the task")
	}

	return result.Success(s.toResponse(ctx, task))
}

func (s basicService) DeleteTask(ctx context.Context, id uint64) result.Void {
	task, err := s.tasks.Find(ctx, id)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			return result.VoidFailure("Task not found")
		}
		s.logger.Log("method", "DeleteTask", "task_id", id, "err", err)
		return result.VoidFailure("An error occurred while deleting the task")
	}

	if !task.CanBeDeleted() {
		return result.VoidFailure("Cannot delete task that is in progress")
	}

	if err := s.tasks.Delete(ctx, task); err != nil {
		s.logger.Log("method", "DeleteTask", "task_id", id, "during", "delete", "err", err)
		return result.VoidFailure("An error occurred while deleting the task")
	}

	return result.VoidSuccess()
}

// toResponse resolves the assignee's display name per task; a missing or
// unreadable user yields a nil name, never an error.
func (s basicService) toResponse(ctx context.Context, t *tasksvc.Task) TaskResponse {
	var assignedUserName *string
	if t.AssignedUserID != nil {
		if user, err := s.users.Find(ctx, *t.AssignedUserID); err == nil {
			assignedUserName = &user.Name
		}
	}

	return TaskResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		DueDate:          t.DueDate,
		Priority:         t.Priority,
		Status:           t.Status,
		AssignedUserID:   t.AssignedUserID,
		AssignedUserName: assignedUserName,
		CreatedAt:        t.CreatedAt,
		CreatedBy:        t.CreatedBy,
		UpdatedAt:        t.UpdatedAt,
		UpdatedBy:        t.UpdatedBy,
		IsOverdue:        t.IsOverdue(),
		CanBeDeleted:     t.CanBeDeleted(),
	}
}

func (s basicService) toResponses(ctx context.Context, tasks []*tasksvc.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, s.toResponse(ctx, t))
	}
	return responses
}
