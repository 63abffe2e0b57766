package userservice

import (
	"context"
	"errors"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	"github.com/asshiddiq1306/TaskManagement/usersvc"
	"github.com/go-kit/kit/log"
)

type UserResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	TaskCount int64     `json:"taskCount"`
}

// Service orchestrates user operations, reporting outcomes through the
// result envelope the same way the task service does.
type Service interface {
	CreateUser(ctx context.Context, name, email, createdBy string) result.Result[UserResponse]
	User(ctx context.Context, id uint64) result.Result[UserResponse]
	UserByEmail(ctx context.Context, email string) result.Result[UserResponse]
	Users(ctx context.Context) result.Result[[]UserResponse]
	DeleteUser(ctx context.Context, id uint64) result.Void
}

func New(users usersvc.UserRepository, tasks tasksvc.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(users, tasks, logger)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users  usersvc.UserRepository
	tasks  tasksvc.TaskRepository
	logger log.Logger
}

func NewBasicService(users usersvc.UserRepository, tasks tasksvc.TaskRepository, logger log.Logger) Service {
	return basicService{users: users, tasks: tasks, logger: logger}
}

func (s basicService) CreateUser(ctx context.Context, name, email, createdBy string) result.Result[UserResponse] {
	user, err := usersvc.NewUser(name, email, createdBy)
	if err != nil {
		var verr *usersvc.ValidationError
		if errors.As(err, &verr) {
			return result.ValidationFailure[UserResponse](verr.Messages)
		}
		s.logger.Log("method", "CreateUser", "err", err)
		return result.Failure[UserResponse]("An error occurred while creating the user")
	}

	// Exact-match lookup; the unique index backs this up at the store level.
	_, err = s.users.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return result.Failure[UserResponse]("Email already exists")
	case !errors.Is(err, usersvc.ErrUserNotFound):
		s.logger.Log("method", "CreateUser", "during", "email lookup", "err", err)
		return result.Failure[UserResponse]("An error occurred while creating the user")
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Log("method", "CreateUser", "during", "create", "err", err)
		return result.Failure[UserResponse]("An error occurred while creating the user")
	}

	return result.Success(s.toResponse(ctx, user))
}

func (s basicService) User(ctx context.Context, id uint64) result.Result[UserResponse] {
	user, err := s.users.Find(ctx, id)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return result.Failure[UserResponse]("User not found")
		}
		s.logger.Log("method", "User", "user_id", id, "err", err)
		return result.Failure[UserResponse]("An error occurred while retrieving the user")
	}
	return result.Success(s.toResponse(ctx, user))
}

func (s basicService) UserByEmail(ctx context.Context, email string) result.Result[UserResponse] {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return result.Failure[UserResponse]("User not found")
		}
		s.logger.Log("method", "UserByEmail", "err", err)
		return result.Failure[UserResponse]("An error occurred while retrieving the user")
	}
	return result.Success(s.toResponse(ctx, user))
}

func (s basicService) Users(ctx context.Context) result.Result[[]UserResponse] {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.logger.Log("method", "Users", "err", err)
		return result.Failure[[]UserResponse]("An error occurred while retrieving users")
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, s.toResponse(ctx, u))
	}
	return result.Success(responses)
}

func (s basicService) DeleteUser(ctx context.Context, id uint64) result.Void {
	user, err := s.users.Find(ctx, id)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return result.VoidFailure("User not found")
		}
		s.logger.Log("method", "DeleteUser", "user_id", id, "err", err)
		return result.VoidFailure("An error occurred while deleting the user")
	}

	count, err := s.tasks.CountByUser(ctx, id)
	if err != nil {
		s.logger.Log("method", "DeleteUser", "user_id", id, "during", "task count", "err", err)
		return result.VoidFailure("An error occurred while deleting the user")
	}
	if count > 0 {
		return result.VoidFailure("Cannot delete user with assigned tasks")
	}

	if err := s.users.Delete(ctx, user); err != nil {
		s.logger.Log("method", "DeleteUser", "user_id", id, "during", "delete", "err", err)
		return result.VoidFailure("An error occurred while deleting the user")
	}

	return result.VoidSuccess()
}

// toResponse counts the tasks currently referencing the user; a failed count
// degrades to zero rather than failing the read.
func (s basicService) toResponse(ctx context.Context, u *usersvc.User) UserResponse {
	count, err := s.tasks.CountByUser(ctx, u.ID)
	if err != nil {
		count = 0
	}

	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		TaskCount: count,
	}
}
