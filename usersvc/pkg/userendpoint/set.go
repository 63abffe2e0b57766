// Package userendpoint exposes the user service as go-kit endpoints. The Set
// implements userservice.Service.
package userendpoint

import (
	"context"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
)

type Set struct {
	CreateUserEndpoint  endpoint.Endpoint
	UserEndpoint        endpoint.Endpoint
	UserByEmailEndpoint endpoint.Endpoint
	UsersEndpoint       endpoint.Endpoint
	DeleteUserEndpoint  endpoint.Endpoint
}

func New(svc userservice.Service, logger log.Logger) Set {
	wrap := func(method string, e endpoint.Endpoint) endpoint.Endpoint {
		return LoggingMiddleware(log.With(logger, "method", method))(e)
	}

	return Set{
		CreateUserEndpoint:  wrap("CreateUser", MakeCreateUserEndpoint(svc)),
		UserEndpoint:        wrap("User", MakeUserEndpoint(svc)),
		UserByEmailEndpoint: wrap("UserByEmail", MakeUserByEmailEndpoint(svc)),
		UsersEndpoint:       wrap("Users", MakeUsersEndpoint(svc)),
		DeleteUserEndpoint:  wrap("DeleteUser", MakeDeleteUserEndpoint(svc)),
	}
}

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

func (s Set) CreateUser(ctx context.Context, name, email, createdBy string) result.Result[userservice.UserResponse] {
	resp, err := s.CreateUserEndpoint(ctx, CreateUserRequest{Name: name, Email: email, CreatedBy: createdBy})
	if err != nil {
		return result.Failure[userservice.UserResponse](ErrServiceUnavailable)
	}
	return resp.(UserResponse).Result
}

func (s Set) User(ctx context.Context, id uint64) result.Result[userservice.UserResponse] {
	resp, err := s.UserEndpoint(ctx, UserRequest{UserID: id})
	if err != nil {
		return result.Failure[userservice.UserResponse](ErrServiceUnavailable)
	}
	return resp.(UserResponse).Result
}

func (s Set) UserByEmail(ctx context.Context, email string) result.Result[userservice.UserResponse] {
	resp, err := s.UserByEmailEndpoint(ctx, UserByEmailRequest{Email: email})
	if err != nil {
		return result.Failure[userservice.UserResponse](ErrServiceUnavailable)
	}
	return resp.(UserResponse).Result
}

func (s Set) Users(ctx context.Context) result.Result[[]userservice.UserResponse] {
	resp, err := s.UsersEndpoint(ctx, UsersRequest{})
	if err != nil {
		return result.Failure[[]userservice.UserResponse](ErrServiceUnavailable)
	}
	return resp.(UsersResponse).Result
}

func (s Set) DeleteUser(ctx context.Context, id uint64) result.Void {
	resp, err := s.DeleteUserEndpoint(ctx, DeleteUserRequest{UserID: id})
	if err != nil {
		return result.VoidFailure(ErrServiceUnavailable)
	}
	return resp.(DeleteUserResponse).Result
}

func MakeCreateUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(CreateUserRequest)
		return UserResponse{Result: s.CreateUser(ctx, req.Name, req.Email, req.CreatedBy)}, nil
	}
}

func MakeUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserRequest)
		return UserResponse{Result: s.User(ctx, req.UserID)}, nil
	}
}

func MakeUserByEmailEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserByEmailRequest)
		return UserResponse{Result: s.UserByEmail(ctx, req.Email)}, nil
	}
}

func MakeUsersEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(UsersRequest)
		return UsersResponse{Result: s.Users(ctx)}, nil
	}
}

func MakeDeleteUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(DeleteUserRequest)
		return DeleteUserResponse{Result: s.DeleteUser(ctx, req.UserID)}, nil
	}
}

const ErrServiceUnavailable = "Service unavailable"

type CreateUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedBy string `json:"-"`
}

type UserRequest struct {
	UserID uint64 `json:"-"`
}

type UserByEmailRequest struct {
	Email string `json:"-"`
}

type UsersRequest struct{}

type DeleteUserRequest struct {
	UserID uint64 `json:"-"`
}

type UserResponse struct {
	Result result.Result[userservice.UserResponse]
}

type UsersResponse struct {
	Result result.Result[[]userservice.UserResponse]
}

type DeleteUserResponse struct {
	Result result.Void
}
