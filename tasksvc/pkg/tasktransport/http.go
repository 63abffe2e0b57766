// Package tasktransport binds the task endpoints to HTTP. The server side
// serves the REST routes; the client side produces an endpoint Set backed by
// a remote instance, with rate limiting and a circuit breaker per endpoint.
package tasktransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskendpoint"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskservice"
	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// defaultUser stands in for the acting user when the caller sends no X-User
// header; there is no authentication in this system.
const defaultUser = "api-user"

func NewHTTPHandler(endpoints taskendpoint.Set, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	r := mux.NewRouter()

	// Literal routes first; gorilla matches in registration order and
	// /api/tasks/{task_id} would swallow "overdue" otherwise.
	r.Methods("GET").Path("/api/tasks/overdue").Handler(httptransport.NewServer(
		endpoints.OverdueTasksEndpoint,
		decodeOverdueTasksRequest,
		encodeTasksResponse,
		options...,
	))
	r.Methods("GET").Path("/api/tasks/user/{user_id}").Handler(httptransport.NewServer(
		endpoints.TasksByUserEndpoint,
		decodeTasksByUserRequest,
		encodeTasksResponse,
		options...,
	))
	r.Methods("GET").Path("/api/tasks/status/{status}").Handler(httptransport.NewServer(
		endpoints.TasksByStatusEndpoint,
		decodeTasksByStatusRequest,
		encodeTasksResponse,
		options...,
	))
	r.Methods("POST").Path("/api/tasks").Handler(httptransport.NewServer(
		endpoints.CreateTaskEndpoint,
		decodeCreateTaskRequest,
		encodeCreateTaskResponse,
		options...,
	))
	r.Methods("GET").Path("/api/tasks").Handler(httptransport.NewServer(
		endpoints.TasksEndpoint,
		decodeTasksRequest,
		encodeTasksResponse,
		options...,
	))
	r.Methods("GET").Path("/api/tasks/{task_id}").Handler(httptransport.NewServer(
		endpoints.TaskEndpoint,
		decodeTaskRequest,
		encodeTaskResponse,
		options...,
	))
	r.Methods("PUT").Path("/api/tasks/{task_id}").Handler(httptransport.NewServer(
		endpoints.UpdateTaskEndpoint,
		decodeUpdateTaskRequest,
		encodeTaskResponse,
		options...,
	))
	r.Methods("PATCH").Path("/api/tasks/{task_id}/status").Handler(httptransport.NewServer(
		endpoints.UpdateTaskStatusEndpoint,
		decodeUpdateTaskStatusRequest,
		encodeTaskResponse,
		options...,
	))
	r.Methods("PATCH").Path("/api/tasks/{task_id}/assign").Handler(httptransport.NewServer(
		endpoints.AssignTaskEndpoint,
		decodeAssignTaskRequest,
		encodeTaskResponse,
		options...,
	))
	r.Methods("PATCH").Path("/api/tasks/{task_id}/unassign").Handler(httptransport.NewServer(
		endpoints.UnassignTaskEndpoint,
		decodeUnassignTaskRequest,
		encodeTaskResponse,
		options...,
	))
	r.Methods("DELETE").Path("/api/tasks/{task_id}").Handler(httptransport.NewServer(
		endpoints.DeleteTaskEndpoint,
		decodeDeleteTaskRequest,
		encodeDeleteTaskResponse,
		options...,
	))

	return r
}

// ErrBadRequest marks malformed inputs caught at the transport edge.
var ErrBadRequest = errors.New("bad request")

func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err2code(err))
	json.NewEncoder(w).Encode(errorWrapper{Error: err.Error()})
}

func err2code(err error) int {
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorWrapper struct {
	Error string `json:"error"`
}

type validationWrapper struct {
	Errors []string `json:"errors"`
}

func currentUser(r *http.Request) string {
	if u := r.Header.Get("X-User"); u != "" {
		return u
	}
	return defaultUser
}

func pathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", ErrBadRequest, name)
	}
	return id, nil
}

func decodeCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, "malformed task payload")
	}
	if !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %d", ErrBadRequest, req.Priority)
	}
	req.CreatedBy = currentUser(r)
	return req, nil
}

func decodeTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "task_id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.TaskRequest{TaskID: id}, nil
}

func decodeTasksRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return taskendpoint.TasksRequest{}, nil
}

func decodeTasksByUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "user_id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.TasksByUserRequest{UserID: id}, nil
}

func decodeTasksByStatusRequest(_ context.Context, r *http.Request) (interface{}, error) {
	status, err := tasksvc.ParseStatus(mux.Vars(r)["status"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}
	return taskendpoint.TasksByStatusRequest{Status: status}, nil
}

func decodeOverdueTasksRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return taskendpoint.OverdueTasksRequest{}, nil
}

func decodeUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "task_id")
	if err != nil {
		return nil, err
	}
	var req taskendpoint.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, "malformed task payload")
	}
	if !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %d", ErrBadRequest, req.Priority)
	}
	req.TaskID = id
	req.UpdatedBy = currentUser(r)
	return req, nil
}

func decodeUpdateTaskStatusRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "task_id")
	if err != nil {
		return nil, err
	}
	var req taskendpoint.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, "malformed status payload")
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %d", ErrBadRequest, req.Status)
	}
	req.TaskID = id
	req.UpdatedBy = currentUser(r)
	return req, nil
}

func decodeAssignTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "task_id")
	if err != nil {
		return nil, err
	}
	var req taskendpoint.AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, "malformed assignment payload")
	}
	req.TaskID = id
	req.UpdatedBy = currentUser(r)
	return req, nil
}

func decodeUnassignTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "task_id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.UnassignTaskRequest{TaskID: id, UpdatedBy: currentUser(r)}, nil
}

func decodeDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathID(r, "task_id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.DeleteTaskRequest{TaskID: id}, nil
}

// encodeResult translates the envelope to HTTP the way the API layer always
// has: success renders the payload, any failure renders 400 with either the
// validation list or the single message.
func encodeResult[T any](w http.ResponseWriter, res result.Result[T], successCode int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch {
	case res.IsSuccess():
		w.WriteHeader(successCode)
		return json.NewEncoder(w).Encode(res.Data())
	case len(res.ValidationErrors()) > 0:
		w.WriteHeader(http.StatusBadRequest)
		return json.NewEncoder(w).Encode(validationWrapper{Errors: res.ValidationErrors()})
	default:
		w.WriteHeader(http.StatusBadRequest)
		return json.NewEncoder(w).Encode(errorWrapper{Error: res.ErrorMessage()})
	}
}

func encodeCreateTaskResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeResult(w, response.(taskendpoint.CreateTaskResponse).Result, http.StatusCreated)
}

func encodeTaskResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeResult(w, response.(taskendpoint.TaskResponse).Result, http.StatusOK)
}

func encodeTasksResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeResult(w, response.(taskendpoint.TasksResponse).Result, http.StatusOK)
}

func encodeDeleteTaskResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(taskendpoint.DeleteTaskResponse).Result
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch {
	case res.IsSuccess():
		w.WriteHeader(http.StatusOK)
		return nil
	case len(res.ValidationErrors()) > 0:
		w.WriteHeader(http.StatusBadRequest)
		return json.NewEncoder(w).Encode(validationWrapper{Errors: res.ValidationErrors()})
	default:
		w.WriteHeader(http.StatusBadRequest)
		return json.NewEncoder(w).Encode(errorWrapper{Error: res.ErrorMessage()})
	}
}

// NewHTTPClient builds an endpoint Set talking to one API instance. Each
// endpoint carries its own limiter and breaker, mirroring the server sets.
func NewHTTPClient(instance string, logger log.Logger) (taskendpoint.Set, error) {
	u, err := parseInstance(instance)
	if err != nil {
		return taskendpoint.Set{}, err
	}

	limiter := ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Second), 100))
	wrap := func(name string, e endpoint.Endpoint) endpoint.Endpoint {
		e = limiter(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
		}))(e)
		return e
	}

	return taskendpoint.Set{
		CreateTaskEndpoint: wrap("CreateTask", httptransport.NewClient(
			"POST", u, encodeCreateTaskClientRequest, decodeCreateTaskClientResponse,
		).Endpoint()),
		TaskEndpoint: wrap("Task", httptransport.NewClient(
			"GET", u, encodeTaskClientRequest, decodeTaskClientResponse,
		).Endpoint()),
		TasksEndpoint: wrap("Tasks", httptransport.NewClient(
			"GET", u, encodeTasksClientRequest, decodeTasksClientResponse,
		).Endpoint()),
		TasksByUserEndpoint: wrap("TasksByUser", httptransport.NewClient(
			"GET", u, encodeTasksByUserClientRequest, decodeTasksClientResponse,
		).Endpoint()),
		TasksByStatusEndpoint: wrap("TasksByStatus", httptransport.NewClient(
			"GET", u, encodeTasksByStatusClientRequest, decodeTasksClientResponse,
		).Endpoint()),
		OverdueTasksEndpoint: wrap("OverdueTasks", httptransport.NewClient(
			"GET", u, encodeOverdueTasksClientRequest, decodeTasksClientResponse,
		).Endpoint()),
		UpdateTaskEndpoint: wrap("UpdateTask", httptransport.NewClient(
			"PUT", u, encodeUpdateTaskClientRequest, decodeTaskClientResponse,
		).Endpoint()),
		UpdateTaskStatusEndpoint: wrap("UpdateTaskStatus", httptransport.NewClient(
			"PATCH", u, encodeUpdateTaskStatusClientRequest, decodeTaskClientResponse,
		).Endpoint()),
		AssignTaskEndpoint: wrap("AssignTask", httptransport.NewClient(
			"PATCH", u, encodeAssignTaskClientRequest, decodeTaskClientResponse,
		).Endpoint()),
		UnassignTaskEndpoint: wrap("UnassignTask", httptransport.NewClient(
			"PATCH", u, encodeUnassignTaskClientRequest, decodeTaskClientResponse,
		).Endpoint()),
		DeleteTaskEndpoint: wrap("DeleteTask", httptransport.NewClient(
			"DELETE", u, encodeDeleteTaskClientRequest, decodeDeleteTaskClientResponse,
		).Endpoint()),
	}, nil
}

func parseInstance(instance string) (*url.URL, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	return url.Parse(instance)
}

func encodeJSONBody(r *http.Request, v interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Body = io.NopCloser(&buf)
	return nil
}

func encodeCreateTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.CreateTaskRequest)
	r.URL.Path = "/api/tasks"
	r.Header.Set("X-User", req.CreatedBy)
	return encodeJSONBody(r, req)
}

func encodeTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TaskRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/%d", req.TaskID)
	return nil
}

func encodeTasksClientRequest(_ context.Context, r *http.Request, _ interface{}) error {
	r.URL.Path = "/api/tasks"
	return nil
}

func encodeTasksByUserClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TasksByUserRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/user/%d", req.UserID)
	return nil
}

func encodeTasksByStatusClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TasksByStatusRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/status/%d", req.Status)
	return nil
}

func encodeOverdueTasksClientRequest(_ context.Context, r *http.Request, _ interface{}) error {
	r.URL.Path = "/api/tasks/overdue"
	return nil
}

func encodeUpdateTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UpdateTaskRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/%d", req.TaskID)
	r.Header.Set("X-User", req.UpdatedBy)
	return encodeJSONBody(r, req)
}

func encodeUpdateTaskStatusClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UpdateTaskStatusRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/%d/status", req.TaskID)
	r.Header.Set("X-User", req.UpdatedBy)
	return encodeJSONBody(r, req)
}

func encodeAssignTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.AssignTaskRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/%d/assign", req.TaskID)
	r.Header.Set("X-User", req.UpdatedBy)
	return encodeJSONBody(r, req)
}

func encodeUnassignTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UnassignTaskRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/%d/unassign", req.TaskID)
	r.Header.Set("X-User", req.UpdatedBy)
	return nil
}

func encodeDeleteTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.DeleteTaskRequest)
	r.URL.Path = fmt.Sprintf("/api/tasks/%d", req.TaskID)
	return nil
}

// decodeResult reverses encodeResult so the envelope crosses the wire
// intact: 2xx rebuilds success, 400 rebuilds the failure that produced it.
func decodeResult[T any](resp *http.Response) (result.Result[T], error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var data T
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return result.Result[T]{}, err
		}
		return result.Success(data), nil
	}

	var body struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return result.Failure[T](http.StatusText(resp.StatusCode)), nil
	}
	if len(body.Errors) > 0 {
		return result.ValidationFailure[T](body.Errors), nil
	}
	if body.Error != "" {
		return result.Failure[T](body.Error), nil
	}
	return result.Failure[T](http.StatusText(resp.StatusCode)), nil
}

func decodeCreateTaskClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	res, err := decodeResult[taskservice.TaskResponse](resp)
	if err != nil {
		return nil, err
	}
	return taskendpoint.CreateTaskResponse{Result: res}, nil
}

func decodeTaskClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	res, err := decodeResult[taskservice.TaskResponse](resp)
	if err != nil {
		return nil, err
	}
	return taskendpoint.TaskResponse{Result: res}, nil
}

func decodeTasksClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	res, err := decodeResult[[]taskservice.TaskResponse](resp)
	if err != nil {
		return nil, err
	}
	return taskendpoint.TasksResponse{Result: res}, nil
}

func decodeDeleteTaskClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return taskendpoint.DeleteTaskResponse{Result: result.VoidSuccess()}, nil
	}

	var body struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return taskendpoint.DeleteTaskResponse{Result: result.VoidFailure(http.StatusText(resp.StatusCode))}, nil
	}
	switch {
	case len(body.Errors) > 0:
		return taskendpoint.DeleteTaskResponse{Result: result.VoidValidationFailure(body.Errors)}, nil
	case body.Error != "":
		return taskendpoint.DeleteTaskResponse{Result: result.VoidFailure(body.Error)}, nil
	}
	return taskendpoint.DeleteTaskResponse{Result: result.VoidFailure(http.StatusText(resp.StatusCode))}, nil
}
