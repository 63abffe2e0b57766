// Package usertransport binds the user endpoints to HTTP, on both the server
// and the client side.
package usertransport

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
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userendpoint"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
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

const defaultUser = "api-user"

func NewHTTPHandler(endpoints userendpoint.Set, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	r := mux.NewRouter()

	// /api/users/email/{email} must come before /api/users/{user_id}.
	r.Methods("GET").Path("/api/users/email/{email}").Handler(httptransport.NewServer(
		endpoints.UserByEmailEndpoint,
		decodeUserByEmailRequest,
		encodeUserResponse,
		options...,
	))
	r.Methods("POST").Path("/api/users").Handler(httptransport.NewServer(
		endpoints.CreateUserEndpoint,
		decodeCreateUserRequest,
		encodeCreateUserResponse,
		options...,
	))
	r.Methods("GET").Path("/api/users").Handler(httptransport.NewServer(
		endpoints.UsersEndpoint,
		decodeUsersRequest,
		encodeUsersResponse,
		options...,
	))
	r.Methods("GET").Path("/api/users/{user_id}").Handler(httptransport.NewServer(
		endpoints.UserEndpoint,
		decodeUserRequest,
		encodeUserResponse,
		options...,
	))
	r.Methods("DELETE").Path("/api/users/{user_id}").Handler(httptransport.NewServer(
		endpoints.DeleteUserEndpoint,
		decodeDeleteUserRequest,
		encodeDeleteUserResponse,
		options...,
	))

	return r
}

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

func decodeCreateUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, "malformed user payload")
	}
	req.CreatedBy = currentUser(r)
	return req, nil
}

func decodeUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", ErrBadRequest)
	}
	return userendpoint.UserRequest{UserID: id}, nil
}

func decodeUserByEmailRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return userendpoint.UserByEmailRequest{Email: mux.Vars(r)["email"]}, nil
}

func decodeUsersRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return userendpoint.UsersRequest{}, nil
}

func decodeDeleteUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", ErrBadRequest)
	}
	return userendpoint.DeleteUserRequest{UserID: id}, nil
}

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

func encodeCreateUserResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeResult(w, response.(userendpoint.UserResponse).Result, http.StatusCreated)
}

func encodeUserResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeResult(w, response.(userendpoint.UserResponse).Result, http.StatusOK)
}

func encodeUsersResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeResult(w, response.(userendpoint.UsersResponse).Result, http.StatusOK)
}

func encodeDeleteUserResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(userendpoint.DeleteUserResponse).Result
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

// NewHTTPClient builds an endpoint Set talking to one API instance.
func NewHTTPClient(instance string, logger log.Logger) (userendpoint.Set, error) {
	u, err := parseInstance(instance)
	if err != nil {
		return userendpoint.Set{}, err
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

	return userendpoint.Set{
		CreateUserEndpoint: wrap("CreateUser", httptransport.NewClient(
			"POST", u, encodeCreateUserClientRequest, decodeUserClientResponse,
		).Endpoint()),
		UserEndpoint: wrap("User", httptransport.NewClient(
			"GET", u, encodeUserClientRequest, decodeUserClientResponse,
		).Endpoint()),
		UserByEmailEndpoint: wrap("UserByEmail", httptransport.NewClient(
			"GET", u, encodeUserByEmailClientRequest, decodeUserClientResponse,
		).Endpoint()),
		UsersEndpoint: wrap("Users", httptransport.NewClient(
			"GET", u, encodeUsersClientRequest, decodeUsersClientResponse,
		).Endpoint()),
		DeleteUserEndpoint: wrap("DeleteUser", httptransport.NewClient(
			"DELETE", u, encodeDeleteUserClientRequest, decodeDeleteUserClientResponse,
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

func encodeCreateUserClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(userendpoint.CreateUserRequest)
	r.URL.Path = "/api/users"
	r.Header.Set("X-User", req.CreatedBy)
	return encodeJSONBody(r, req)
}

func encodeUserClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(userendpoint.UserRequest)
	r.URL.Path = fmt.Sprintf("/api/users/%d", req.UserID)
	return nil
}

func encodeUserByEmailClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(userendpoint.UserByEmailRequest)
	r.URL.Path = "/api/users/email/" + url.PathEscape(req.Email)
	return nil
}

func encodeUsersClientRequest(_ context.Context, r *http.Request, _ interface{}) error {
	r.URL.Path = "/api/users"
	return nil
}

func encodeDeleteUserClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(userendpoint.DeleteUserRequest)
	r.URL.Path = fmt.Sprintf("/api/users/%d", req.UserID)
	return nil
}

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

func decodeUserClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	res, err := decodeResult[userservice.UserResponse](resp)
	if err != nil {
		return nil, err
	}
	return userendpoint.UserResponse{Result: res}, nil
}

func decodeUsersClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	res, err := decodeResult[[]userservice.UserResponse](resp)
	if err != nil {
		return nil, err
	}
	return userendpoint.UsersResponse{Result: res}, nil
}

func decodeDeleteUserClientResponse(_ context.Context, resp *http.Response) (interface{}, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return userendpoint.DeleteUserResponse{Result: result.VoidSuccess()}, nil
	}

	var body struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return userendpoint.DeleteUserResponse{Result: result.VoidFailure(http.StatusText(resp.StatusCode))}, nil
	}
	switch {
	case len(body.Errors) > 0:
		return userendpoint.DeleteUserResponse{Result: result.VoidValidationFailure(body.Errors)}, nil
	case body.Error != "":
		return userendpoint.DeleteUserResponse{Result: result.VoidFailure(body.Error)}, nil
	}
	return userendpoint.DeleteUserResponse{Result: result.VoidFailure(http.StatusText(resp.StatusCode))}, nil
}
