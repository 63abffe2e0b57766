package client

import (
	"io"
	"time"

	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userendpoint"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/usertransport"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	"github.com/go-kit/kit/sd/lb"
)

// New returns an endpoint Set backed by the instances the instancer reports.
func New(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) (userendpoint.Set, error) {
	endpoints := userendpoint.Set{}
	{
		factory := factoryFor(userendpoint.MakeCreateUserEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.CreateUserEndpoint = retry
	}
	{
		factory := factoryFor(userendpoint.MakeUserEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UserEndpoint = retry
	}
	{
		factory := factoryFor(userendpoint.MakeUserByEmailEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UserByEmailEndpoint = retry
	}
	{
		factory := factoryFor(userendpoint.MakeUsersEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UsersEndpoint = retry
	}
	{
		factory := factoryFor(userendpoint.MakeDeleteUserEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.DeleteUserEndpoint = retry
	}
	return endpoints, nil
}

func factoryFor(makeEndpoint func(userservice.Service) endpoint.Endpoint, logger log.Logger) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		service, err := usertransport.NewHTTPClient(instance, logger)
		if err != nil {
			return nil, nil, err
		}
		return makeEndpoint(service), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
