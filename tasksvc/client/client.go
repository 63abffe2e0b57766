package client

import (
	"io"
	"time"

	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskendpoint"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskservice"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/tasktransport"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	"github.com/go-kit/kit/sd/lb"
)

// New returns an endpoint Set backed by the instances the instancer reports.
// Pass a consul instancer in service-discovery setups or sd.FixedInstancer
// when the API address is known up front.
func New(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) (taskendpoint.Set, error) {
	endpoints := taskendpoint.Set{}
	{
		factory := factoryFor(taskendpoint.MakeCreateTaskEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.CreateTaskEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeTaskEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.TaskEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeTasksEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.TasksEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeTasksByUserEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.TasksByUserEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeTasksByStatusEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.TasksByStatusEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeOverdueTasksEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.OverdueTasksEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeUpdateTaskEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UpdateTaskEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeUpdateTaskStatusEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UpdateTaskStatusEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeAssignTaskEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.AssignTaskEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeUnassignTaskEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UnassignTaskEndpoint = retry
	}
	{
		factory := factoryFor(taskendpoint.MakeDeleteTaskEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.DeleteTaskEndpoint = retry
	}
	return endpoints, nil
}

func factoryFor(makeEndpoint func(taskservice.Service) endpoint.Endpoint, logger log.Logger) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		service, err := tasktransport.NewHTTPClient(instance, logger)
		if err != nil {
			return nil, nil, err
		}
		return makeEndpoint(service), nopCloser{}, nil
	}
}

// HTTP clients hold no per-instance connection state to release.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }
