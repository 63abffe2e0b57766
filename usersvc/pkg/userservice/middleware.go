package userservice

import (
	"context"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
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

func (mw loggingMiddleware) CreateUser(ctx context.Context, name, email, createdBy string) (res result.Result[UserResponse]) {
	defer func() {
		mw.logger.Log(
			"method", "CreateUser",
			"name", name,
			"created_by", createdBy,
			"ok", res.IsSuccess(),
			"err", res.ErrorMessage(),
		)
	}()
	return mw.next.CreateUser(ctx, name, email, createdBy)
}

func (mw loggingMiddleware) User(ctx context.Context, id uint64) (res result.Result[UserResponse]) {
	defer func() {
		mw.logger.Log("method", "User", "user_id", id, "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.User(ctx, id)
}

func (mw loggingMiddleware) UserByEmail(ctx context.Context, email string) (res result.Result[UserResponse]) {
	defer func() {
		mw.logger.Log("method", "UserByEmail", "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.UserByEmail(ctx, email)
}

func (mw loggingMiddleware) Users(ctx context.Context) (res result.Result[[]UserResponse]) {
	defer func() {
		mw.logger.Log("method", "Users", "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.Users(ctx)
}

func (mw loggingMiddleware) DeleteUser(ctx context.Context, id uint64) (res result.Void) {
	defer func() {
		mw.logger.Log("method", "DeleteUser", "user_id", id, "ok", res.IsSuccess(), "err", res.ErrorMessage())
	}()
	return mw.next.DeleteUser(ctx, id)
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

func (mw instrumentingMiddleware) CreateUser(ctx context.Context, name, email, createdBy string) result.Result[UserResponse] {
	defer mw.instrument("create_user", time.Now())
	return mw.next.CreateUser(ctx, name, email, createdBy)
}

func (mw instrumentingMiddleware) User(ctx context.Context, id uint64) result.Result[UserResponse] {
	defer mw.instrument("user", time.Now())
	return mw.next.User(ctx, id)
}

func (mw instrumentingMiddleware) UserByEmail(ctx context.Context, email string) result.Result[UserResponse] {
	defer mw.instrument("user_by_email", time.Now())
	return mw.next.UserByEmail(ctx, email)
}

func (mw instrumentingMiddleware) Users(ctx context.Context) result.Result[[]UserResponse] {
	defer mw.instrument("users", time.Now())
	return mw.next.Users(ctx)
}

func (mw instrumentingMiddleware) DeleteUser(ctx context.Context, id uint64) result.Void {
	defer mw.instrument("delete_user", time.Now())
	return mw.next.DeleteUser(ctx, id)
}
