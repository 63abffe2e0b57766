package userservice_test

import (
	"context"
	"testing"

	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	taskgorm "github.com/asshiddiq1306/TaskManagement/tasksvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/usersvc"
	usergorm "github.com/asshiddiq1306/TaskManagement/usersvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
	"github.com/go-kit/kit/log"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	svc   userservice.Service
	users usersvc.UserRepository
	tasks tasksvc.TaskRepository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := stdgorm.Open(sqlite.Open(":memory:"), &stdgorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&tasksvc.Task{}, &usersvc.User{}); err != nil {
		t.Fatal(err)
	}

	users := usergorm.NewUserRepository(db)
	tasks := taskgorm.NewTaskRepository(db)
	return fixture{
		svc:   userservice.New(users, tasks, log.NewNopLogger()),
		users: users,
		tasks: tasks,
	}
}

func (f fixture) addUser(t *testing.T, name, email string) userservice.UserResponse {
	t.Helper()
	res := f.svc.CreateUser(context.Background(), name, email, "tester")
	if !res.IsSuccess() {
		t.Fatalf("create user: %q %v", res.ErrorMessage(), res.ValidationErrors())
	}
	return res.Data()
}

func (f fixture) assignTask(t *testing.T, userID uint64) *tasksvc.Task {
	t.Helper()
	task, err := tasksvc.NewTask("Chore", "", nil, tasksvc.PriorityLow, "tester")
	if err != nil {
		t.Fatal(err)
	}
	task.AssignTo(userID, "tester")
	if err := f.tasks.Create(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	return task
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		got := f.addUser(t, "Alice", "alice@example.com")
		if got.Name != "Alice" || got.Email != "alice@example.com" {
			t.Errorf("got %+v", got)
		}
		if got.TaskCount != 0 {
			t.Errorf("got task count %d", got.TaskCount)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		f := setup(t)
		res := f.svc.CreateUser(ctx, "", "", "tester")
		if res.IsSuccess() {
			t.Fatal("want failure")
		}
		errs := res.ValidationErrors()
		if len(errs) != 2 || errs[0] != "Name cannot be empty" || errs[1] != "Email cannot be empty" {
			t.Errorf("got %v", errs)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := setup(t)
		f.addUser(t, "Alice", "alice@example.com")

		res := f.svc.CreateUser(ctx, "Other Alice", "alice@example.com", "tester")
		if res.IsSuccess() || res.ErrorMessage() != "Email already exists" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})

	t.Run("same email with different case is a new user", func(t *testing.T) {
		f := setup(t)
		f.addUser(t, "Alice", "alice@example.com")

		res := f.svc.CreateUser(ctx, "Shouting Alice", "ALICE@example.com", "tester")
		if !res.IsSuccess() {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		f := setup(t)
		alice := f.addUser(t, "Alice", "alice@example.com")

		res := f.svc.User(ctx, alice.ID)
		if !res.IsSuccess() || res.Data().Name != "Alice" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		f := setup(t)
		res := f.svc.User(ctx, 9999)
		if res.IsSuccess() || res.ErrorMessage() != "User not found" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})

	t.Run("by email", func(t *testing.T) {
		f := setup(t)
		f.addUser(t, "Alice", "alice@example.com")

		res := f.svc.UserByEmail(ctx, "alice@example.com")
		if !res.IsSuccess() || res.Data().Name != "Alice" {
			t.Errorf("got %+v", res)
		}

		if res := f.svc.UserByEmail(ctx, "nobody@example.com"); res.IsSuccess() || res.ErrorMessage() != "User not found" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})

	t.Run("listing carries task counts", func(t *testing.T) {
		f := setup(t)
		alice := f.addUser(t, "Alice", "alice@example.com")
		f.addUser(t, "Bob", "bob@example.com")
		f.assignTask(t, alice.ID)
		f.assignTask(t, alice.ID)

		res := f.svc.Users(ctx)
		if !res.IsSuccess() {
			t.Fatalf("got %q", res.ErrorMessage())
		}
		users := res.Data()
		if len(users) != 2 {
			t.Fatalf("got %d users", len(users))
		}
		if users[0].TaskCount != 2 || users[1].TaskCount != 0 {
			t.Errorf("got counts %d and %d", users[0].TaskCount, users[1].TaskCount)
		}
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("guarded while tasks are assigned", func(t *testing.T) {
		f := setup(t)
		alice := f.addUser(t, "Alice", "alice@example.com")
		task := f.assignTask(t, alice.ID)

		res := f.svc.DeleteUser(ctx, alice.ID)
		if res.IsSuccess() || res.ErrorMessage() != "Cannot delete user with assigned tasks" {
			t.Fatalf("got %q", res.ErrorMessage())
		}

		// Unassigning the task lifts the guard.
		task.Unassign("tester")
		if err := f.tasks.Update(ctx, task); err != nil {
			t.Fatal(err)
		}
		if res := f.svc.DeleteUser(ctx, alice.ID); !res.IsSuccess() {
			t.Fatalf("got %q", res.ErrorMessage())
		}

		if lookup := f.svc.User(ctx, alice.ID); lookup.IsSuccess() {
			t.Error("user still present after delete")
		}
	})

	t.Run("missing user", func(t *testing.T) {
		f := setup(t)
		res := f.svc.DeleteUser(ctx, 9999)
		if res.IsSuccess() || res.ErrorMessage() != "User not found" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})
}
