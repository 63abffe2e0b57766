package tasktransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	taskgorm "github.com/asshiddiq1306/TaskManagement/tasksvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskendpoint"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskservice"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/tasktransport"
	"github.com/asshiddiq1306/TaskManagement/usersvc"
	usergorm "github.com/asshiddiq1306/TaskManagement/usersvc/db/gorm"
	"github.com/go-kit/kit/log"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newServer(t *testing.T) (*httptest.Server, usersvc.UserRepository) {
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

	nop := log.NewNopLogger()
	users := usergorm.NewUserRepository(db)
	svc := taskservice.New(taskgorm.NewTaskRepository(db), users, nop)
	handler := tasktransport.NewHTTPHandler(taskendpoint.New(svc, nop), nop)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, users
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHTTPCreateTask(t *testing.T) {
	srv, _ := newServer(t)

	t.Run("created", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/tasks", map[string]interface{}{
			"title":    "Ship it",
			"priority": 2,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("got status %d", resp.StatusCode)
		}
		var task taskservice.TaskResponse
		if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
			t.Fatal(err)
		}
		if task.Title != "Ship it" || task.Status != tasksvc.StatusPending {
			t.Errorf("got %+v", task)
		}
		// No X-User header sent, so the default audit identity applies.
		if task.CreatedBy != "api-user" {
			t.Errorf("got createdBy %q", task.CreatedBy)
		}
	})

	t.Run("validation failures return the list", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/tasks", map[string]interface{}{
			"title":    "",
			"priority": 1,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("got status %d", resp.StatusCode)
		}
		var body struct {
			Errors []string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if len(body.Errors) != 1 || body.Errors[0] != "Title cannot be empty" {
			t.Errorf("got %v", body.Errors)
		}
	})

	t.Run("out-of-range priority is rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/tasks", map[string]interface{}{
			"title":    "Sneaky",
			"priority": 99,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("got status %d", resp.StatusCode)
		}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Error == "" {
			t.Error("no error message returned")
		}
	})

	t.Run("X-User header is the audit identity", func(t *testing.T) {
		buf, _ := json.Marshal(map[string]interface{}{"title": "Mine", "priority": 1})
		req, err := http.NewRequest("POST", srv.URL+"/api/tasks", bytes.NewReader(buf))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User", "carol")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var task taskservice.TaskResponse
		if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
			t.Fatal(err)
		}
		if task.CreatedBy != "carol" {
			t.Errorf("got createdBy %q", task.CreatedBy)
		}
	})
}

func TestHTTPBusinessFailuresAreBadRequests(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/tasks/9999")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Task not found" {
		t.Errorf("got %q", body.Error)
	}
}

func TestHTTPRouteLiteralsBeforeID(t *testing.T) {
	srv, _ := newServer(t)

	// "overdue" must hit the overdue route, not parse as a task id.
	resp, err := http.Get(srv.URL + "/api/tasks/overdue")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var tasks []taskservice.TaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %v", tasks)
	}
}

func TestHTTPClientRoundTrip(t *testing.T) {
	srv, users := newServer(t)
	ctx := context.Background()

	set, err := tasktransport.NewHTTPClient(srv.URL, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	alice, err := usersvc.NewUser("Alice", "alice@example.com", "tester")
	if err != nil {
		t.Fatal(err)
	}
	if err := users.Create(ctx, alice); err != nil {
		t.Fatal(err)
	}

	res := set.CreateTask(ctx, taskservice.CreateTaskParams{
		Title:          "Remote",
		Priority:       tasksvc.PriorityHigh,
		AssignedUserID: &alice.ID,
	}, "dave")
	if !res.IsSuccess() {
		t.Fatalf("got %q %v", res.ErrorMessage(), res.ValidationErrors())
	}
	created := res.Data()
	if created.CreatedBy != "dave" {
		t.Errorf("got createdBy %q", created.CreatedBy)
	}
	if created.AssignedUserName == nil || *created.AssignedUserName != "Alice" {
		t.Errorf("got assignee %v", created.AssignedUserName)
	}

	t.Run("failure crosses the wire as a failure", func(t *testing.T) {
		res := set.Task(ctx, 9999)
		if res.IsSuccess() || res.ErrorMessage() != "Task not found" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})

	t.Run("validation errors cross the wire", func(t *testing.T) {
		res := set.UpdateTask(ctx, created.ID, taskservice.UpdateTaskParams{
			Title:    "",
			Priority: tasksvc.PriorityLow,
		}, "dave")
		if res.IsSuccess() {
			t.Fatal("want failure")
		}
		errs := res.ValidationErrors()
		if len(errs) != 1 || errs[0] != "Title cannot be empty" {
			t.Errorf("got %v", errs)
		}
	})

	t.Run("out-of-range priority on update is rejected", func(t *testing.T) {
		res := set.UpdateTask(ctx, created.ID, taskservice.UpdateTaskParams{
			Title:    "Still remote",
			Priority: tasksvc.Priority(99),
		}, "dave")
		if res.IsSuccess() {
			t.Fatal("want failure")
		}
		stored := set.Task(ctx, created.ID)
		if !stored.IsSuccess() || stored.Data().Priority != tasksvc.PriorityHigh {
			t.Errorf("priority changed: %v", stored.Data().Priority)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if res := set.UnassignTask(ctx, created.ID, "dave"); !res.IsSuccess() {
			t.Fatalf("got %q", res.ErrorMessage())
		}
		if res := set.DeleteTask(ctx, created.ID); !res.IsSuccess() {
			t.Fatalf("got %q", res.ErrorMessage())
		}
		if res := set.DeleteTask(ctx, created.ID); res.IsSuccess() || res.ErrorMessage() != "Task not found" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})
}
