package webui_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	taskgorm "github.com/asshiddiq1306/TaskManagement/tasksvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskservice"
	"github.com/asshiddiq1306/TaskManagement/usersvc"
	usergorm "github.com/asshiddiq1306/TaskManagement/usersvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
	"github.com/asshiddiq1306/TaskManagement/webui"
	"github.com/go-kit/kit/log"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newServer(t *testing.T) (*httptest.Server, tasksvc.TaskRepository) {
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
	tasks := taskgorm.NewTaskRepository(db)
	users := usergorm.NewUserRepository(db)

	handler, err := webui.NewHandler(
		taskservice.New(tasks, users, nop),
		userservice.New(users, tasks, nop),
		nop,
	)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return srv, tasks
}

// The test client must not follow the post-submit redirects; the interesting
// part is the immediate response.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestCreateTaskForm(t *testing.T) {
	t.Run("valid submission redirects to the list", func(t *testing.T) {
		srv, tasks := newServer(t)

		resp, err := noRedirectClient().PostForm(srv.URL+"/tasks", url.Values{
			"title":    {"From the form"},
			"priority": {"High"},
		})
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("got status %d", resp.StatusCode)
		}

		all, err := tasks.FindAll(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 || all[0].Title != "From the form" {
			t.Errorf("got %v", all)
		}
	})

	t.Run("unparsable assignee re-renders with an error", func(t *testing.T) {
		srv, tasks := newServer(t)

		resp, err := noRedirectClient().PostForm(srv.URL+"/tasks", url.Values{
			"title":          {"With assignee"},
			"priority":       {"Low"},
			"assignedUserId": {"not-a-number"},
		})
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("got status %d, want the form back", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(body), "Choose a valid user to assign") {
			t.Error("error message not shown")
		}

		all, err := tasks.FindAll(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 0 {
			t.Errorf("task created despite the bad assignee: %v", all)
		}
	})

	t.Run("validation failures re-render with the messages", func(t *testing.T) {
		srv, _ := newServer(t)

		resp, err := noRedirectClient().PostForm(srv.URL+"/tasks", url.Values{
			"title":    {"   "},
			"priority": {"Low"},
		})
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("got status %d, want the form back", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(body), "Title cannot be empty") {
			t.Error("validation message not shown")
		}
	})
}
