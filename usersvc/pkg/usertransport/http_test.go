package usertransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	taskgorm "github.com/asshiddiq1306/TaskManagement/tasksvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/usersvc"
	usergorm "github.com/asshiddiq1306/TaskManagement/usersvc/db/gorm"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userendpoint"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/usertransport"
	"github.com/go-kit/kit/log"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newServer(t *testing.T) *httptest.Server {
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
	svc := userservice.New(usergorm.NewUserRepository(db), taskgorm.NewTaskRepository(db), nop)
	handler := usertransport.NewHTTPHandler(userendpoint.New(svc, nop), nop)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func createUser(t *testing.T, url, name, email string) userservice.UserResponse {
	t.Helper()
	buf, _ := json.Marshal(map[string]string{"name": name, "email": email})
	resp, err := http.Post(url+"/api/users", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var user userservice.UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatal(err)
	}
	return user
}

func TestHTTPUsers(t *testing.T) {
	srv := newServer(t)

	alice := createUser(t, srv.URL, "Alice", "alice@example.com")
	if alice.Name != "Alice" {
		t.Errorf("got %+v", alice)
	}

	t.Run("duplicate email is a bad request", func(t *testing.T) {
		buf, _ := json.Marshal(map[string]string{"name": "Dup", "email": "alice@example.com"})
		resp, err := http.Post(srv.URL+"/api/users", "application/json", bytes.NewReader(buf))
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
		if body.Error != "Email already exists" {
			t.Errorf("got %q", body.Error)
		}
	})

	t.Run("email route wins over the id route", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/users/email/alice@example.com")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("got status %d", resp.StatusCode)
		}
		var user userservice.UserResponse
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			t.Fatal(err)
		}
		if user.ID != alice.ID {
			t.Errorf("got %+v", user)
		}
	})
}

func TestHTTPUserClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	set, err := usertransport.NewHTTPClient(srv.URL, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	res := set.CreateUser(ctx, "Bob", "bob@example.com", "dave")
	if !res.IsSuccess() {
		t.Fatalf("got %q %v", res.ErrorMessage(), res.ValidationErrors())
	}
	bob := res.Data()

	t.Run("lookup", func(t *testing.T) {
		res := set.User(ctx, bob.ID)
		if !res.IsSuccess() || res.Data().Name != "Bob" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("validation errors cross the wire", func(t *testing.T) {
		res := set.CreateUser(ctx, "", "", "dave")
		if res.IsSuccess() {
			t.Fatal("want failure")
		}
		if len(res.ValidationErrors()) != 2 {
			t.Errorf("got %v", res.ValidationErrors())
		}
	})

	t.Run("delete", func(t *testing.T) {
		if res := set.DeleteUser(ctx, bob.ID); !res.IsSuccess() {
			t.Fatalf("got %q", res.ErrorMessage())
		}
		if res := set.DeleteUser(ctx, bob.ID); res.IsSuccess() || res.ErrorMessage() != "User not found" {
			t.Errorf("got %q", res.ErrorMessage())
		}
	})
}
