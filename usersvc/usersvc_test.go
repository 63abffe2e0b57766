package usersvc

import (
	"errors"
	"testing"
)

func TestNewUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		user, err := NewUser("Alice", "alice@example.com", "admin")
		if err != nil {
			t.Fatal(err)
		}
		if user.Name != "Alice" || user.Email != "alice@example.com" {
			t.Errorf("got %+v", user)
		}
		if user.CreatedBy != "admin" {
			t.Errorf("got createdBy %q", user.CreatedBy)
		}
		if user.CreatedAt.IsZero() {
			t.Error("createdAt not set")
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		user, err := NewUser("  Alice  ", "  alice@example.com  ", "admin")
		if err != nil {
			t.Fatal(err)
		}
		if user.Name != "Alice" || user.Email != "alice@example.com" {
			t.Errorf("got %+v", user)
		}
	})

	t.Run("collects all violations", func(t *testing.T) {
		_, err := NewUser("   ", "", "admin")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		want := []string{"Name cannot be empty", "Email cannot be empty"}
		if len(verr.Messages) != len(want) {
			t.Fatalf("got %v, want %v", verr.Messages, want)
		}
		for i, msg := range want {
			if verr.Messages[i] != msg {
				t.Errorf("message %d: got %q, want %q", i, verr.Messages[i], msg)
			}
		}
	})
}
