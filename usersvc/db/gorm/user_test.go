package gorm

import (
	"context"
	"errors"
	"testing"

	"github.com/asshiddiq1306/TaskManagement/usersvc"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *stdgorm.DB {
	t.Helper()
	db, err := stdgorm.Open(sqlite.Open(":memory:"), &stdgorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&usersvc.User{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func mustCreate(t *testing.T, repo usersvc.UserRepository, name, email string) *usersvc.User {
	t.Helper()
	user, err := usersvc.NewUser(name, email, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

func TestUserRepositoryFind(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	alice := mustCreate(t, repo, "Alice", "alice@example.com")

	t.Run("by id", func(t *testing.T) {
		got, err := repo.Find(ctx, alice.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Alice" {
			t.Errorf("got %q", got.Name)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.Find(ctx, 9999)
		if !errors.Is(err, usersvc.ErrUserNotFound) {
			t.Errorf("got %v, want ErrUserNotFound", err)
		}
	})

	t.Run("by email is exact match", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != alice.ID {
			t.Errorf("got %d", got.ID)
		}

		if _, err := repo.FindByEmail(ctx, "ALICE@EXAMPLE.COM"); !errors.Is(err, usersvc.ErrUserNotFound) {
			t.Errorf("case-folded match: got %v, want ErrUserNotFound", err)
		}
	})

	t.Run("all ordered by id", func(t *testing.T) {
		mustCreate(t, repo, "Bob", "bob@example.com")
		users, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(users) != 2 || users[0].Name != "Alice" {
			t.Errorf("got %v", users)
		}
	})
}

func TestUserRepositoryCreateLeavesUpdateAuditEmpty(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	alice := mustCreate(t, repo, "Alice", "alice@example.com")

	got, err := repo.Find(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UpdatedAt != nil {
		t.Errorf("updatedAt set on creation: %v", got.UpdatedAt)
	}
	if got.UpdatedBy != "" {
		t.Errorf("updatedBy set on creation: %q", got.UpdatedBy)
	}
}

func TestUserRepositoryExists(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	alice := mustCreate(t, repo, "Alice", "alice@example.com")

	ok, err := repo.Exists(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("existing user reported missing")
	}

	ok, err = repo.Exists(ctx, 9999)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("missing user reported existing")
	}
}

func TestUserRepositoryDelete(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	alice := mustCreate(t, repo, "Alice", "alice@example.com")
	if err := repo.Delete(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Find(ctx, alice.ID); !errors.Is(err, usersvc.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}

	t.Run("missing", func(t *testing.T) {
		err := repo.Delete(ctx, &usersvc.User{ID: 9999})
		if !errors.Is(err, usersvc.ErrUserNotFound) {
			t.Errorf("got %v, want ErrUserNotFound", err)
		}
	})
}

func TestUserRepositoryTransact(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Transact(ctx, func(tx usersvc.UserRepository) error {
		user, err := usersvc.NewUser("Ghost", "ghost@example.com", "tester")
		if err != nil {
			return err
		}
		if err := tx.Create(ctx, user); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}

	users, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Errorf("got %d users after rollback", len(users))
	}
}
