package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
)

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "firstuser")

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if !user.IsActive {
		t.Error("CreateUser() should mark the user active")
	}

	taken, err := db.usernameTaken(context.Background(), "firstuser")
	if err != nil {
		t.Fatalf("usernameTaken() error = %v", err)
	}
	if !taken {
		t.Error("usernameTaken() = false after creating the user")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "taken")

	err := db.CreateUser(context.Background(), &model.User{
		Username:     "taken",
		PasswordHash: "hash",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "findme")

	found, err := db.GetUserByUsername(context.Background(), "findme")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.LastLoginAt != nil {
		t.Error("LastLoginAt should be nil before first login")
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByUsername(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestTouchLastLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "regular")

	if err := db.TouchLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("TouchLastLogin() error = %v", err)
	}

	found, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.LastLoginAt == nil {
		t.Error("LastLoginAt should be set after TouchLastLogin")
	}
}

func TestTouchLastLogin_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.TouchLastLogin(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
