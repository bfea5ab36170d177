package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/auth"
	"github.com/sakif/age-wisdom/internal/model"
)

// mockUserRepo implements repository.UserRepository in memory with the same
// uniqueness behavior as the sqlite store.
type mockUserRepo struct {
	byID       map[string]*model.User
	byName     map[string]*model.User
	nextID     int
	lastTouch  string
	touchFails bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:   make(map[string]*model.User),
		byName: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if _, exists := m.byName[user.Username]; exists {
		return apperror.Conflict("username", user.Username)
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now().UTC()
	user.IsActive = true
	stored := *user
	m.byID[user.ID] = &stored
	m.byName[user.Username] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := m.byName[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, id string) error {
	if m.touchFails {
		return errors.New("mock: touch failed")
	}
	m.lastTouch = id
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	repo := newMockUserRepo()
	svc := NewAuthService(repo, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), testLogger())
	return svc, repo
}

// =========================================================================
// SIGN-UP TESTS
// =========================================================================

func TestSignUp_Success(t *testing.T) {
	svc, repo := newTestAuthService(t)

	result, err := svc.SignUp(context.Background(), "alice", "secret-pass")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	if result.User.ID == "" || result.Token == "" {
		t.Errorf("result = %+v, want user ID and token", result)
	}
	stored := repo.byName["alice"]
	if stored.PasswordHash == "secret-pass" || stored.PasswordHash == "" {
		t.Error("password must be stored as a bcrypt hash, never plaintext")
	}
}

func TestSignUp_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "secret-pass"},
		{"password too short", "alice", "pw"},
		{"empty username", "", "secret-pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t)

			_, err := svc.SignUp(context.Background(), tt.username, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "secret-pass"); err != nil {
		t.Fatalf("first SignUp() error = %v", err)
	}

	_, err := svc.SignUp(ctx, "alice", "other-pass")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// SIGN-IN TESTS
// =========================================================================

func TestSignIn_Success(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	signup, err := svc.SignUp(ctx, "alice", "secret-pass")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	result, err := svc.SignIn(ctx, "alice", "secret-pass")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if result.User.ID != signup.User.ID {
		t.Errorf("signed in as %s, want %s", result.User.ID, signup.User.ID)
	}
	if result.Token == "" {
		t.Error("SignIn() returned an empty token")
	}
	if repo.lastTouch != signup.User.ID {
		t.Errorf("last login recorded for %q, want %q", repo.lastTouch, signup.User.ID)
	}
}

func TestSignIn_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	// Both failure modes must produce the same Unauthorized error so the
	// response doesn't reveal whether the username exists.
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "secret-pass"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	_, errWrongPass := svc.SignIn(ctx, "alice", "bad-pass")
	_, errNoUser := svc.SignIn(ctx, "nobody", "secret-pass")

	for _, err := range []error{errWrongPass, errNoUser} {
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Errorf("messages differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestSignIn_TouchFailureIsNotFatal(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "secret-pass"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	repo.touchFails = true

	if _, err := svc.SignIn(ctx, "alice", "secret-pass"); err != nil {
		t.Errorf("SignIn() error = %v, want success despite touch failure", err)
	}
}

// =========================================================================
// PROFILE TESTS
// =========================================================================

func TestMe(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	signup, err := svc.SignUp(ctx, "alice", "secret-pass")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	user, err := svc.Me(ctx, signup.User.ID)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}

	if _, err := svc.Me(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Me(missing) error = %v, want ErrNotFound", err)
	}
}
