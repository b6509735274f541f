package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newUserSvc(t *testing.T) *UserService {
	t.Helper()
	return &UserService{DB: newTestDB(t), BcryptCost: testBcryptCost}
}

func TestSignupAndLogin(t *testing.T) {
	svc := newUserSvc(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Person@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.ID == "" {
		t.Fatal("signup returned user without id")
	}
	if u.Email != "person@example.com" {
		t.Fatalf("email stored as %q, want lowercase", u.Email)
	}

	got, err := svc.Login(ctx, "person@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("login returned user %s, want %s", got.ID, u.ID)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newUserSvc(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "not-an-email", "hunter22"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("bad email: got %v, want ErrMissingFields", err)
	}
	if _, err := svc.Signup(ctx, "a@b.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak password: got %v, want ErrWeakPassword", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newUserSvc(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "a@b.com", "hunter22"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "A@B.com", "hunter22"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup: got %v, want ErrEmailTaken", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newUserSvc(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "a@b.com", "hunter22"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Login(ctx, "a@b.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@b.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateHandleAndDisplayName(t *testing.T) {
	svc := newUserSvc(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Before a handle is set, the display name is the anonymous fallback.
	name, err := svc.DisplayName(ctx, u.ID)
	if err != nil {
		t.Fatalf("DisplayName: %v", err)
	}
	if !strings.HasPrefix(name, "anon-") {
		t.Fatalf("fallback display name = %q, want anon- prefix", name)
	}
	if name != "anon-"+u.ID[:8] {
		t.Fatalf("fallback display name = %q, want anon-%s", name, u.ID[:8])
	}

	if err := svc.UpdateHandle(ctx, u.ID, "night owl"); err != nil {
		t.Fatalf("UpdateHandle: %v", err)
	}
	name, err = svc.DisplayName(ctx, u.ID)
	if err != nil {
		t.Fatalf("DisplayName after handle: %v", err)
	}
	if name != "night owl" {
		t.Fatalf("display name = %q, want chosen handle", name)
	}
}

func TestUpdateHandleValidation(t *testing.T) {
	svc := newUserSvc(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.UpdateHandle(ctx, u.ID, "   "); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("blank handle: got %v, want ErrMissingFields", err)
	}
	if err := svc.UpdateHandle(ctx, "no-such-user", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc := newUserSvc(t)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Get unknown: got %v, want ErrUserNotFound", err)
	}
}
