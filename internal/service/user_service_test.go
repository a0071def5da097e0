package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/jwt"
)

func newUserFixture() (*fakeUserRepo, *fakePresenceStore, UserService) {
	repo := newFakeUserRepo()
	presence := newFakePresenceStore()
	tokens := jwt.NewManager("test-secret", 15*time.Minute, 24*time.Hour, "test")
	svc := NewUserService(repo, tokens, presence, 90*time.Second)
	return repo, presence, svc
}

func TestRegisterAndLogin(t *testing.T) {
	_, _, svc := newUserFixture()

	reg, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Error("missing tokens after register")
	}

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("login user = %q, want %q", login.User.ID, reg.User.ID)
	}
}

func TestLoginLogoutTogglesPresence(t *testing.T) {
	_, presence, svc := newUserFixture()

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "alice@example.com", Username: "alice", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if on, _ := presence.IsOnline(context.Background(), login.User.ID); !on {
		t.Error("user not marked online after login")
	}

	if err := svc.Logout(context.Background(), login.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if on, _ := presence.IsOnline(context.Background(), login.User.ID); on {
		t.Error("user still online after logout")
	}
}

func TestListUsersOverlaysPresence(t *testing.T) {
	_, _, svc := newUserFixture()

	for _, name := range []string{"alice", "bob"} {
		if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
			Email: name + "@example.com", Username: name, Password: "secret123",
		}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}
	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "alice@example.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	for _, u := range users {
		want := u.Username == "alice"
		if u.IsOnline != want {
			t.Errorf("IsOnline(%s) = %v, want %v", u.Username, u.IsOnline, want)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, _, svc := newUserFixture()

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "alice@example.com", Username: "alice", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	_, _, svc := newUserFixture()
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	_, _, svc := newUserFixture()

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "alice@example.com", Username: "alice", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "alice@example.com", Username: "alice2", Password: "secret123",
	})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("err = %v, want ErrDuplicateUser", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	_, _, svc := newUserFixture()

	reg, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "alice@example.com", Username: "alice", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), &domain.RefreshTokenRequest{
		RefreshToken: reg.RefreshToken,
	})
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.User.ID != reg.User.ID {
		t.Errorf("refreshed user = %q, want %q", refreshed.User.ID, reg.User.ID)
	}
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	_, _, svc := newUserFixture()
	_, err := svc.RefreshToken(context.Background(), &domain.RefreshTokenRequest{RefreshToken: "not-a-token"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
