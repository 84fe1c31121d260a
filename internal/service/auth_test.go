package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tgienger/teamboard/internal/models"
)

func TestLoginStoresSession(t *testing.T) {
	backend, client := newBackend(t)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 7}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	backend.token = signed

	auth := NewAuthService(client, client.Session())
	if auth.Authenticated() {
		t.Fatal("expected a fresh session to be logged out")
	}

	user, err := auth.Login(context.Background(), models.LoginRequest{Email: "dana@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != 7 || user.Email != "dana@example.com" {
		t.Errorf("unexpected user %+v", user)
	}
	if !auth.Authenticated() {
		t.Error("expected session token to be set")
	}
	if id, ok := auth.CurrentUserID(); !ok || id != 7 {
		t.Errorf("CurrentUserID = %d, %v", id, ok)
	}

	// later calls carry the token
	if _, err := NewProjectService(client).Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := backend.lastRequest().Auth; got != "Bearer "+signed {
		t.Errorf("Authorization = %q", got)
	}

	auth.Logout(context.Background())
	if auth.Authenticated() {
		t.Error("expected logout to clear the token")
	}
}

func TestRegisterValidation(t *testing.T) {
	backend, client := newBackend(t)
	auth := NewAuthService(client, client.Session())

	_, err := auth.Register(context.Background(), models.RegisterRequest{Name: "D", Email: "not-an-email", Password: "123"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if backend.requestCount() != 0 {
		t.Error("invalid register reached the server")
	}
}
