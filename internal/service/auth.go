package service

import (
	"context"
	"net/http"

	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/models"
)

// AuthService logs in and out and keeps the session token current
type AuthService struct {
	doer    api.Doer
	session *api.Session
}

func NewAuthService(doer api.Doer, session *api.Session) *AuthService {
	return &AuthService{doer: doer, session: session}
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (models.User, error) {
	return s.authenticate(ctx, api.PathLogin, req)
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	return s.authenticate(ctx, api.PathRegister, req)
}

func (s *AuthService) authenticate(ctx context.Context, path string, req any) (models.User, error) {
	if err := validate.Struct(req); err != nil {
		return models.User{}, err
	}
	var resp models.AuthResponse
	if err := s.doer.Do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return models.User{}, err
	}
	if resp.Token != "" {
		s.session.SetToken(ctx, resp.Token)
	}
	return resp.User, nil
}

func (s *AuthService) Logout(ctx context.Context) {
	s.session.Clear(ctx)
}

// Authenticated reports whether a session token is present
func (s *AuthService) Authenticated() bool {
	return s.session.Authenticated()
}

// CurrentUserID returns the id of the logged in user, if known
func (s *AuthService) CurrentUserID() (int64, bool) {
	return s.session.CurrentUserID()
}
