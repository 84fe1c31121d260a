package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

type memTokens map[string]string

func (m memTokens) Get(_ context.Context, k string) (string, bool, error) {
	v, ok := m[k]
	return v, ok, nil
}
func (m memTokens) Set(_ context.Context, k, v string) error { m[k] = v; return nil }
func (m memTokens) Delete(_ context.Context, k string) error { delete(m, k); return nil }

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, memTokens) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tokens := memTokens{}
	session := NewSession(context.Background(), tokens)
	return NewClient(srv.URL+"/api", session), tokens
}

func TestDoSendsHeadersAndDecodes(t *testing.T) {
	var gotAuth, gotRequestID, gotQuery, gotPath string
	var gotBody map[string]any

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.Query().Get(ParamProjectID)
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[{"id":1}]`))
	})
	c.Session().SetToken(context.Background(), "tok")

	var out []map[string]any
	q := url.Values{ParamProjectID: {"5"}}
	if err := c.Do(context.Background(), http.MethodPost, PathTasks, q, map[string]string{"title": "x"}, &out); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected X-Request-ID header")
	}
	if gotQuery != "5" || gotPath != "/api/tasks" {
		t.Errorf("unexpected request target %s?projectId=%s", gotPath, gotQuery)
	}
	if gotBody["title"] != "x" {
		t.Errorf("expected body to be forwarded, got %v", gotBody)
	}
	if len(out) != 1 {
		t.Errorf("expected one decoded item, got %v", out)
	}
}

func TestDoUnwrapsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"id":9}}`))
	})

	var out struct{ ID int64 }
	if err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != 9 {
		t.Errorf("expected envelope data to be decoded, got %+v", out)
	}
}

func TestDoEmptyBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	out := struct{ ID int64 }{ID: 3}
	if err := c.Do(context.Background(), http.MethodDelete, "/x/3", nil, nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != 3 {
		t.Error("expected out to be left untouched")
	}
}

func TestDoErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		kind    Kind
	}{
		{"error field", 400, `{"error":"Title is required"}`, "Title is required", KindClient},
		{"message field", 409, `{"message":"Email exists"}`, "Email exists", KindClient},
		{"no body", 404, ``, "Item not found", KindClient},
		{"forbidden", 403, `not json`, "You don't have permission to perform this action", KindClient},
		{"server", 500, `{}`, "Server error - please try again later", KindServer},
		{"bad gateway", 502, `{}`, "Server error - please try again later", KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.Do(context.Background(), http.MethodGet, PathTeams, nil, nil, nil)
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.UserMessage() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, apiErr.UserMessage())
			}
			if apiErr.Kind() != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, apiErr.Kind())
			}
		})
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(base, nil)
	err := c.Do(context.Background(), http.MethodGet, PathTeams, nil, nil, nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != 0 || apiErr.Kind() != KindNetwork {
		t.Errorf("expected network error, got status %d kind %v", apiErr.Status, apiErr.Kind())
	}
	if UserMessage(err) != GenericMessage(0) {
		t.Errorf("unexpected user message %q", UserMessage(err))
	}
}

func TestUnauthorizedClearsSessionAndNotifies(t *testing.T) {
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c.Session().SetToken(context.Background(), "expired")

	calls := 0
	unsubscribe := c.OnUnauthenticated(func() { calls++ })

	err := c.Do(context.Background(), http.MethodGet, PathTeams, nil, nil, nil)
	if !IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if c.Session().Authenticated() {
		t.Error("expected token to be cleared")
	}
	if _, ok := tokens[SessionTokenKey]; ok {
		t.Error("expected persisted token to be removed")
	}
	if calls != 1 {
		t.Errorf("expected hook to fire once, got %d", calls)
	}

	unsubscribe()
	c.Do(context.Background(), http.MethodGet, PathTeams, nil, nil, nil)
	if calls != 1 {
		t.Error("expected no calls after unsubscribe")
	}
}

func TestSessionRestoreAndCurrentUser(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 17}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	tokens := memTokens{SessionTokenKey: signed}
	s := NewSession(context.Background(), tokens)
	if s.Token() != signed {
		t.Fatal("expected token to be restored from store")
	}

	id, ok := s.CurrentUserID()
	if !ok || id != 17 {
		t.Errorf("expected user 17, got %d ok=%v", id, ok)
	}

	s.SetToken(context.Background(), "not-a-jwt")
	if _, ok := s.CurrentUserID(); ok {
		t.Error("expected malformed token to yield no user")
	}
}

func TestItemPaths(t *testing.T) {
	if got := ItemPath(PathTasks, 7); got != "/tasks/7" {
		t.Errorf("ItemPath = %q", got)
	}
	if got := MembersPath(3); got != "/teams/3/members" {
		t.Errorf("MembersPath = %q", got)
	}
}

func TestErrorSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
	}
	for _, tt := range tests {
		err := fmt.Errorf("wrapped: %w", &Error{Status: tt.status})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d should match %v", tt.status, tt.want)
		}
	}
	if errors.Is(&Error{Status: 500}, ErrNotFound) {
		t.Error("500 should not match ErrNotFound")
	}
}
