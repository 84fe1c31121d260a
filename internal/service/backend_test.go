package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tgienger/teamboard/internal/api"
)

// fakeBackend is an in-memory stand-in for the REST server. It answers in
// snake_case like the real one and records every request it sees.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int64
	data     map[string][]map[string]any
	fail     map[string]int
	requests []recorded

	// partialPatch answers PATCH with only the id
	partialPatch bool
	// dropTeamDescription mimics a server that does not store descriptions
	dropTeamDescription bool
	token               string
}

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Auth   string
}

var snakeKeys = map[string]string{
	"teamId":     "team_id",
	"projectId":  "project_id",
	"taskId":     "task_id",
	"assigneeId": "assignee_id",
	"dueDate":    "due_date",
	"orderIndex": "order_index",
	"userId":     "user_id",
}

var listFilters = map[string][2]string{
	"tasks":    {api.ParamProjectID, "project_id"},
	"comments": {api.ParamTaskID, "task_id"},
}

func newBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	b := &fakeBackend{
		nextID: 100,
		data:   make(map[string][]map[string]any),
		fail:   make(map[string]int),
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, api.NewClient(srv.URL+"/api", nil)
}

// seed stores a JSON array of records under a collection
func (b *fakeBackend) seed(t *testing.T, collection, raw string) {
	t.Helper()
	var recs []map[string]any
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.Fatalf("seed %s: %v", collection, err)
	}
	b.mu.Lock()
	b.data[collection] = recs
	b.mu.Unlock()
}

// failWith makes every call of method on collection answer with status
func (b *fakeBackend) failWith(method, collection string, status int) {
	b.mu.Lock()
	b.fail[method+" "+collection] = status
	b.mu.Unlock()
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) lastRequest() recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.requests = append(b.requests, recorded{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Body:   body,
		Auth:   r.Header.Get("Authorization"),
	})

	parts := strings.Split(strings.Trim(path, "/"), "/")
	collection := parts[0]
	if status, ok := b.fail[r.Method+" "+collection]; ok {
		writeJSON(w, status, map[string]string{"error": "injected failure"})
		return
	}

	switch {
	case collection == "auth":
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"token": b.token,
				"user":  map[string]any{"id": 7, "name": "Dana", "email": body["email"]},
			},
		})
	case len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.list(collection, r.URL.Query()))
	case len(parts) == 1 && r.Method == http.MethodPost:
		writeJSON(w, http.StatusCreated, b.create(collection, body))
	case len(parts) == 3 && parts[2] == "members" && r.Method == http.MethodPost:
		rec := b.find(collection, parts[1])
		if rec == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "team not found"})
			return
		}
		members, _ := rec["members"].([]any)
		rec["members"] = append(members, map[string]any{"user_id": body["userId"]})
		writeJSON(w, http.StatusCreated, map[string]any{"success": true})
	case len(parts) == 2 && r.Method == http.MethodPatch:
		rec := b.find(collection, parts[1])
		if rec == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		for k, v := range body {
			rec[snake(k)] = v
		}
		if b.partialPatch {
			writeJSON(w, http.StatusOK, map[string]any{"id": rec["id"]})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case len(parts) == 2 && r.Method == http.MethodDelete:
		recs := b.data[collection]
		i := slices.IndexFunc(recs, func(rec map[string]any) bool { return idString(rec) == parts[1] })
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		b.data[collection] = slices.Delete(recs, i, i+1)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route"})
	}
}

func (b *fakeBackend) list(collection string, q url.Values) []map[string]any {
	out := []map[string]any{}
	filter, filtered := listFilters[collection]
	for _, rec := range b.data[collection] {
		if filtered && q.Has(filter[0]) && fmt.Sprint(rec[filter[1]]) != q.Get(filter[0]) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (b *fakeBackend) create(collection string, body map[string]any) map[string]any {
	b.nextID++
	rec := map[string]any{
		"id":         float64(b.nextID),
		"created_at": "2024-06-01T12:00:00Z",
	}
	for k, v := range body {
		rec[snake(k)] = v
	}
	if collection == "teams" {
		rec["members"] = []any{map[string]any{"user_id": 1}}
		if b.dropTeamDescription {
			delete(rec, "description")
		}
	}
	b.data[collection] = append(b.data[collection], rec)
	return rec
}

func (b *fakeBackend) find(collection, id string) map[string]any {
	for _, rec := range b.data[collection] {
		if idString(rec) == id {
			return rec
		}
	}
	return nil
}

func idString(rec map[string]any) string {
	if f, ok := rec["id"].(float64); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(rec["id"])
}

func snake(k string) string {
	if s, ok := snakeKeys[k]; ok {
		return s
	}
	return k
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
