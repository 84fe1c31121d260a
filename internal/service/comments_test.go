package service

import (
	"context"
	"slices"
	"testing"

	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/models"
)

func commentIDs(cs []models.Comment) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestCommentIndexFollowsMutations(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t)
	backend.seed(t, "comments", `[
		{"id":1,"body":"first","task_id":10,"user_id":7,"author_name":"Dana"},
		{"id":2,"body":"second","task_id":10},
		{"id":3,"body":"elsewhere","task_id":11}
	]`)
	svc := NewCommentService(client)

	if _, err := svc.Load(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if got := backend.lastRequest().Query.Get(api.ParamTaskID); got != "10" {
		t.Errorf("expected taskId=10, got %q", got)
	}
	if _, err := svc.Load(ctx, 11); err != nil {
		t.Fatal(err)
	}

	if got := commentIDs(svc.ForTask(10)); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("task 10 comments = %v", got)
	}
	if got := commentIDs(svc.Cache().Items()); !slices.Equal(got, []int64{3}) {
		t.Errorf("flat cache should hold the last loaded task, got %v", got)
	}
	if c := svc.ForTask(10)[1]; c.UserName != models.AnonymousUser {
		t.Errorf("expected anonymous author, got %q", c.UserName)
	}

	v := svc.IndexVersion()
	created, err := svc.Create(ctx, models.CreateCommentRequest{Body: "third", TaskID: 10})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := commentIDs(svc.ForTask(10)); !slices.Equal(got, []int64{1, 2, created.ID}) {
		t.Errorf("after create = %v", got)
	}
	if svc.IndexVersion() == v {
		t.Error("expected index version to move")
	}

	body := "edited"
	if _, err := svc.Update(ctx, 1, models.UpdateCommentRequest{Body: &body}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if c := svc.ForTask(10)[0]; c.Body != "edited" || c.UserName != "Dana" {
		t.Errorf("after update = %+v", c)
	}

	if err := svc.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := commentIDs(svc.ForTask(10)); !slices.Equal(got, []int64{1, created.ID}) {
		t.Errorf("after delete = %v", got)
	}
}

func TestCommentDeleteFailureKeepsIndex(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t)
	backend.seed(t, "comments", `[{"id":1,"body":"keep","task_id":10}]`)
	svc := NewCommentService(client)
	if _, err := svc.Load(ctx, 10); err != nil {
		t.Fatal(err)
	}

	backend.failWith("DELETE", "comments", 403)
	if err := svc.Delete(ctx, 1); !api.IsForbidden(err) {
		t.Fatalf("expected 403, got %v", err)
	}
	if len(svc.ForTask(10)) != 1 || svc.Cache().Len() != 1 {
		t.Error("failed delete changed the comments")
	}
}
