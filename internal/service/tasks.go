package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/normalize"
)

// TaskService owns the task cache for the project currently on screen
type TaskService struct {
	res *resource[models.Task, models.TaskRecord]
}

func NewTaskService(doer api.Doer) *TaskService {
	return &TaskService{
		res: newResource(
			"tasks", api.PathTasks, doer,
			func(t models.Task) int64 { return t.ID },
			normalize.Task,
		),
	}
}

// Cache exposes the observable task collection
func (s *TaskService) Cache() *cache.Cache[models.Task] {
	return s.res.cache
}

// Load replaces the cache with the tasks of one project
func (s *TaskService) Load(ctx context.Context, projectID int64) ([]models.Task, error) {
	q := url.Values{api.ParamProjectID: {strconv.FormatInt(projectID, 10)}}
	return s.res.load(ctx, q, nil)
}

func (s *TaskService) Create(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	return s.res.create(ctx, req, nil)
}

// Update sends only the fields set in req
func (s *TaskService) Update(ctx context.Context, id int64, req models.UpdateTaskRequest) (models.Task, error) {
	return s.res.update(ctx, id, req, taskRequestRecord(req), normalize.PatchTask)
}

// Move changes a task's status, the board's drag-between-columns action
func (s *TaskService) Move(ctx context.Context, id int64, status models.TaskStatus) (models.Task, error) {
	return s.Update(ctx, id, models.UpdateTaskRequest{Status: &status})
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.res.remove(ctx, id)
}

func taskRequestRecord(req models.UpdateTaskRequest) models.TaskRecord {
	rec := models.TaskRecord{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		OrderIndex:  req.OrderIndex,
	}
	if req.Status != nil {
		st := string(*req.Status)
		rec.Status = &st
	}
	if req.Priority != nil {
		p := string(*req.Priority)
		rec.Priority = &p
	}
	return rec
}
