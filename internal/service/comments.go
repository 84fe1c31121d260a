package service

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/normalize"
)

// CommentService owns the flat comment cache (the comments of the task loaded
// last) and a per-task index that keeps every task's comments seen so far.
// Both are updated together on every successful call.
type CommentService struct {
	res *resource[models.Comment, models.CommentRecord]

	mu      sync.RWMutex
	byTask  map[int64][]models.Comment
	version uint64
}

func NewCommentService(doer api.Doer) *CommentService {
	return &CommentService{
		res: newResource(
			"comments", api.PathComments, doer,
			func(c models.Comment) int64 { return c.ID },
			normalize.Comment,
		),
		byTask: make(map[int64][]models.Comment),
	}
}

// Cache exposes the observable comment collection
func (s *CommentService) Cache() *cache.Cache[models.Comment] {
	return s.res.cache
}

// Load fetches the comments of one task
func (s *CommentService) Load(ctx context.Context, taskID int64) ([]models.Comment, error) {
	q := url.Values{api.ParamTaskID: {strconv.FormatInt(taskID, 10)}}
	return s.res.load(ctx, q, func(items []models.Comment) {
		s.mu.Lock()
		s.byTask[taskID] = slices.Clone(items)
		s.version++
		s.mu.Unlock()
	})
}

func (s *CommentService) Create(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error) {
	c, err := s.res.create(ctx, req, nil)
	if err != nil {
		return c, err
	}

	s.mu.Lock()
	group := s.byTask[c.TaskID]
	if !slices.ContainsFunc(group, func(x models.Comment) bool { return x.ID == c.ID }) {
		s.byTask[c.TaskID] = append(slices.Clone(group), c)
		s.version++
	}
	s.mu.Unlock()
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, id int64, req models.UpdateCommentRequest) (models.Comment, error) {
	c, err := s.res.update(ctx, id, req, models.CommentRecord{Body: req.Body}, normalize.PatchComment)
	if err != nil {
		return c, err
	}

	s.mu.Lock()
	for taskID, group := range s.byTask {
		if i := slices.IndexFunc(group, func(x models.Comment) bool { return x.ID == id }); i >= 0 {
			next := slices.Clone(group)
			next[i] = c
			s.byTask[taskID] = next
			s.version++
		}
	}
	s.mu.Unlock()
	return c, nil
}

// Delete removes a comment from the flat cache and from its task's group
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	if err := s.res.remove(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for taskID, group := range s.byTask {
		if i := slices.IndexFunc(group, func(x models.Comment) bool { return x.ID == id }); i >= 0 {
			s.byTask[taskID] = slices.Delete(slices.Clone(group), i, i+1)
			s.version++
		}
	}
	s.mu.Unlock()
	return nil
}

// ForTask returns a copy of the comments known for a task
func (s *CommentService) ForTask(taskID int64) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.byTask[taskID])
}

// IndexVersion increases whenever the per-task index changes
func (s *CommentService) IndexVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
