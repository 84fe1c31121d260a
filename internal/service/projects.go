package service

import (
	"context"

	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/normalize"
)

// ProjectService owns the project cache. The backend returns every project
// the user can see; per-team views filter with selector.ProjectsByTeam.
type ProjectService struct {
	res *resource[models.Project, models.ProjectRecord]
}

func NewProjectService(doer api.Doer) *ProjectService {
	return &ProjectService{
		res: newResource(
			"projects", api.PathProjects, doer,
			func(p models.Project) int64 { return p.ID },
			normalize.Project,
		),
	}
}

// Cache exposes the observable project collection
func (s *ProjectService) Cache() *cache.Cache[models.Project] {
	return s.res.cache
}

func (s *ProjectService) Load(ctx context.Context) ([]models.Project, error) {
	return s.res.load(ctx, nil, nil)
}

func (s *ProjectService) Create(ctx context.Context, req models.CreateProjectRequest) (models.Project, error) {
	return s.res.create(ctx, req, nil)
}

func (s *ProjectService) Update(ctx context.Context, id int64, req models.UpdateProjectRequest) (models.Project, error) {
	reqRec := models.ProjectRecord{Name: req.Name, Description: req.Description}
	return s.res.update(ctx, id, req, reqRec, normalize.PatchProject)
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.res.remove(ctx, id)
}
