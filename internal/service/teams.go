package service

import (
	"context"
	"net/http"

	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/normalize"
	"github.com/tgienger/teamboard/internal/store"
)

// TeamService owns the team cache. The server does not reliably echo team
// descriptions, so descriptions the user typed are remembered in an
// Overrides store and win over whatever the server sends.
type TeamService struct {
	res       *resource[models.Team, models.TeamRecord]
	overrides *store.Overrides
}

// NewTeamService reads the persisted overrides once up front
func NewTeamService(ctx context.Context, doer api.Doer, overrides *store.Overrides) *TeamService {
	if overrides == nil {
		overrides = store.NewOverrides(nil)
	}
	s := &TeamService{overrides: overrides}
	s.res = newResource(
		"teams", api.PathTeams, doer,
		func(t models.Team) int64 { return t.ID },
		func(rec models.TeamRecord) (models.Team, error) { return normalize.Team(rec, s.overrides) },
	)
	overrides.Reload(ctx)
	return s
}

// Cache exposes the observable team collection
func (s *TeamService) Cache() *cache.Cache[models.Team] {
	return s.res.cache
}

// Load re-reads the overrides, then replaces the cache with the server's teams
func (s *TeamService) Load(ctx context.Context) ([]models.Team, error) {
	s.overrides.Reload(ctx)
	return s.res.load(ctx, nil, nil)
}

// Create creates a team. A non-empty description is remembered locally
// before the response is normalized.
func (s *TeamService) Create(ctx context.Context, req models.CreateTeamRequest) (models.Team, error) {
	return s.res.create(ctx, req, func(rec models.TeamRecord) {
		if req.Description != "" && rec.ID != nil {
			s.overrides.Set(ctx, *rec.ID, req.Description)
		}
	})
}

// Update renames a team or changes its description. A new description is
// also remembered as an override.
func (s *TeamService) Update(ctx context.Context, id int64, req models.UpdateTeamRequest) (models.Team, error) {
	reqRec := models.TeamRecord{Name: req.Name, Description: req.Description}

	team, err := s.res.update(ctx, id, req, reqRec, func(t *models.Team, rec models.TeamRecord) error {
		if err := normalize.PatchTeam(t, rec, s.overrides); err != nil {
			return err
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		return nil
	})
	if err != nil {
		return team, err
	}
	if req.Description != nil {
		s.overrides.Set(ctx, id, *req.Description)
	}
	return team, nil
}

// Delete removes a team and forgets its description override
func (s *TeamService) Delete(ctx context.Context, id int64) error {
	if err := s.res.remove(ctx, id); err != nil {
		return err
	}
	s.overrides.Forget(ctx, id)
	return nil
}

// AddMember adds a user to a team and bumps the cached member count
func (s *TeamService) AddMember(ctx context.Context, teamID, userID int64) error {
	req := models.AddMemberRequest{UserID: userID}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := s.res.doer.Do(ctx, http.MethodPost, api.MembersPath(teamID), nil, req, nil); err != nil {
		return err
	}
	s.res.cache.Patch(teamID, func(t *models.Team) { t.MemberCount++ })
	return nil
}
