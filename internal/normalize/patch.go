package normalize

import (
	"fmt"

	"github.com/tgienger/teamboard/internal/models"
)

// The Patch functions overlay the fields present in a (possibly partial)
// record onto an existing view model. Absent fields are left alone, so a
// server that answers an update with only the changed columns still yields a
// complete view model. The id is never changed.

// PatchTeam applies rec to t. Overrides still win for the description.
func PatchTeam(t *models.Team, rec models.TeamRecord, overrides OverrideLookup) error {
	if rec.Name != nil {
		t.Name = *rec.Name
	}
	if rec.Description != nil {
		t.Description = *rec.Description
	}
	if overrides != nil {
		if o, ok := overrides.Get(t.ID); ok && o != "" {
			t.Description = o
		}
	}
	if v := first(rec.CreatedBy, rec.CreatedByAlt); v != nil {
		t.CreatedBy = *v
	}
	if v := first(rec.CreatedAt, rec.CreatedAtAlt); v != nil {
		ts, err := ParseTime(*v)
		if err != nil {
			return fmt.Errorf("team %d created_at: %w", t.ID, err)
		}
		t.CreatedAt = ts
	}
	if rec.Members != nil || rec.MemberCountAlt != nil {
		t.MemberCount = memberCount(rec)
	}
	return nil
}

// PatchProject applies rec to p
func PatchProject(p *models.Project, rec models.ProjectRecord) error {
	if rec.Name != nil {
		p.Name = *rec.Name
	}
	if rec.Description != nil {
		p.Description = *rec.Description
	}
	if v := first(rec.TeamID, rec.TeamIDAlt); v != nil {
		p.TeamID = *v
	}
	if v := first(rec.TeamName, rec.TeamNameAlt); v != nil {
		p.TeamName = *v
	}
	if v := first(rec.CreatedBy, rec.CreatedByAlt); v != nil {
		p.CreatedBy = *v
	}
	if v := first(rec.CreatedAt, rec.CreatedAtAlt); v != nil {
		ts, err := ParseTime(*v)
		if err != nil {
			return fmt.Errorf("project %d created_at: %w", p.ID, err)
		}
		p.CreatedAt = ts
	}
	return nil
}

// PatchTask applies rec to t. Validation happens before anything is
// written, so on error t is unchanged.
func PatchTask(t *models.Task, rec models.TaskRecord) error {
	next := *t

	if rec.Title != nil {
		next.Title = *rec.Title
	}
	if rec.Description != nil {
		next.Description = *rec.Description
	}
	if rec.Status != nil {
		st, err := Status(*rec.Status)
		if err != nil {
			return fmt.Errorf("task %d: %w", t.ID, err)
		}
		next.Status = st
	}
	if rec.Priority != nil {
		p, err := Priority(*rec.Priority)
		if err != nil {
			return fmt.Errorf("task %d: %w", t.ID, err)
		}
		next.Priority = p
	}
	if v := first(rec.ProjectID, rec.ProjectIDAlt); v != nil {
		next.ProjectID = *v
	}
	if v := first(rec.AssigneeID, rec.AssigneeIDAlt); v != nil {
		next.AssigneeID = clone(v)
	}
	if v := first(rec.CreatedBy, rec.CreatedByAlt); v != nil {
		next.CreatedBy = *v
	}
	if v := first(rec.DueDate, rec.DueDateAlt); v != nil {
		due, err := parseOptionalTime(v)
		if err != nil {
			return fmt.Errorf("task %d due_date: %w", t.ID, err)
		}
		next.DueDate = due
	}
	if v := first(rec.OrderIndex, rec.OrderIndexAlt); v != nil {
		next.OrderIndex = clone(v)
	}
	if v := first(rec.CreatedAt, rec.CreatedAtAlt); v != nil {
		ts, err := ParseTime(*v)
		if err != nil {
			return fmt.Errorf("task %d created_at: %w", t.ID, err)
		}
		next.CreatedAt = ts
	}
	if v := first(rec.UpdatedAt, rec.UpdatedAtAlt); v != nil {
		ts, err := ParseTime(*v)
		if err != nil {
			return fmt.Errorf("task %d updated_at: %w", t.ID, err)
		}
		next.UpdatedAt = ts
	}

	*t = next
	return nil
}

// PatchComment applies rec to c
func PatchComment(c *models.Comment, rec models.CommentRecord) error {
	if rec.Body != nil {
		c.Body = *rec.Body
	}
	if v := first(rec.AuthorName, rec.AuthorNameAlt, rec.UserName); v != nil && *v != "" {
		c.UserName = *v
	}
	if v := first(rec.CreatedAt, rec.CreatedAtAlt); v != nil {
		ts, err := ParseTime(*v)
		if err != nil {
			return fmt.Errorf("comment %d created_at: %w", c.ID, err)
		}
		c.CreatedAt = ts
	}
	return nil
}
