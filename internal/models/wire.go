package models

// Server records. The backend answers in snake_case; the camelCase twins are
// accepted too so that a record re-encoded from a view model decodes to the
// same values. Pointers distinguish "absent" from zero.

// TeamMemberRecord is one entry of a team's members list
type TeamMemberRecord struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// TeamRecord is a team as returned by the server
type TeamRecord struct {
	ID             *int64             `json:"id"`
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	CreatedBy      *int64             `json:"created_by"`
	CreatedByAlt   *int64             `json:"createdBy"`
	CreatedAt      *string            `json:"created_at"`
	CreatedAtAlt   *string            `json:"createdAt"`
	UpdatedAt      *string            `json:"updated_at"`
	Members        []TeamMemberRecord `json:"members"`
	MemberCountAlt *int               `json:"memberCount"`
}

// ProjectRecord is a project as returned by the server
type ProjectRecord struct {
	ID           *int64  `json:"id"`
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	TeamID       *int64  `json:"team_id"`
	TeamIDAlt    *int64  `json:"teamId"`
	TeamName     *string `json:"team_name"`
	TeamNameAlt  *string `json:"teamName"`
	CreatedBy    *int64  `json:"created_by"`
	CreatedByAlt *int64  `json:"createdBy"`
	CreatedAt    *string `json:"created_at"`
	CreatedAtAlt *string `json:"createdAt"`
}

// TaskRecord is a task as returned by the server
type TaskRecord struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	ProjectID     *int64  `json:"project_id"`
	ProjectIDAlt  *int64  `json:"projectId"`
	AssigneeID    *int64  `json:"assignee_id"`
	AssigneeIDAlt *int64  `json:"assigneeId"`
	CreatedBy     *int64  `json:"created_by"`
	CreatedByAlt  *int64  `json:"createdBy"`
	DueDate       *string `json:"due_date"`
	DueDateAlt    *string `json:"dueDate"`
	OrderIndex    *int    `json:"order_index"`
	OrderIndexAlt *int    `json:"orderIndex"`
	CreatedAt     *string `json:"created_at"`
	CreatedAtAlt  *string `json:"createdAt"`
	UpdatedAt     *string `json:"updated_at"`
	UpdatedAtAlt  *string `json:"updatedAt"`
}

// CommentRecord is a comment as returned by the server
type CommentRecord struct {
	ID            *int64  `json:"id"`
	Body          *string `json:"body"`
	TaskID        *int64  `json:"task_id"`
	TaskIDAlt     *int64  `json:"taskId"`
	UserID        *int64  `json:"user_id"`
	UserIDAlt     *int64  `json:"userId"`
	AuthorName    *string `json:"author_name"`
	AuthorNameAlt *string `json:"authorName"`
	UserName      *string `json:"userName"`
	CreatedAt     *string `json:"created_at"`
	CreatedAtAlt  *string `json:"createdAt"`
}

// AuthResponse is the body of a successful login or register call
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
