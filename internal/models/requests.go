package models

// Request bodies are sent as-is; the field names are the ones the backend
// expects on input.

// CreateTeamRequest creates a team
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// UpdateTeamRequest changes a team; nil fields are left alone
type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// AddMemberRequest adds a user to a team
type AddMemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// CreateProjectRequest creates a project in a team
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	TeamID      int64  `json:"teamId" validate:"required,gt=0"`
}

// UpdateProjectRequest changes a project; nil fields are left alone
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CreateTaskRequest creates a task in a project
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,min=3,max=100"`
	Description string       `json:"description,omitempty" validate:"max=500"`
	Status      TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	Priority    TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	ProjectID   int64        `json:"projectId" validate:"required,gt=0"`
	AssigneeID  *int64       `json:"assigneeId,omitempty"`
	DueDate     string       `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest changes a task; nil fields are left alone
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=500"`
	Status      *TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	AssigneeID  *int64        `json:"assigneeId,omitempty"`
	DueDate     *string       `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	OrderIndex  *int          `json:"orderIndex,omitempty"`
}

// CreateCommentRequest adds a comment to a task
type CreateCommentRequest struct {
	Body   string `json:"body" validate:"required,max=2000"`
	TaskID int64  `json:"taskId" validate:"required,gt=0"`
}

// UpdateCommentRequest edits a comment body
type UpdateCommentRequest struct {
	Body *string `json:"body,omitempty" validate:"omitempty,min=1,max=2000"`
}

// LoginRequest authenticates an existing user
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
