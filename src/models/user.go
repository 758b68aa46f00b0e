package models

import "time"

// MUser represents a partner account. Each user owns at most one project.
type MUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}
