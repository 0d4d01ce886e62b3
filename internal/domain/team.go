package domain

import "time"

// Team groups users under an optional leader and project.
type Team struct {
	ID        int64
	Name      string
	LeaderID  *string
	ProjectID *int64
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
