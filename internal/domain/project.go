package domain

import "time"

// Project is the unit of work a team can be assigned to.
type Project struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
