// Package model defines the records the service stores and the small value
// types (sessions, optional identifiers, layouts) passed between layers.
// Structs here carry json tags for the API and db tags naming their columns.
package model

import "time"

// Activity is one deployment of the snippet activity inside a course.
// It is the scoping boundary for every category and snip: deleting an
// activity deletes everything it owns.
type Activity struct {
	ID        int64     `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"time_created"`
	UpdatedAt time.Time `json:"updatedAt" db:"time_modified"`
}
