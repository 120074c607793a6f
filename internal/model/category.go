package model

import "time"

// DefaultCategoryName is stored when a category is created without a name.
const DefaultCategoryName = "Default category"

// Category is a user-owned, activity-scoped grouping of snips.
//
// Count, HasNoSnip and Active are view-only. They are filled by the services
// when a category list is prepared for display and are never persisted.
type Category struct {
	ID         int64     `json:"id"         db:"id"`
	ActivityID int64     `json:"activityId" db:"activity_id"`
	UserID     int64     `json:"userId"     db:"user_id"`
	Name       string    `json:"name"       db:"name"`
	CreatedAt  time.Time `json:"createdAt"  db:"time_created"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"time_modified"`

	Count     int  `json:"count"     db:"-"`
	HasNoSnip bool `json:"hasNoSnip" db:"-"`
	Active    bool `json:"active"    db:"-"`
}

// Option is one entry of a category selection control.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
