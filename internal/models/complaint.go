package models

import "time"

// StatusPending is the status every new complaint starts in.
const (
	StatusPending  = "Pending"
	StatusResolved = "Resolved"
)

// Complaint is a complaint row denormalized with its status, category and owner names.
type Complaint struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	CategoryID   int64     `db:"category_id" json:"category_id"`
	StatusID     int64     `db:"status_id" json:"status_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	Location     *string   `db:"location" json:"location,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	Status       string    `db:"status" json:"status"`
	CategoryName string    `db:"category_name" json:"category_name"`
	UserName     string    `db:"user_name" json:"user_name"`
}

// CreateComplaintInput represents input for filing a complaint
type CreateComplaintInput struct {
	CategoryID  int64   `json:"category_id" binding:"required,min=1"`
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=2048"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
}

// UpdateComplaintInput represents an admin status change
type UpdateComplaintInput struct {
	Status string `json:"status" binding:"required"`
}

// ListComplaintsQuery is bound from the query string of the listing endpoint.
type ListComplaintsQuery struct {
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=10" binding:"min=1,max=100"`
	Status  string `form:"status"`
}
