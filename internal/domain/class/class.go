package class

import (
	"errors"
	"time"
)

// Status is the admin review state of a submitted class.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	default:
		return false
	}
}

type Class struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	InstructorName  string    `json:"instructorName"`
	InstructorEmail string    `json:"instructorEmail"`
	Image           string    `json:"image,omitempty"`
	Price           float64   `json:"price"`
	AvailableSeats  int       `json:"availableSeats"`
	Enrolled        int       `json:"enrolled"`
	Status          Status    `json:"status"`
	Feedback        *string   `json:"feedback,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Summary is the projected shape served by the public discovery views.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	Instructor string `json:"instructor"`
	Enrolled   int    `json:"enrolled"`
}

var ErrNotFound = errors.New("class not found")

// a confirmed enrollment needs a seat; the conditional decrement surfaces
// this when available_seats is already zero
var ErrNoSeatsAvailable = errors.New("no seats available")

type CreateClassRequest struct {
	Name            string  `json:"name" binding:"required,min=2,max=120"`
	InstructorName  string  `json:"instructorName" binding:"required,min=2,max=120"`
	InstructorEmail string  `json:"instructorEmail" binding:"required,email"`
	Image           string  `json:"image" binding:"omitempty,max=500"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	AvailableSeats  int     `json:"availableSeats" binding:"required,min=1,max=50000"`
}

// UpsertClassRequest is the full replace-or-insert payload keyed by the URL id.
// AvailableSeats deliberately skips "required": zero is a legal value here,
// marking the class sold out, and "required" would reject it as missing.
type UpsertClassRequest struct {
	Name            string  `json:"name" binding:"required,min=2,max=120"`
	InstructorName  string  `json:"instructorName" binding:"required,min=2,max=120"`
	InstructorEmail string  `json:"instructorEmail" binding:"required,email"`
	Image           string  `json:"image" binding:"omitempty,max=500"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	AvailableSeats  int     `json:"availableSeats" binding:"min=0,max=50000"`
}

// ListFilter narrows the admin management listing.
// pointers so absent filters stay nil
type ListFilter struct {
	Status          *Status
	InstructorEmail *string
}
