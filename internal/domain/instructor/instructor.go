package instructor

import "errors"

// Instructor is read-only reference data for the discovery endpoints.
type Instructor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image,omitempty"`
	Students int    `json:"students"`
}

// Summary is the projection served by the popular-instructors view.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Students int    `json:"students"`
}

var ErrNotFound = errors.New("instructor not found")
