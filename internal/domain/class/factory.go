package class

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds a Class from the incoming DTO.
// New submissions always start unreviewed with nobody enrolled.
func NewFromCreateRequest(req CreateClassRequest) Class {
	now := time.Now().UTC()

	return Class{
		ID:              uuid.NewString(),
		Name:            req.Name,
		InstructorName:  req.InstructorName,
		InstructorEmail: req.InstructorEmail,
		Image:           req.Image,
		Price:           req.Price,
		AvailableSeats:  req.AvailableSeats,
		Enrolled:        0,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
