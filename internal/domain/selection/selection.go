package selection

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Selection is a student's pending, unpaid intent to enroll in a class.
// Destroyed either by explicit removal or by payment finalization.
type Selection struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	ClassID   string    `json:"classId"`
	ClassName string    `json:"className,omitempty"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("selection not found")

// The cart endpoints are intentionally looser than the catalog: the body is
// stored essentially as posted, only the owner email and class id are required.
type CreateSelectionRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	ClassID   string  `json:"classId" binding:"required"`
	ClassName string  `json:"className" binding:"omitempty,max=120"`
	Image     string  `json:"image" binding:"omitempty,max=500"`
	Price     float64 `json:"price" binding:"omitempty,gte=0"`
}

func NewFromCreateRequest(req CreateSelectionRequest) Selection {
	return Selection{
		ID:        uuid.NewString(),
		Email:     req.Email,
		ClassID:   req.ClassID,
		ClassName: req.ClassName,
		Image:     req.Image,
		Price:     req.Price,
		CreatedAt: time.Now().UTC(),
	}
}
