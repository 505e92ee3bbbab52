package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Payment is the append-only record of a confirmed purchase. It is never
// mutated after the finalizer writes it.
type Payment struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Price        float64   `json:"price"`
	ClassIDs     []string  `json:"classIds"`
	SelectionIDs []string  `json:"selectionIds"`
	PaidAt       time.Time `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("payment not found")

// CreatePaymentRequest is the completed-payment record posted by the client.
// Earlier clients posted id lists (basket checkout), later ones a single id;
// the singular fields are folded into the lists on normalization.
type CreatePaymentRequest struct {
	Email        string   `json:"email" binding:"required,email"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	ClassIDs     []string `json:"classIds" binding:"omitempty,dive,uuid"`
	ClassID      string   `json:"classId" binding:"omitempty,uuid"`
	SelectionIDs []string `json:"selectionIds" binding:"omitempty,dive,uuid"`
	SelectionID  string   `json:"selectionId" binding:"omitempty,uuid"`
}

// Normalize folds the single-item form into the list form and rejects an
// empty purchase. Call before handing the request to the finalizer.
func (r *CreatePaymentRequest) Normalize() error {
	if r.ClassID != "" {
		r.ClassIDs = append(r.ClassIDs, r.ClassID)
		r.ClassID = ""
	}

	if r.SelectionID != "" {
		r.SelectionIDs = append(r.SelectionIDs, r.SelectionID)
		r.SelectionID = ""
	}

	if len(r.ClassIDs) == 0 {
		return errors.New("payment must reference at least one class")
	}

	return nil
}

func NewFromCreateRequest(req CreatePaymentRequest) Payment {
	now := time.Now().UTC()

	return Payment{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Price:        req.Price,
		ClassIDs:     req.ClassIDs,
		SelectionIDs: req.SelectionIDs,
		PaidAt:       now,
		CreatedAt:    now,
	}
}

// FinalizeResult carries the three sub-operation outcomes back to the caller
// so the client can verify each step, even though the steps commit together.
type FinalizeResult struct {
	InsertResult struct {
		InsertedID string `json:"insertedId"`
	} `json:"insertResult"`
	DeleteResult struct {
		DeletedCount int64 `json:"deletedCount"`
	} `json:"deleteResult"`
	PatchResult struct {
		ModifiedCount int64 `json:"modifiedCount"`
	} `json:"patchResult"`
}
