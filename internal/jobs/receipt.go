package jobs

import (
	"encoding/json"
	"time"
)

const TypeEnrollmentReceipt = "enrollment.receipt"

// EnrollmentReceiptPayload is queued by the payment finalizer. It is kept
// ID-based and small; the worker loads anything else it needs from the DB.
type EnrollmentReceiptPayload struct {
	PaymentID string    `json:"paymentId"`
	Email     string    `json:"email"`
	Price     float64   `json:"price"`
	ClassIDs  []string  `json:"classIds"`
	PaidAt    time.Time `json:"paidAt"`
}

func (p EnrollmentReceiptPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
