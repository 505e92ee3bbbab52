package notifications

import "context"

type SendEnrollmentReceiptInput struct {
	Email     string
	PaymentID string
	Price     float64
	ClassIDs  []string
}

type Notifier interface {
	SendEnrollmentReceipt(ctx context.Context, input SendEnrollmentReceiptInput) error
}
