package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// PaymentCursor pages purchase history newest first, keyed on the pay date
// with the id as tiebreaker.
type PaymentCursor struct {
	PaidAt time.Time `json:"paidAt"`
	ID     string    `json:"id"`
}

func EncodePaymentCursor(paidAt time.Time, id string) (string, error) {
	b, err := json.Marshal(PaymentCursor{PaidAt: paidAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodePaymentCursor(cursor string) (PaymentCursor, error) {
	if cursor == "" {
		return PaymentCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return PaymentCursor{}, err
	}

	var c PaymentCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return PaymentCursor{}, err
	}
	if c.ID == "" || c.PaidAt.IsZero() {
		return PaymentCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
