package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownJobType = errors.New("unknown job type")
	ErrInvalidPayload = errors.New("invalid job payload")
)

// DecodeEnrollmentReceipt unmarshals and checks a receipt payload before the
// worker acts on it. A payload failing here is a permanent failure, not a
// retry candidate.
func DecodeEnrollmentReceipt(raw json.RawMessage) (EnrollmentReceiptPayload, error) {
	if len(raw) == 0 {
		return EnrollmentReceiptPayload{}, ErrInvalidPayload
	}

	var p EnrollmentReceiptPayload

	if err := json.Unmarshal(raw, &p); err != nil {
		return EnrollmentReceiptPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if strings.TrimSpace(p.PaymentID) == "" || strings.TrimSpace(p.Email) == "" {
		return EnrollmentReceiptPayload{}, ErrInvalidPayload
	}

	if len(p.ClassIDs) == 0 {
		return EnrollmentReceiptPayload{}, ErrInvalidPayload
	}

	return p, nil
}
