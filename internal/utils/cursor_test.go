package utils

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestPaymentCursorRoundtrip(t *testing.T) {
	paidAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	encoded, err := EncodePaymentCursor(paidAt, "p-1")

	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	c, err := DecodePaymentCursor(encoded)

	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !c.PaidAt.Equal(paidAt) || c.ID != "p-1" {
		t.Fatalf("cursor = %+v", c)
	}
}

func TestDecodePaymentCursor_Invalid(t *testing.T) {
	missingID, _ := EncodePaymentCursor(time.Now(), "")

	tests := []struct {
		name   string
		cursor string
	}{
		{"empty", ""},
		{"not_base64", "!!!"},
		{"not_json", base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{"missing_id", missingID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodePaymentCursor(tc.cursor); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
