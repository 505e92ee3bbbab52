package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// LogNotifier stands in for a mail provider. The env knobs let the worker
// tests and local runs simulate a slow or failing provider.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendEnrollmentReceipt(ctx context.Context, in SendEnrollmentReceiptInput) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	log.Printf("notification.enrollment_receipt email=%s payment=%s price=%.2f classes=%s",
		in.Email, in.PaymentID, in.Price, strings.Join(in.ClassIDs, ","),
	)
	return nil
}
