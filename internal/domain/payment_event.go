package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCreatedEvent is the message the customer portal publishes when an
// end user submits a new cross-border payment. The review service consumes it
// to seed the review queue.
type PaymentCreatedEvent struct {
	EventID       string          `json:"event_id"`
	SenderEmail   string          `json:"sender_email"`
	ReceiverEmail string          `json:"receiver_email"`
	AccountNumber string          `json:"account_number"`
	AccountInfo   string          `json:"account_info"`
	Provider      string          `json:"provider"`
	SwiftCode     string          `json:"swift_code"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// PaymentReviewEvent is published after a lifecycle transition lands, for
// the notification pipeline. Action is one of "verified", "unverified",
// "submitted" or "deleted".
type PaymentReviewEvent struct {
	PaymentID     string    `json:"payment_id"`
	Action        string    `json:"action"`
	Reason        string    `json:"reason,omitempty"`
	SenderEmail   string    `json:"sender_email,omitempty"`
	ReceiverEmail string    `json:"receiver_email,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
