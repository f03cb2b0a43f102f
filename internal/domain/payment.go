/**
 * @description
 * This file defines the core domain models for the payments-review-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and broker
 *   payloads ensures clear separation of concerns and type safety.
 * - Amounts are `decimal.Decimal` backed by a NUMERIC column so cross-border
 *   amounts survive round-trips without floating-point drift.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reason strings persisted on payment records by the lifecycle transitions.
// Employees read these verbatim in the review UI, so the wording is part of
// the service contract.
const (
	ReasonVerified   = "Verified successfully"
	ReasonUnverified = "Unverified by employee"
	ReasonSubmitted  = "Submitted to SWIFT successfully."
)

// SwiftReceiptStatusSubmitted is the status tag stamped on a settlement receipt.
const SwiftReceiptStatusSubmitted = "submitted"

// Payment is the central entity: one cross-border payment request moving
// through the review lifecycle (unverified -> verified -> submitted, with an
// explicit unverify path back). This struct maps directly to the `payments` table.
type Payment struct {
	ID            uuid.UUID       `json:"_id"`
	SenderEmail   string          `json:"senderEmail"`
	ReceiverEmail string          `json:"receiverEmail"`
	AccountNumber string          `json:"accountNumber"` // claimed sender account
	AccountInfo   string          `json:"accountInfo"`   // claimed receiver account
	Provider      string          `json:"provider"`
	SwiftCode     string          `json:"swiftCode"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Verified      bool            `json:"verified"`
	Reason        string          `json:"reason"`
	Submitted     bool            `json:"submitted"`
	SwiftResponse *SwiftReceipt   `json:"swiftResponse,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SwiftReceipt records the settlement-network handoff. It is only ever
// non-nil on submitted payments.
type SwiftReceipt struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Account is a read-only view of an identity-holder from the account store.
// The review service never mutates accounts; onboarding owns them.
type Account struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	AccountNumber string    `json:"account_number"`
}

// PaymentFilter narrows payment listings. A nil Verified means no filter.
type PaymentFilter struct {
	Verified *bool
}

// AccountMatchRequest carries the claimed party identities an employee asks
// the verification engine to check against the account store.
type AccountMatchRequest struct {
	AccountNumber string `json:"accountNumber"`
	SenderEmail   string `json:"senderEmail"`
	AccountInfo   string `json:"accountInfo"`
	ReceiverEmail string `json:"receiverEmail"`
}

// AccountMatchResult is the verdict of the account-match check.
type AccountMatchResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// SwiftCheckResult is the verdict of the SWIFT/BIC code check.
type SwiftCheckResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// BulkSubmitItem is one payment in a bulk submission, together with the
// employee-asserted check outcomes relayed from the review UI.
type BulkSubmitItem struct {
	ID                uuid.UUID `json:"_id"`
	AccountsVerified  bool      `json:"accountsVerified"`
	SwiftCodeVerified bool      `json:"swiftCodeVerified"`
}

// BulkSubmitFailure captures one payment that could not be submitted and why.
type BulkSubmitFailure struct {
	ID    uuid.UUID `json:"_id"`
	Error string    `json:"error"`
}

// BulkSubmitResult summarizes a bulk submission: which payments reached the
// settlement network and which failed, attributed per id.
type BulkSubmitResult struct {
	Submitted []*Payment
	Failed    []BulkSubmitFailure
}
