/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the payments-review-service. By defining an
 * interface, we decouple the review workflow's business logic from the specific
 * database implementation (e.g., PostgreSQL), making the code more modular and
 * easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/paybridge/payments-review-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
//
// Every lifecycle transition is a single atomic update-by-id statement; the
// store's per-row atomicity is the only serialization this service relies on.
// Two concurrent transitions on the same payment race with last-write-wins
// semantics — a known, accepted property, not a bug.
type Repository interface {
	// Account lookups (read-only; the identity store owns these rows)
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Payment queries
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
	FindPaymentByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)

	// Lifecycle transitions
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	MarkPaymentVerified(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	MarkPaymentUnverified(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	// SubmitPayment flips a payment to submitted and stamps the settlement
	// receipt, but only when the row is already verified. It returns
	// ErrPaymentNotVerified when the precondition fails and
	// ErrPaymentNotFound when the row is absent.
	SubmitPayment(ctx context.Context, paymentID uuid.UUID, receipt domain.SwiftReceipt) (*domain.Payment, error)

	// Deletion (hard delete; there is no soft-delete column)
	DeletePayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	DeletePayments(ctx context.Context, paymentIDs []uuid.UUID) (int64, error)
}
