/**
 * @description
 * This file contains the core business logic for the payments-review-service.
 * The `Service` struct owns the payment lifecycle state machine: persisting a
 * verification verdict, unverifying, submitting to the SWIFT network and
 * deleting records, plus the listing employees review from.
 *
 * Key features:
 * - Every transition is delegated to a single atomic update-by-id in the
 *   store; the service adds preconditions and reason strings, never locks.
 * - Review events are published to RabbitMQ best-effort; a broker outage
 *   never fails a transition.
 *
 * @dependencies
 * - context, errors, log, time: Standard Go libraries.
 * - github.com/google/uuid: For payment ids.
 * - internal/domain, internal/store, internal/swiftref: Models, data access, BIC index.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/paybridge/payments-review-service/internal/domain"
	"github.com/paybridge/payments-review-service/internal/store"
	"github.com/paybridge/payments-review-service/internal/swiftref"
	"github.com/paybridge/payments-review-service/pkg/rabbitmq"
)

var (
	// ErrChecksFailed rejects a persist-verification call whose relayed
	// verdict booleans are not both true. Nothing is mutated.
	ErrChecksFailed = errors.New("one or more verification checks failed")
	// ErrNoPaymentsSelected rejects a bulk operation over an empty id set
	// before any state access.
	ErrNoPaymentsSelected = errors.New("no payments selected")
	// ErrRateLimited is returned when an employee exceeds the configured
	// verification-check budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// RateLimiter is the fixed-window limiter consulted by the verification
// endpoints. Implementations return the running count within the window.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for the payment review workflow.
type Service struct {
	repo       store.Repository
	swiftIndex *swiftref.Index
	events     rabbitmq.Publisher

	rateLimiter             RateLimiter
	accountCheckLimitPerMin int
	swiftCheckLimitPerMin   int
}

// NewService creates a new review service instance. The SWIFT index is
// injected rather than read from ambient state so tests can supply fixture
// datasets; events may be a no-op fallback publisher.
func NewService(repo store.Repository, swiftIndex *swiftref.Index, events rabbitmq.Publisher) *Service {
	if swiftIndex == nil {
		swiftIndex = swiftref.Empty()
	}
	return &Service{
		repo:       repo,
		swiftIndex: swiftIndex,
		events:     events,
	}
}

// SetRateLimiter wires an optional distributed limiter for the verification
// check endpoints. Limits of zero or below disable the corresponding check.
func (s *Service) SetRateLimiter(limiter RateLimiter, accountChecksPerMinute, swiftChecksPerMinute int) {
	s.rateLimiter = limiter
	s.accountCheckLimitPerMin = accountChecksPerMinute
	s.swiftCheckLimitPerMin = swiftChecksPerMinute
}

// ListPayments returns payment records for the review table, newest first.
func (s *Service) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}

// GetPayment returns a single payment record for the detail view.
func (s *Service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.repo.FindPaymentByID(ctx, paymentID)
}

// PersistVerification marks a payment verified based on the two verdict
// booleans the employee client relays from its earlier checks.
//
// The booleans are caller-asserted by design: the engine's verdicts are
// computed at check time and trusted at persist time, matching the behavior
// employees see in the review UI. The review surface is role-gated, so this
// trust boundary is accepted rather than re-running the engine here.
func (s *Service) PersistVerification(ctx context.Context, paymentID uuid.UUID, accountsVerified, swiftCodeVerified bool) (*domain.Payment, error) {
	if !accountsVerified || !swiftCodeVerified {
		return nil, ErrChecksFailed
	}

	payment, err := s.repo.MarkPaymentVerified(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.publishReviewEvent(ctx, "verified", payment)
	return payment, nil
}

// Unverify flips a payment back to unverified so it can be re-checked.
// Calling it on an already-unverified payment succeeds; the second call is a
// state-wise no-op.
func (s *Service) Unverify(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.repo.MarkPaymentUnverified(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.publishReviewEvent(ctx, "unverified", payment)
	return payment, nil
}

// SubmitToSwift hands a verified payment off to the settlement network,
// stamping the receipt with the submission time. Unverified payments are
// rejected by the store's conditional update without mutation.
func (s *Service) SubmitToSwift(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	receipt := domain.SwiftReceipt{
		Status:    domain.SwiftReceiptStatusSubmitted,
		Timestamp: time.Now().UTC(),
	}

	payment, err := s.repo.SubmitPayment(ctx, paymentID, receipt)
	if err != nil {
		return nil, err
	}

	s.publishReviewEvent(ctx, "submitted", payment)
	return payment, nil
}

// DeletePayment removes a payment permanently. Deleting an absent id reports
// store.ErrPaymentNotFound rather than silent success.
func (s *Service) DeletePayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.repo.DeletePayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.publishReviewEvent(ctx, "deleted", payment)
	return payment, nil
}

// DeletePayments removes every payment in the id set and reports how many
// rows were actually deleted. Ids that were already absent only lower the
// count. An empty set is rejected before any deletion attempt.
func (s *Service) DeletePayments(ctx context.Context, paymentIDs []uuid.UUID) (int64, error) {
	if len(paymentIDs) == 0 {
		return 0, ErrNoPaymentsSelected
	}

	deleted, err := s.repo.DeletePayments(ctx, paymentIDs)
	if err != nil {
		return 0, err
	}

	log.Printf("level=info component=app operation=bulk_delete requested=%d deleted=%d", len(paymentIDs), deleted)
	return deleted, nil
}

// publishReviewEvent emits a lifecycle event for the notification pipeline.
// Failures are logged and swallowed: the transition has already landed.
func (s *Service) publishReviewEvent(ctx context.Context, action string, payment *domain.Payment) {
	if s.events == nil || payment == nil {
		return
	}

	event := domain.PaymentReviewEvent{
		PaymentID:     payment.ID.String(),
		Action:        action,
		Reason:        payment.Reason,
		SenderEmail:   payment.SenderEmail,
		ReceiverEmail: payment.ReceiverEmail,
		Timestamp:     time.Now().UTC(),
	}

	if err := s.events.Publish(ctx, rabbitmq.PaymentEventsExchange, "payment."+action, event); err != nil {
		log.Printf("level=warn component=app msg=\"review event publish failed\" action=%s payment_id=%s err=%v", action, payment.ID, err)
	}
}
