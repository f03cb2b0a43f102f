/**
 * @description
 * This file contains the verification engine: the decision logic that checks
 * a payment's claimed sender/receiver identities against the account store
 * and its SWIFT code against the reference index. The two checks are
 * independent and side-effect free; callers may run them in either order.
 *
 * @notes
 * - The account-match checks run strictly in order (sender existence, sender
 *   number, receiver existence, receiver number) and short-circuit on the
 *   first failure, so error messages are deterministic and testable.
 * - Verdict messages are returned verbatim to employees, who act on them to
 *   decide next steps; the wording is part of the service contract.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/paybridge/payments-review-service/internal/domain"
	"github.com/paybridge/payments-review-service/internal/store"
	"github.com/paybridge/payments-review-service/internal/swiftref"
)

var (
	ErrSenderAccountNotFound   = errors.New("sender email not found")
	ErrSenderAccountMismatch   = errors.New("sender account number mismatch")
	ErrReceiverAccountNotFound = errors.New("receiver email not found")
	ErrReceiverAccountMismatch = errors.New("receiver account number mismatch")
	ErrMissingSwiftCode        = errors.New("missing swift code")
	ErrSwiftCodeNotFound       = errors.New("swift code not found")
)

// Verdict messages shown to employees, matching the review UI contract.
const (
	msgSenderNotFound    = "Sender email not found in system."
	msgSenderMismatch    = "Sender account number does not match the provided email."
	msgReceiverNotFound  = "Receiver email not found in system."
	msgReceiverMismatch  = "Receiver account number does not match records."
	msgAccountsVerified  = "Both sender and receiver verified successfully."
	msgSwiftCodeMissing  = "Missing SWIFT code in request body."
	msgSwiftCodeValid    = "SWIFT code is valid."
	msgSwiftCodeNotFound = "SWIFT code not valid or not found."
)

const rateLimitWindow = time.Minute

// CheckAccountMatch decides whether a payment's claimed sender and receiver
// identities are consistent with the account store. The employee subject is
// only used for rate limiting.
//
// On a failed check the returned result carries the human-readable verdict
// and the error identifies which check fired; the error is nil only when both
// parties verified. Transient store failures return a nil result.
func (s *Service) CheckAccountMatch(ctx context.Context, employee string, req domain.AccountMatchRequest) (*domain.AccountMatchResult, error) {
	if err := s.consumeRateLimit(ctx, "verify_account", employee, s.accountCheckLimitPerMin); err != nil {
		return nil, err
	}

	sender, err := s.repo.FindAccountByEmail(ctx, req.SenderEmail)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.AccountMatchResult{Verified: false, Message: msgSenderNotFound}, ErrSenderAccountNotFound
		}
		return nil, fmt.Errorf("look up sender account: %w", err)
	}
	if sender.AccountNumber != req.AccountNumber {
		return &domain.AccountMatchResult{Verified: false, Message: msgSenderMismatch}, ErrSenderAccountMismatch
	}

	receiver, err := s.repo.FindAccountByEmail(ctx, req.ReceiverEmail)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return &domain.AccountMatchResult{Verified: false, Message: msgReceiverNotFound}, ErrReceiverAccountNotFound
		}
		return nil, fmt.Errorf("look up receiver account: %w", err)
	}
	if receiver.AccountNumber != req.AccountInfo {
		return &domain.AccountMatchResult{Verified: false, Message: msgReceiverMismatch}, ErrReceiverAccountMismatch
	}

	return &domain.AccountMatchResult{Verified: true, Message: msgAccountsVerified}, nil
}

// CheckSwift decides whether a SWIFT/BIC code is recognized by the reference
// index. The code is normalized (whitespace stripped, upper-cased) before the
// lookup; an empty code is a caller error, not a lookup miss.
func (s *Service) CheckSwift(ctx context.Context, employee, code string) (*domain.SwiftCheckResult, error) {
	if err := s.consumeRateLimit(ctx, "verify_swift", employee, s.swiftCheckLimitPerMin); err != nil {
		return nil, err
	}

	if swiftref.Normalize(code) == "" {
		return &domain.SwiftCheckResult{Valid: false, Message: msgSwiftCodeMissing}, ErrMissingSwiftCode
	}

	if !s.swiftIndex.Contains(code) {
		return &domain.SwiftCheckResult{Valid: false, Message: msgSwiftCodeNotFound}, ErrSwiftCodeNotFound
	}

	return &domain.SwiftCheckResult{Valid: true, Message: msgSwiftCodeValid}, nil
}

// consumeRateLimit charges one verification check against the employee's
// fixed-window budget. Limiting is best-effort: a limiter outage lets the
// check through rather than blocking review work.
func (s *Service) consumeRateLimit(ctx context.Context, scope, subject string, limit int) error {
	if s.rateLimiter == nil || limit <= 0 {
		return nil
	}

	count, _, err := s.rateLimiter.ConsumeRateLimit(ctx, scope, subject, limit, rateLimitWindow)
	if err != nil {
		log.Printf("level=warn component=app msg=\"rate limiter unavailable; allowing check\" scope=%s err=%v", scope, err)
		return nil
	}
	if count > limit {
		return ErrRateLimited
	}
	return nil
}
