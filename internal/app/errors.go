package app

import (
	"errors"

	"github.com/paybridge/payments-review-service/internal/store"
)

// Rejection messages employees see when a lifecycle transition fails.
const (
	MsgChecksFailed        = "Unverified: one or more checks failed."
	MsgPaymentNotFound     = "Payment record not found."
	MsgCannotSubmit        = "Cannot submit unverified payment to SWIFT."
	MsgTooManyVerifyChecks = "Too many verification checks. Please wait and try again."
)

// FailureMessage maps a transition error to the human-readable reason shown
// alongside the structured verdict. Unknown errors are reported generically
// so store internals never leak to the client.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrChecksFailed):
		return MsgChecksFailed
	case errors.Is(err, store.ErrPaymentNotFound):
		return MsgPaymentNotFound
	case errors.Is(err, store.ErrPaymentNotVerified):
		return MsgCannotSubmit
	case errors.Is(err, ErrRateLimited):
		return MsgTooManyVerifyChecks
	default:
		return "Internal server error"
	}
}
