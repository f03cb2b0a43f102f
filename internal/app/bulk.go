/**
 * @description
 * This file contains the bulk operation coordinator: applying the submit
 * transition across a caller-supplied set of payments with independent
 * per-record outcomes. The caller (the review UI) pre-filters the set to
 * selected payments whose checks passed and that are not yet submitted;
 * filtering happens at that boundary, not here.
 *
 * @notes
 * - Items are processed strictly sequentially in input order so error
 *   attribution stays per-item and unambiguous; one failure neither blocks
 *   nor rolls back its siblings.
 * - There is no cooperative cancellation: a bulk run completes its input set.
 */

package app

import (
	"context"
	"log"

	"github.com/paybridge/payments-review-service/internal/domain"
)

// BulkSubmit persists each item's verification verdict and then submits it to
// the settlement network, collecting per-id successes and failures. The
// returned error is non-nil only for an empty input set; per-item failures
// live in the result.
func (s *Service) BulkSubmit(ctx context.Context, items []domain.BulkSubmitItem) (*domain.BulkSubmitResult, error) {
	if len(items) == 0 {
		return nil, ErrNoPaymentsSelected
	}

	result := &domain.BulkSubmitResult{
		Submitted: []*domain.Payment{},
		Failed:    []domain.BulkSubmitFailure{},
	}

	for _, item := range items {
		if _, err := s.PersistVerification(ctx, item.ID, item.AccountsVerified, item.SwiftCodeVerified); err != nil {
			result.Failed = append(result.Failed, domain.BulkSubmitFailure{ID: item.ID, Error: FailureMessage(err)})
			continue
		}

		payment, err := s.SubmitToSwift(ctx, item.ID)
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkSubmitFailure{ID: item.ID, Error: FailureMessage(err)})
			continue
		}

		result.Submitted = append(result.Submitted, payment)
	}

	log.Printf("level=info component=app operation=bulk_submit requested=%d submitted=%d failed=%d",
		len(items), len(result.Submitted), len(result.Failed))
	return result, nil
}
