package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/paybridge/payments-review-service/internal/domain"
	"github.com/paybridge/payments-review-service/internal/store"
)

type bulkRepoStub struct {
	store.Repository

	payments map[uuid.UUID]*domain.Payment

	verifyAttempts []uuid.UUID
	submitAttempts []uuid.UUID
}

func (s *bulkRepoStub) MarkPaymentVerified(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	s.verifyAttempts = append(s.verifyAttempts, paymentID)
	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}
	payment.Verified = true
	payment.Reason = domain.ReasonVerified
	return payment, nil
}

func (s *bulkRepoStub) SubmitPayment(ctx context.Context, paymentID uuid.UUID, receipt domain.SwiftReceipt) (*domain.Payment, error) {
	s.submitAttempts = append(s.submitAttempts, paymentID)
	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}
	if !payment.Verified {
		return nil, store.ErrPaymentNotVerified
	}
	payment.Submitted = true
	payment.Reason = domain.ReasonSubmitted
	payment.SwiftResponse = &receipt
	return payment, nil
}

func TestBulkSubmit_EmptySetRejected(t *testing.T) {
	service := NewService(&bulkRepoStub{}, nil, nil)

	_, err := service.BulkSubmit(context.Background(), nil)
	if !errors.Is(err, ErrNoPaymentsSelected) {
		t.Fatalf("expected ErrNoPaymentsSelected, got %v", err)
	}
}

func TestBulkSubmit_FailureDoesNotBlockSiblings(t *testing.T) {
	good := uuid.New()
	missing := uuid.New()
	alsoGood := uuid.New()
	repo := &bulkRepoStub{payments: map[uuid.UUID]*domain.Payment{
		good:     {ID: good},
		alsoGood: {ID: alsoGood},
	}}
	service := NewService(repo, nil, nil)

	result, err := service.BulkSubmit(context.Background(), []domain.BulkSubmitItem{
		{ID: good, AccountsVerified: true, SwiftCodeVerified: true},
		{ID: missing, AccountsVerified: true, SwiftCodeVerified: true},
		{ID: alsoGood, AccountsVerified: true, SwiftCodeVerified: true},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(result.Submitted) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(result.Submitted))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	if result.Failed[0].ID != missing {
		t.Fatalf("failure attributed to the wrong payment: %v", result.Failed[0].ID)
	}
	if result.Failed[0].Error != MsgPaymentNotFound {
		t.Fatalf("unexpected failure message: %q", result.Failed[0].Error)
	}

	// The item after the failure must still have been attempted, in order.
	if len(repo.verifyAttempts) != 3 {
		t.Fatalf("expected 3 verify attempts, got %v", repo.verifyAttempts)
	}
	if repo.verifyAttempts[2] != alsoGood {
		t.Fatalf("expected %v attempted after the failure, got %v", alsoGood, repo.verifyAttempts)
	}
}

func TestBulkSubmit_FailedChecksNeverReachSubmission(t *testing.T) {
	unchecked := uuid.New()
	repo := &bulkRepoStub{payments: map[uuid.UUID]*domain.Payment{
		unchecked: {ID: unchecked},
	}}
	service := NewService(repo, nil, nil)

	result, err := service.BulkSubmit(context.Background(), []domain.BulkSubmitItem{
		{ID: unchecked, AccountsVerified: true, SwiftCodeVerified: false},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(result.Failed) != 1 || result.Failed[0].Error != MsgChecksFailed {
		t.Fatalf("expected a checks-failed failure, got %+v", result.Failed)
	}
	if len(repo.submitAttempts) != 0 {
		t.Fatalf("failed checks must not reach submission, got %v", repo.submitAttempts)
	}
	if repo.payments[unchecked].Submitted {
		t.Fatal("payment must remain unsubmitted")
	}
}

func TestBulkSubmit_AllSucceedInInputOrder(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	repo := &bulkRepoStub{payments: map[uuid.UUID]*domain.Payment{
		first:  {ID: first},
		second: {ID: second},
	}}
	service := NewService(repo, nil, nil)

	result, err := service.BulkSubmit(context.Background(), []domain.BulkSubmitItem{
		{ID: first, AccountsVerified: true, SwiftCodeVerified: true},
		{ID: second, AccountsVerified: true, SwiftCodeVerified: true},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(result.Submitted) != 2 || len(result.Failed) != 0 {
		t.Fatalf("expected clean run, got %d submitted %d failed", len(result.Submitted), len(result.Failed))
	}
	if result.Submitted[0].ID != first || result.Submitted[1].ID != second {
		t.Fatalf("results out of input order: %v, %v", result.Submitted[0].ID, result.Submitted[1].ID)
	}
	if !result.Submitted[0].Submitted || result.Submitted[0].SwiftResponse == nil {
		t.Fatal("expected submitted payment with receipt")
	}
}
