package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paybridge/payments-review-service/internal/domain"
	"github.com/paybridge/payments-review-service/internal/store"
	"github.com/paybridge/payments-review-service/internal/swiftref"
)

type accountMatchRepoStub struct {
	store.Repository

	accounts map[string]*domain.Account
	lookups  []string
	failWith error
}

func (s *accountMatchRepoStub) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.lookups = append(s.lookups, email)
	if s.failWith != nil {
		return nil, s.failWith
	}
	account, ok := s.accounts[email]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return account, nil
}

func newAccountMatchService(repo store.Repository) *Service {
	index := swiftref.New([]swiftref.Record{{BIC: "ABSAZAJJXXX"}, {BIC: "DEUTDEFF"}})
	return NewService(repo, index, nil)
}

func TestCheckAccountMatch_SenderNotFoundReportedFirst(t *testing.T) {
	// Neither party exists; the sender check must fire first.
	repo := &accountMatchRepoStub{accounts: map[string]*domain.Account{}}
	service := newAccountMatchService(repo)

	result, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "111",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "222",
		ReceiverEmail: "receiver@example.com",
	})

	if !errors.Is(err, ErrSenderAccountNotFound) {
		t.Fatalf("expected ErrSenderAccountNotFound, got %v", err)
	}
	if result == nil || result.Verified {
		t.Fatalf("expected unverified result, got %+v", result)
	}
	if result.Message != "Sender email not found in system." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if len(repo.lookups) != 1 || repo.lookups[0] != "sender@example.com" {
		t.Fatalf("expected a single sender lookup, got %v", repo.lookups)
	}
}

func TestCheckAccountMatch_SenderMismatchShortCircuits(t *testing.T) {
	repo := &accountMatchRepoStub{accounts: map[string]*domain.Account{
		"sender@example.com":   {Email: "sender@example.com", AccountNumber: "111"},
		"receiver@example.com": {Email: "receiver@example.com", AccountNumber: "222"},
	}}
	service := newAccountMatchService(repo)

	result, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "999",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "222",
		ReceiverEmail: "receiver@example.com",
	})

	if !errors.Is(err, ErrSenderAccountMismatch) {
		t.Fatalf("expected ErrSenderAccountMismatch, got %v", err)
	}
	if result.Message != "Sender account number does not match the provided email." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if len(repo.lookups) != 1 {
		t.Fatalf("expected receiver lookup to be skipped, got %v", repo.lookups)
	}
}

func TestCheckAccountMatch_ReceiverNotFound(t *testing.T) {
	repo := &accountMatchRepoStub{accounts: map[string]*domain.Account{
		"sender@example.com": {Email: "sender@example.com", AccountNumber: "111"},
	}}
	service := newAccountMatchService(repo)

	result, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "111",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "222",
		ReceiverEmail: "receiver@example.com",
	})

	if !errors.Is(err, ErrReceiverAccountNotFound) {
		t.Fatalf("expected ErrReceiverAccountNotFound, got %v", err)
	}
	if result.Message != "Receiver email not found in system." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestCheckAccountMatch_ReceiverMismatch(t *testing.T) {
	repo := &accountMatchRepoStub{accounts: map[string]*domain.Account{
		"sender@example.com":   {Email: "sender@example.com", AccountNumber: "111"},
		"receiver@example.com": {Email: "receiver@example.com", AccountNumber: "222"},
	}}
	service := newAccountMatchService(repo)

	result, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "111",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "333",
		ReceiverEmail: "receiver@example.com",
	})

	if !errors.Is(err, ErrReceiverAccountMismatch) {
		t.Fatalf("expected ErrReceiverAccountMismatch, got %v", err)
	}
	if result.Message != "Receiver account number does not match records." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestCheckAccountMatch_BothPartiesVerified(t *testing.T) {
	repo := &accountMatchRepoStub{accounts: map[string]*domain.Account{
		"sender@example.com":   {Email: "sender@example.com", AccountNumber: "111"},
		"receiver@example.com": {Email: "receiver@example.com", AccountNumber: "222"},
	}}
	service := newAccountMatchService(repo)

	result, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "111",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "222",
		ReceiverEmail: "receiver@example.com",
	})

	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !result.Verified {
		t.Fatal("expected verified result")
	}
	if result.Message != "Both sender and receiver verified successfully." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestCheckAccountMatch_TransientStoreFailure(t *testing.T) {
	repo := &accountMatchRepoStub{failWith: errors.New("connection reset")}
	service := newAccountMatchService(repo)

	result, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "111",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "222",
		ReceiverEmail: "receiver@example.com",
	})

	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrSenderAccountNotFound) || errors.Is(err, ErrSenderAccountMismatch) {
		t.Fatalf("transient failure must not map to a verdict error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result on transient failure, got %+v", result)
	}
}

func TestCheckSwift_ValidCodeIsNormalized(t *testing.T) {
	service := newAccountMatchService(&accountMatchRepoStub{})

	// Lowercase with embedded whitespace must still match the indexed code.
	result, err := service.CheckSwift(context.Background(), "emp_1", "  deutd eff ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !result.Valid {
		t.Fatal("expected valid result")
	}
	if result.Message != "SWIFT code is valid." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestCheckSwift_MissingCode(t *testing.T) {
	service := newAccountMatchService(&accountMatchRepoStub{})

	result, err := service.CheckSwift(context.Background(), "emp_1", "   ")
	if !errors.Is(err, ErrMissingSwiftCode) {
		t.Fatalf("expected ErrMissingSwiftCode, got %v", err)
	}
	if result.Message != "Missing SWIFT code in request body." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestCheckSwift_UnknownCode(t *testing.T) {
	service := newAccountMatchService(&accountMatchRepoStub{})

	result, err := service.CheckSwift(context.Background(), "emp_1", "NOPENOPE")
	if !errors.Is(err, ErrSwiftCodeNotFound) {
		t.Fatalf("expected ErrSwiftCodeNotFound, got %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if result.Message != "SWIFT code not valid or not found." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestCheckSwift_EmptyIndexNeverMatches(t *testing.T) {
	service := NewService(&accountMatchRepoStub{}, swiftref.Empty(), nil)

	_, err := service.CheckSwift(context.Background(), "emp_1", "DEUTDEFF")
	if !errors.Is(err, ErrSwiftCodeNotFound) {
		t.Fatalf("expected ErrSwiftCodeNotFound on empty index, got %v", err)
	}
}

type rateLimiterStub struct {
	count int
	err   error
	calls int
}

func (s *rateLimiterStub) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	s.calls++
	return s.count, 30, s.err
}

func TestCheckSwift_RateLimitExceeded(t *testing.T) {
	service := newAccountMatchService(&accountMatchRepoStub{})
	limiter := &rateLimiterStub{count: 11}
	service.SetRateLimiter(limiter, 10, 10)

	_, err := service.CheckSwift(context.Background(), "emp_1", "DEUTDEFF")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if limiter.calls != 1 {
		t.Fatalf("expected one limiter call, got %d", limiter.calls)
	}
}

func TestCheckSwift_LimiterOutageFailsOpen(t *testing.T) {
	service := newAccountMatchService(&accountMatchRepoStub{})
	service.SetRateLimiter(&rateLimiterStub{err: errors.New("redis down")}, 10, 10)

	result, err := service.CheckSwift(context.Background(), "emp_1", "DEUTDEFF")
	if err != nil {
		t.Fatalf("expected the check to proceed on limiter outage, got %v", err)
	}
	if !result.Valid {
		t.Fatal("expected valid result")
	}
}

func TestCheckAccountMatch_ZeroLimitDisablesLimiting(t *testing.T) {
	repo := &accountMatchRepoStub{accounts: map[string]*domain.Account{
		"sender@example.com":   {Email: "sender@example.com", AccountNumber: "111"},
		"receiver@example.com": {Email: "receiver@example.com", AccountNumber: "222"},
	}}
	service := newAccountMatchService(repo)
	limiter := &rateLimiterStub{count: 1000}
	service.SetRateLimiter(limiter, 0, 0)

	_, err := service.CheckAccountMatch(context.Background(), "emp_1", domain.AccountMatchRequest{
		AccountNumber: "111",
		SenderEmail:   "sender@example.com",
		AccountInfo:   "222",
		ReceiverEmail: "receiver@example.com",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if limiter.calls != 0 {
		t.Fatalf("expected the limiter to be skipped, got %d calls", limiter.calls)
	}
}
