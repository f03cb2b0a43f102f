package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paybridge/payments-review-service/internal/domain"
	"github.com/paybridge/payments-review-service/internal/store"
)

// PaymentIngestConsumer receives payment.created events from the customer
// portal and seeds the review queue. Records always enter unverified.
type PaymentIngestConsumer struct {
	repo store.Repository
}

func NewPaymentIngestConsumer(repo store.Repository) *PaymentIngestConsumer {
	return &PaymentIngestConsumer{repo: repo}
}

// PaymentIngestConsumer returns the consumer bound to this service's repository.
func (s *Service) PaymentIngestConsumer() *PaymentIngestConsumer {
	return NewPaymentIngestConsumer(s.repo)
}

// HandleMessage processes one delivery. Malformed payloads are acknowledged
// and dropped; transient store failures re-queue the delivery.
func (c *PaymentIngestConsumer) HandleMessage(body []byte) bool {
	var event domain.PaymentCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("level=warn component=ingest msg=\"unmarshal failed; dropping\" err=%v", err)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := c.processEvent(ctx, event); err != nil {
		log.Printf("level=error component=ingest msg=\"processing failed; re-queuing\" event_id=%s err=%v", event.EventID, err)
		return false
	}

	return true
}

func (c *PaymentIngestConsumer) processEvent(ctx context.Context, event domain.PaymentCreatedEvent) error {
	if strings.TrimSpace(event.SenderEmail) == "" || strings.TrimSpace(event.ReceiverEmail) == "" {
		log.Printf("level=warn component=ingest msg=\"event missing party emails; dropping\" event_id=%s", event.EventID)
		return nil
	}
	if event.Amount.IsNegative() {
		log.Printf("level=warn component=ingest msg=\"negative amount; dropping\" event_id=%s amount=%s", event.EventID, event.Amount)
		return nil
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	payment := &domain.Payment{
		ID:            uuid.New(),
		SenderEmail:   strings.TrimSpace(event.SenderEmail),
		ReceiverEmail: strings.TrimSpace(event.ReceiverEmail),
		AccountNumber: strings.TrimSpace(event.AccountNumber),
		AccountInfo:   strings.TrimSpace(event.AccountInfo),
		Provider:      event.Provider,
		SwiftCode:     strings.TrimSpace(event.SwiftCode),
		Amount:        event.Amount,
		Currency:      event.Currency,
		Reason:        "Awaiting review",
		CreatedAt:     createdAt,
	}

	if err := c.repo.CreatePayment(ctx, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	log.Printf("level=info component=ingest msg=\"payment ingested\" payment_id=%s sender=%s", payment.ID, payment.SenderEmail)
	return nil
}
