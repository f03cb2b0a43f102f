/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to payments under review and the account records they are verified
 * against.
 *
 * @dependencies
 * - context, encoding/json, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paybridge/payments-review-service/internal/domain"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentNotVerified = errors.New("payment not verified")
)

const paymentColumns = `id, sender_email, receiver_email, account_number, account_info, provider,
	swift_code, amount, currency, verified, reason, submitted, swift_response, created_at, updated_at`

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindAccountByEmail retrieves the account record for an email address.
// Emails are compared case-insensitively; account numbers are opaque strings
// and compared verbatim by the verification engine.
func (r *PostgresRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, btrim(email), account_number FROM accounts WHERE lower(btrim(email)) = lower(btrim($1))`
	err := r.db.QueryRow(ctx, query, email).Scan(&account.ID, &account.Email, &account.AccountNumber)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// listPaymentsQuery builds the listing statement for a filter. Split out so
// the WHERE/ORDER construction stays test-covered without a live database.
func listPaymentsQuery(filter domain.PaymentFilter) (string, []interface{}) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	args := []interface{}{}
	if filter.Verified != nil {
		query += ` WHERE verified = $1`
		args = append(args, *filter.Verified)
	}
	query += ` ORDER BY created_at DESC`
	return query, args
}

// ListPayments returns payments ordered by creation time descending,
// optionally filtered by verification state.
func (r *PostgresRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	query, args := listPaymentsQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// FindPaymentByID retrieves a single payment record.
func (r *PostgresRepository) FindPaymentByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// CreatePayment inserts a new payment record. New records always enter the
// lifecycle unverified and unsubmitted regardless of what the event claimed.
func (r *PostgresRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, sender_email, receiver_email, account_number, account_info,
			provider, swift_code, amount, currency, verified, reason, submitted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, false, $11, $11)
	`
	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.SenderEmail,
		payment.ReceiverEmail,
		payment.AccountNumber,
		payment.AccountInfo,
		payment.Provider,
		payment.SwiftCode,
		payment.Amount,
		payment.Currency,
		payment.Reason,
		payment.CreatedAt,
	)
	return err
}

// MarkPaymentVerified flips a payment to verified with its success reason.
// The whole transition is one UPDATE; concurrent readers never observe a
// partially applied state.
func (r *PostgresRepository) MarkPaymentVerified(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET verified = true, reason = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + paymentColumns
	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, domain.ReasonVerified))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// MarkPaymentUnverified flips a payment back to unverified. Applying it to an
// already-unverified payment is a state-wise no-op that still succeeds.
func (r *PostgresRepository) MarkPaymentUnverified(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET verified = false, reason = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + paymentColumns
	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, domain.ReasonUnverified))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// SubmitPayment marks a verified payment as handed off to the settlement
// network and stamps the receipt. The verified precondition lives in the
// WHERE clause so the check and the update are one atomic statement; when no
// row comes back we re-read once to tell "absent" from "unverified".
func (r *PostgresRepository) SubmitPayment(ctx context.Context, paymentID uuid.UUID, receipt domain.SwiftReceipt) (*domain.Payment, error) {
	receiptJSON, err := json.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("encode swift receipt: %w", err)
	}

	query := `
		UPDATE payments
		SET submitted = true, reason = $2, swift_response = $3, updated_at = now()
		WHERE id = $1 AND verified = true
		RETURNING ` + paymentColumns
	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, domain.ReasonSubmitted, receiptJSON))
	if err == nil {
		return payment, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	var verified bool
	diagErr := r.db.QueryRow(ctx, `SELECT verified FROM payments WHERE id = $1`, paymentID).Scan(&verified)
	if diagErr != nil {
		if diagErr == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, diagErr
	}
	return nil, ErrPaymentNotVerified
}

// DeletePayment removes a payment permanently and returns the deleted row.
func (r *PostgresRepository) DeletePayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	query := `DELETE FROM payments WHERE id = $1 RETURNING ` + paymentColumns
	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// DeletePayments removes every payment whose id is in the set and reports how
// many rows actually went away. Absent ids only lower the count; they are not
// an error.
func (r *PostgresRepository) DeletePayments(ctx context.Context, paymentIDs []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = ANY($1)`, paymentIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// scanPayment maps one payments row onto the domain model, decoding the
// settlement receipt when present.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	var receiptRaw []byte
	err := row.Scan(
		&payment.ID,
		&payment.SenderEmail,
		&payment.ReceiverEmail,
		&payment.AccountNumber,
		&payment.AccountInfo,
		&payment.Provider,
		&payment.SwiftCode,
		&payment.Amount,
		&payment.Currency,
		&payment.Verified,
		&payment.Reason,
		&payment.Submitted,
		&receiptRaw,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(receiptRaw) > 0 {
		var receipt domain.SwiftReceipt
		if err := json.Unmarshal(receiptRaw, &receipt); err != nil {
			return nil, fmt.Errorf("decode swift receipt: %w", err)
		}
		payment.SwiftResponse = &receipt
	}
	return &payment, nil
}
