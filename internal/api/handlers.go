/**
 * @description
 * This file contains the HTTP handlers for the payments-review-service's API
 * endpoints. Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the application service, and writing the HTTP response.
 * They act as the bridge between the web layer and the business logic layer.
 *
 * Field validation happens here, before any state access; the service layer
 * only ever sees well-formed requests. Every rejected transition carries a
 * human-readable message because employees act on these to decide next steps.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paybridge/payments-review-service/internal/app"
	"github.com/paybridge/payments-review-service/internal/domain"
	"github.com/paybridge/payments-review-service/internal/store"
)

// PaymentReviewHandlers holds the application service that handlers will use.
type PaymentReviewHandlers struct {
	service *app.Service
}

// NewPaymentReviewHandlers creates a new instance of PaymentReviewHandlers.
func NewPaymentReviewHandlers(service *app.Service) *PaymentReviewHandlers {
	return &PaymentReviewHandlers{service: service}
}

// paymentResponse wraps a mutated payment with the outcome message the review
// UI surfaces to the employee.
type paymentResponse struct {
	Message string          `json:"message"`
	Payment *domain.Payment `json:"payment"`
}

type verifyAccountRequest struct {
	AccountNumber string `json:"accountNumber"`
	SenderEmail   string `json:"senderEmail"`
	AccountInfo   string `json:"accountInfo"`
	ReceiverEmail string `json:"receiverEmail"`
}

type verifySwiftRequest struct {
	SwiftCode string `json:"swiftCode"`
}

// updateVerificationRequest uses pointer booleans so "absent" and "false" are
// distinguishable: both verdict fields must be explicitly present.
type updateVerificationRequest struct {
	ID                string `json:"_id"`
	AccountsVerified  *bool  `json:"accountsVerified"`
	SwiftCodeVerified *bool  `json:"swiftCodeVerified"`
}

type paymentIDRequest struct {
	ID string `json:"_id"`
}

type bulkSubmitRequest struct {
	Items []bulkSubmitItemRequest `json:"items"`
}

type bulkSubmitItemRequest struct {
	ID                string `json:"_id"`
	AccountsVerified  bool   `json:"accountsVerified"`
	SwiftCodeVerified bool   `json:"swiftCodeVerified"`
}

type bulkSubmitFailureResponse struct {
	ID    string `json:"_id"`
	Error string `json:"error"`
}

type bulkSubmitResponse struct {
	Message        string                      `json:"message"`
	SubmittedCount int                         `json:"submittedCount"`
	FailedCount    int                         `json:"failedCount"`
	Submitted      []*domain.Payment           `json:"submitted"`
	Failed         []bulkSubmitFailureResponse `json:"failed"`
}

type deleteManyRequest struct {
	IDs []string `json:"ids"`
}

// GetAllPaymentsHandler returns payment records for the review table,
// optionally filtered by verification state (?verified=true|false), ordered
// by creation time descending.
func (h *PaymentReviewHandlers) GetAllPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	filter := domain.PaymentFilter{}
	switch r.URL.Query().Get("verified") {
	case "true":
		verified := true
		filter.Verified = &verified
	case "false":
		verified := false
		filter.Verified = &verified
	}

	payments, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		log.Printf("level=error component=api endpoint=getall msg=\"listing failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while fetching employee payments")
		return
	}

	h.writeJSON(w, http.StatusOK, payments)
}

// GetPaymentHandler returns a single payment record for the detail view.
func (h *PaymentReviewHandlers) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := h.parsePaymentID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(r.Context(), paymentID)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, payment)
	case errors.Is(err, store.ErrPaymentNotFound):
		h.writeError(w, http.StatusNotFound, app.MsgPaymentNotFound)
	default:
		log.Printf("level=error component=api endpoint=get_payment msg=\"lookup failed\" payment_id=%s err=%v", paymentID, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while fetching payment.")
	}
}

// VerifyAccountHandler runs the account-match check for the claimed sender
// and receiver identities.
func (h *PaymentReviewHandlers) VerifyAccountHandler(w http.ResponseWriter, r *http.Request) {
	employee, _ := GetEmployeeSubject(r.Context())

	var req verifyAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=verify_account outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.AccountNumber) == "" || strings.TrimSpace(req.SenderEmail) == "" ||
		strings.TrimSpace(req.AccountInfo) == "" || strings.TrimSpace(req.ReceiverEmail) == "" {
		h.writeError(w, http.StatusBadRequest, "Missing required fields. Please provide accountNumber, senderEmail, receiverEmail, and accountInfo.")
		return
	}

	result, err := h.service.CheckAccountMatch(r.Context(), employee, domain.AccountMatchRequest{
		AccountNumber: req.AccountNumber,
		SenderEmail:   req.SenderEmail,
		AccountInfo:   req.AccountInfo,
		ReceiverEmail: req.ReceiverEmail,
	})
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, result)
	case errors.Is(err, app.ErrSenderAccountNotFound), errors.Is(err, app.ErrReceiverAccountNotFound):
		h.writeJSON(w, http.StatusNotFound, result)
	case errors.Is(err, app.ErrSenderAccountMismatch), errors.Is(err, app.ErrReceiverAccountMismatch):
		h.writeJSON(w, http.StatusBadRequest, result)
	case errors.Is(err, app.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, app.MsgTooManyVerifyChecks)
	default:
		log.Printf("level=error component=api endpoint=verify_account msg=\"check failed\" employee=%s err=%v", employee, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while verifying account information.")
	}
}

// VerifySwiftHandler checks a SWIFT/BIC code against the reference index.
func (h *PaymentReviewHandlers) VerifySwiftHandler(w http.ResponseWriter, r *http.Request) {
	employee, _ := GetEmployeeSubject(r.Context())

	var req verifySwiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=verify_swift outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CheckSwift(r.Context(), employee, req.SwiftCode)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, result)
	case errors.Is(err, app.ErrMissingSwiftCode):
		h.writeJSON(w, http.StatusBadRequest, result)
	case errors.Is(err, app.ErrSwiftCodeNotFound):
		h.writeJSON(w, http.StatusNotFound, result)
	case errors.Is(err, app.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, app.MsgTooManyVerifyChecks)
	default:
		log.Printf("level=error component=api endpoint=verify_swift msg=\"check failed\" employee=%s err=%v", employee, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while verifying SWIFT code.")
	}
}

// UpdateVerificationHandler persists the verification verdict relayed by the
// review UI. Both verdict booleans must be explicitly present.
func (h *PaymentReviewHandlers) UpdateVerificationHandler(w http.ResponseWriter, r *http.Request) {
	var req updateVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=update_verification outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ID) == "" || req.AccountsVerified == nil || req.SwiftCodeVerified == nil {
		h.writeError(w, http.StatusBadRequest, "Missing or invalid fields. Expected _id, accountsVerified, and swiftCodeVerified (booleans).")
		return
	}

	paymentID, ok := h.parsePaymentID(w, req.ID)
	if !ok {
		return
	}

	payment, err := h.service.PersistVerification(r.Context(), paymentID, *req.AccountsVerified, *req.SwiftCodeVerified)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, paymentResponse{
			Message: "Payment verification status updated successfully.",
			Payment: payment,
		})
	case errors.Is(err, app.ErrChecksFailed):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"verified": false,
			"message":  app.MsgChecksFailed,
		})
	case errors.Is(err, store.ErrPaymentNotFound):
		h.writeError(w, http.StatusNotFound, app.MsgPaymentNotFound)
	default:
		log.Printf("level=error component=api endpoint=update_verification msg=\"transition failed\" payment_id=%s err=%v", paymentID, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while updating payment verification.")
	}
}

// UnverifyHandler flips a payment back to unverified so employees can
// re-check it. Unverifying an already-unverified payment still succeeds.
func (h *PaymentReviewHandlers) UnverifyHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := h.decodePaymentID(w, r)
	if !ok {
		return
	}

	payment, err := h.service.Unverify(r.Context(), paymentID)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, paymentResponse{
			Message: "Payment unverified successfully.",
			Payment: payment,
		})
	case errors.Is(err, store.ErrPaymentNotFound):
		h.writeError(w, http.StatusNotFound, app.MsgPaymentNotFound)
	default:
		log.Printf("level=error component=api endpoint=unverify msg=\"transition failed\" payment_id=%s err=%v", paymentID, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while un-verifying payment.")
	}
}

// SubmitToSwiftHandler submits a verified payment to the settlement network.
func (h *PaymentReviewHandlers) SubmitToSwiftHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := h.decodePaymentID(w, r)
	if !ok {
		return
	}

	payment, err := h.service.SubmitToSwift(r.Context(), paymentID)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, paymentResponse{
			Message: "Payment successfully submitted to SWIFT.",
			Payment: payment,
		})
	case errors.Is(err, store.ErrPaymentNotFound):
		h.writeError(w, http.StatusNotFound, "Payment not found.")
	case errors.Is(err, store.ErrPaymentNotVerified):
		h.writeError(w, http.StatusBadRequest, app.MsgCannotSubmit)
	default:
		log.Printf("level=error component=api endpoint=submit_to_swift msg=\"transition failed\" payment_id=%s err=%v", paymentID, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while submitting to SWIFT.")
	}
}

// BulkSubmitHandler persists verification and submits each selected payment
// sequentially, reporting per-id outcomes. The caller pre-filters the set to
// payments whose checks passed and that are not yet submitted.
func (h *PaymentReviewHandlers) BulkSubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=submit_multiple outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "Missing or invalid 'items' array in request body.")
		return
	}

	items := make([]domain.BulkSubmitItem, 0, len(req.Items))
	for _, item := range req.Items {
		paymentID, err := uuid.Parse(strings.TrimSpace(item.ID))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid payment id in 'items' array.")
			return
		}
		items = append(items, domain.BulkSubmitItem{
			ID:                paymentID,
			AccountsVerified:  item.AccountsVerified,
			SwiftCodeVerified: item.SwiftCodeVerified,
		})
	}

	result, err := h.service.BulkSubmit(r.Context(), items)
	if err != nil {
		log.Printf("level=error component=api endpoint=submit_multiple msg=\"bulk submit failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while submitting payments to SWIFT.")
		return
	}

	failures := make([]bulkSubmitFailureResponse, 0, len(result.Failed))
	for _, failed := range result.Failed {
		failures = append(failures, bulkSubmitFailureResponse{ID: failed.ID.String(), Error: failed.Error})
	}

	message := "All selected payments submitted to SWIFT."
	if len(result.Submitted) == 0 {
		message = "No payments were submitted."
	} else if len(result.Failed) > 0 {
		message = "Some payments failed while others were submitted."
	}

	h.writeJSON(w, http.StatusOK, bulkSubmitResponse{
		Message:        message,
		SubmittedCount: len(result.Submitted),
		FailedCount:    len(failures),
		Submitted:      result.Submitted,
		Failed:         failures,
	})
}

// DeleteOneHandler removes a payment permanently. Accepts body {_id} or
// query ?id=... for clients that cannot send DELETE bodies.
func (h *PaymentReviewHandlers) DeleteOneHandler(w http.ResponseWriter, r *http.Request) {
	var req paymentIDRequest
	if r.Body != nil {
		// A missing body is fine when the id arrives via query.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "Missing _id (or id query) in request.")
		return
	}

	paymentID, ok := h.parsePaymentID(w, id)
	if !ok {
		return
	}

	payment, err := h.service.DeletePayment(r.Context(), paymentID)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, paymentResponse{
			Message: "Payment deleted successfully.",
			Payment: payment,
		})
	case errors.Is(err, store.ErrPaymentNotFound):
		h.writeError(w, http.StatusNotFound, app.MsgPaymentNotFound)
	default:
		log.Printf("level=error component=api endpoint=delete msg=\"delete failed\" payment_id=%s err=%v", paymentID, err)
		h.writeError(w, http.StatusInternalServerError, "Server error while deleting payment.")
	}
}

// DeleteManyHandler removes a set of payments and reports how many rows were
// actually deleted. Ids that never existed (or do not parse) only lower the
// count; an empty set is rejected before any deletion attempt.
func (h *PaymentReviewHandlers) DeleteManyHandler(w http.ResponseWriter, r *http.Request) {
	var req deleteManyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=delete_multiple outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "Missing or invalid 'ids' array in request body.")
		return
	}

	paymentIDs := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		paymentID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			// An unparseable id cannot match any record; it just lowers the count.
			continue
		}
		paymentIDs = append(paymentIDs, paymentID)
	}

	var deleted int64
	if len(paymentIDs) > 0 {
		var err error
		deleted, err = h.service.DeletePayments(r.Context(), paymentIDs)
		if err != nil {
			log.Printf("level=error component=api endpoint=delete_multiple msg=\"bulk delete failed\" err=%v", err)
			h.writeError(w, http.StatusInternalServerError, "Server error while deleting payments.")
			return
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      formatDeletedMessage(deleted),
		"deletedCount": deleted,
	})
}

func formatDeletedMessage(deleted int64) string {
	if deleted == 1 {
		return "Deleted 1 record."
	}
	return fmt.Sprintf("Deleted %d record(s).", deleted)
}

// decodePaymentID reads a {_id} body and parses it, writing the appropriate
// 400 responses on failure.
func (h *PaymentReviewHandlers) decodePaymentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req paymentIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, false
	}
	if strings.TrimSpace(req.ID) == "" {
		h.writeError(w, http.StatusBadRequest, "Missing _id in request body.")
		return uuid.Nil, false
	}
	return h.parsePaymentID(w, req.ID)
}

func (h *PaymentReviewHandlers) parsePaymentID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	paymentID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid payment id format.")
		return uuid.Nil, false
	}
	return paymentID, true
}

// writeJSON writes a JSON response with the given status code.
func (h *PaymentReviewHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

// writeError writes a JSON error body of the shape {"message": "..."}.
func (h *PaymentReviewHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}
