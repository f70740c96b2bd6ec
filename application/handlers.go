package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ronlotto/application/dto"
	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"
	"ronlotto/domain/services"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Response texts of the two public entrypoints
const (
	MessageAdvanceFailed      = "Error processing lottery round."
	MessagePaymentConfirmed   = "Payment confirmed"
	MessageInsufficientAmount = "Insufficient amount"
	MessageInvalidRequest     = "Invalid request body"
	MessageVerifyFailed       = "Error verifying payment"
)

// maxVerifyBodyBytes caps the verify-payments request body
const maxVerifyBodyBytes = 4 << 10

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handlers serves the lottery HTTP entrypoints
type Handlers struct {
	controller interfaces.RoundController
	verifier   interfaces.PaymentVerifier
	rounds     interfaces.RoundRepository
	tickets    interfaces.TicketRepository
	payments   interfaces.PaymentRepository
	health     HealthChecker
}

// NewHandlers creates the HTTP handlers. health may be nil.
func NewHandlers(
	controller interfaces.RoundController,
	verifier interfaces.PaymentVerifier,
	rounds interfaces.RoundRepository,
	tickets interfaces.TicketRepository,
	payments interfaces.PaymentRepository,
	health HealthChecker,
) *Handlers {
	return &Handlers{
		controller: controller,
		verifier:   verifier,
		rounds:     rounds,
		tickets:    tickets,
		payments:   payments,
		health:     health,
	}
}

// ProcessLotteryRound advances the round lifecycle by at most one transition
func (h *Handlers) ProcessLotteryRound(w http.ResponseWriter, r *http.Request) {
	result, err := h.controller.Advance(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to advance lottery round")
		writeText(w, http.StatusInternalServerError, MessageAdvanceFailed)
		return
	}

	writeText(w, http.StatusOK, result.Message)
}

// VerifyPayment confirms a ticket payment on chain and issues the ticket
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxVerifyBodyBytes)

	var body dto.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, MessageInvalidRequest)
		return
	}

	request, err := body.ToDomain()
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.verifier.Verify(r.Context(), request)
	switch {
	case err == nil:
		log.WithFields(log.Fields{
			"ticket_id": ticket.ID,
			"round_id":  ticket.RoundID,
		}).Info("Ticket issued for confirmed payment")
		writeText(w, http.StatusOK, MessagePaymentConfirmed)
	case errors.Is(err, services.ErrInsufficientPayment):
		writeText(w, http.StatusBadRequest, MessageInsufficientAmount)
	case isValidationError(err):
		writeText(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).WithField("tx_hash", request.TransactionReference).Error("Error verifying payment")
		writeText(w, http.StatusInternalServerError, MessageVerifyFailed)
	}
}

// CurrentRound returns the open round with its ticket count
func (h *Handlers) CurrentRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.rounds.GetCurrentOpen(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get current round")
		writeError(w, http.StatusInternalServerError, "failed to load current round")
		return
	}
	if round == nil {
		writeError(w, http.StatusNotFound, "no open round")
		return
	}

	count, err := h.tickets.CountByRound(r.Context(), round.ID)
	if err != nil {
		log.WithError(err).WithField("round_id", round.ID).Error("Failed to count tickets")
		writeError(w, http.StatusInternalServerError, "failed to count tickets")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRoundDTO(round, count))
}

// RoundPayments returns the payment ledger of a round
func (h *Handlers) RoundPayments(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || roundID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid round id")
		return
	}

	round, err := h.rounds.GetByID(r.Context(), roundID)
	if err != nil {
		log.WithError(err).WithField("round_id", roundID).Error("Failed to get round")
		writeError(w, http.StatusInternalServerError, "failed to load round")
		return
	}
	if round == nil {
		writeError(w, http.StatusNotFound, "round not found")
		return
	}

	payments, err := h.payments.ListByRound(r.Context(), roundID)
	if err != nil {
		log.WithError(err).WithField("round_id", roundID).Error("Failed to list payments")
		writeError(w, http.StatusInternalServerError, "failed to load payments")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRoundPaymentsDTO(roundID, payments))
}

// Health reports liveness, and database reachability when a checker is set
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.health.Ping(ctx); err != nil {
			log.WithError(err).Warn("Health check failed")
			writeText(w, http.StatusServiceUnavailable, "UNAVAILABLE")
			return
		}
	}

	writeText(w, http.StatusOK, "OK")
}

// Preflight answers CORS preflight requests with an empty body
func Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrInvalidPaymentRequest) ||
		errors.Is(err, services.ErrPaymentRecipientMismatch) ||
		errors.Is(err, entities.ErrInvalidCombination) ||
		errors.Is(err, entities.ErrInvalidWallet)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		log.WithError(err).Debug("Failed to write response")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Debug("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
