package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"
)

// VerifyPaymentRequest is the body of POST /verify-payments. The short
// field names sent by older web clients are still accepted.
type VerifyPaymentRequest struct {
	TransactionReference string          `json:"transactionReference"`
	Wallet               string          `json:"wallet"`
	TicketPayload        json.RawMessage `json:"ticketPayload"`

	LegacyTransactionReference string          `json:"ptxhass"`
	LegacyTicket               json.RawMessage `json:"ticket"`
}

// ToDomain builds the verification request. The ticket may be a
// "NN-NN-NN-NN-NN-NN" string or an array of numbers or numeric strings.
func (r *VerifyPaymentRequest) ToDomain() (*interfaces.PaymentVerificationRequest, error) {
	txHash := r.TransactionReference
	if txHash == "" {
		txHash = r.LegacyTransactionReference
	}

	raw := r.TicketPayload
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = r.LegacyTicket
	}

	ticket, err := decodeTicketPayload(raw)
	if err != nil {
		return nil, err
	}

	return &interfaces.PaymentVerificationRequest{
		TransactionReference: txHash,
		Wallet:               r.Wallet,
		TicketPayload:        ticket,
	}, nil
}

func decodeTicketPayload(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: ticket is required", entities.ErrInvalidCombination)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", fmt.Errorf("%w: ticket must be a string or an array", entities.ErrInvalidCombination)
	}

	tokens := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			tokens = append(tokens, strings.TrimSpace(s))
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return "", fmt.Errorf("%w: unexpected ticket element %s", entities.ErrInvalidCombination, item)
		}
		tokens = append(tokens, n.String())
	}

	return strings.Join(tokens, entities.CombinationDelimiter), nil
}
