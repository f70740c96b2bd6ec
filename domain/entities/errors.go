package entities

import "errors"

var (
	// ErrNoOpenRound is returned when no round currently accepts tickets
	ErrNoOpenRound = errors.New("no round is accepting tickets")

	// ErrPaymentAlreadyRedeemed is returned when a purchase transaction was already used for a ticket
	ErrPaymentAlreadyRedeemed = errors.New("payment already redeemed for a ticket")

	// ErrInvalidWallet is returned for wallet addresses that are not ronin: or 0x hex addresses
	ErrInvalidWallet = errors.New("invalid wallet address")
)
