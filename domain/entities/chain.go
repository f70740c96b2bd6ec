package entities

import "math/big"

// ChainTransaction is the subset of an on-chain transaction the lottery reads
type ChainTransaction struct {
	Hash    string
	From    string
	To      string // empty for contract creation
	Value   *big.Int
	Pending bool
}

// ChainReceipt is the execution outcome of a mined transaction
type ChainReceipt struct {
	Hash        string
	Success     bool
	BlockNumber uint64
}
