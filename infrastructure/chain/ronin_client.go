package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"ronlotto/domain/entities"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

// TransferGasLimit is the gas of a plain native transfer
const TransferGasLimit = uint64(21000)

// Backend is the part of ethclient.Client the lottery uses, so tests can mock it
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// RoninClient sends prize transfers from the lottery wallet and looks up
// ticket payments on the Ronin chain
type RoninClient struct {
	backend    Backend
	privateKey *ecdsa.PrivateKey
	from       common.Address
	signer     types.Signer

	// Serializes nonce assignment between concurrent transfers
	mu sync.Mutex
}

// NewRoninClient creates a client signing with the given hex private key
func NewRoninClient(backend Backend, chainID int64, privateKeyHex string) (*RoninClient, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &RoninClient{
		backend:    backend,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(privateKey.PublicKey),
		signer:     types.LatestSignerForChainID(big.NewInt(chainID)),
	}, nil
}

// DialRoninClient connects to the RPC endpoint and creates a client
func DialRoninClient(ctx context.Context, rpcURL string, chainID int64, privateKeyHex string) (*RoninClient, *ethclient.Client, error) {
	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial Ronin RPC: %w", err)
	}

	client, err := NewRoninClient(ethClient, chainID, privateKeyHex)
	if err != nil {
		ethClient.Close()
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"rpc":      rpcURL,
		"chain_id": chainID,
		"wallet":   client.from.Hex(),
	}).Info("Connected to Ronin RPC")
	return client, ethClient, nil
}

// Address returns the prize wallet address
func (c *RoninClient) Address() string {
	return c.from.Hex()
}

// SendTransfer signs and broadcasts a native RON transfer. It does not wait
// for the transaction to be mined.
func (c *RoninClient) SendTransfer(ctx context.Context, toWallet string, amount float64) (string, error) {
	to, err := entities.NormalizeWallet(toWallet)
	if err != nil {
		return "", err
	}

	value, err := entities.ToWei(amount)
	if err != nil {
		return "", err
	}
	if value.Sign() == 0 {
		return "", fmt.Errorf("transfer amount %v rounds to zero", amount)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(to), value, TransferGasLimit, gasPrice, nil)
	signedTx, err := types.SignTx(tx, c.signer, c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"to":      to,
		"amount":  amount,
		"nonce":   nonce,
		"tx_hash": signedTx.Hash().Hex(),
	}).Debug("Broadcast transfer")

	return signedTx.Hash().Hex(), nil
}

// GetTransaction returns the transaction, nil when the node does not know it
func (c *RoninClient) GetTransaction(ctx context.Context, txHash string) (*entities.ChainTransaction, error) {
	hash, err := parseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	tx, pending, err := c.backend.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", txHash, err)
	}

	result := &entities.ChainTransaction{
		Hash:    tx.Hash().Hex(),
		Value:   tx.Value(),
		Pending: pending,
	}
	if to := tx.To(); to != nil {
		result.To = to.Hex()
	}
	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		result.From = from.Hex()
	}

	return result, nil
}

// GetTransactionReceipt returns the receipt, nil when the transaction is not mined
func (c *RoninClient) GetTransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	hash, err := parseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt %s: %w", txHash, err)
	}

	result := &entities.ChainReceipt{
		Hash:    receipt.TxHash.Hex(),
		Success: receipt.Status == types.ReceiptStatusSuccessful,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}

	return result, nil
}

func parseTxHash(txHash string) (common.Hash, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(txHash))
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid transaction hash %q", txHash)
	}
	return common.BytesToHash(raw), nil
}
