package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChainID = 2020

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *mockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockBackend) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*types.Transaction), args.Bool(1), args.Error(2)
}

func (m *mockBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func newTestClient(t *testing.T) (*RoninClient, *mockBackend) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	backend := new(mockBackend)
	client, err := NewRoninClient(backend, testChainID, hexutil.Encode(crypto.FromECDSA(key)))
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), client.Address())

	return client, backend
}

func TestRoninClient_SendTransfer(t *testing.T) {
	t.Parallel()

	client, backend := newTestClient(t)
	recipient := common.HexToAddress("0x8ab1fb5e1d2c3e4f5a6b7c8d9e0f1a2b3c4d5e6f")

	var sent *types.Transaction
	backend.On("PendingNonceAt", mock.Anything, common.HexToAddress(client.Address())).Return(uint64(7), nil)
	backend.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(20_000_000_000), nil)
	backend.On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*types.Transaction) }).
		Return(nil)

	txHash, err := client.SendTransfer(context.Background(), "ronin:8ab1fb5e1d2c3e4f5a6b7c8d9e0f1a2b3c4d5e6f", 4)
	require.NoError(t, err)
	require.NotNil(t, sent)

	assert.Equal(t, sent.Hash().Hex(), txHash)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, TransferGasLimit, sent.Gas())
	assert.Equal(t, recipient, *sent.To())
	assert.Equal(t, "4000000000000000000", sent.Value().String())
	assert.Equal(t, int64(testChainID), sent.ChainId().Int64())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(testChainID)), sent)
	require.NoError(t, err)
	assert.Equal(t, client.Address(), from.Hex())
}

func TestRoninClient_SendTransferErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid wallet", func(t *testing.T) {
		t.Parallel()
		client, backend := newTestClient(t)

		_, err := client.SendTransfer(context.Background(), "ronin:xyz", 4)
		assert.Error(t, err)
		backend.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	})

	t.Run("amount rounds to zero", func(t *testing.T) {
		t.Parallel()
		client, _ := newTestClient(t)

		_, err := client.SendTransfer(context.Background(), "0x8ab1fb5e1d2c3e4f5a6b7c8d9e0f1a2b3c4d5e6f", 0.000000001)
		assert.ErrorContains(t, err, "rounds to zero")
	})

	t.Run("broadcast rejected", func(t *testing.T) {
		t.Parallel()
		client, backend := newTestClient(t)
		backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(0), nil)
		backend.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1), nil)
		backend.On("SendTransaction", mock.Anything, mock.Anything).Return(errors.New("insufficient funds for gas * price + value"))

		_, err := client.SendTransfer(context.Background(), "0x8ab1fb5e1d2c3e4f5a6b7c8d9e0f1a2b3c4d5e6f", 200)
		assert.ErrorContains(t, err, "insufficient funds")
	})
}

func TestRoninClient_GetTransaction(t *testing.T) {
	t.Parallel()

	client, backend := newTestClient(t)

	payer, err := crypto.GenerateKey()
	require.NoError(t, err)
	treasury := common.HexToAddress("0x1111111111111111111111111111111111111111")
	signer := types.LatestSignerForChainID(big.NewInt(testChainID))
	tx, err := types.SignTx(types.NewTransaction(3, treasury, big.NewInt(2e18), TransferGasLimit, big.NewInt(1), nil), signer, payer)
	require.NoError(t, err)

	backend.On("TransactionByHash", mock.Anything, tx.Hash()).Return(tx, false, nil)

	got, err := client.GetTransaction(context.Background(), tx.Hash().Hex())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, treasury.Hex(), got.To)
	assert.Equal(t, crypto.PubkeyToAddress(payer.PublicKey).Hex(), got.From)
	assert.Equal(t, big.NewInt(2e18), got.Value)
	assert.False(t, got.Pending)
}

func TestRoninClient_NotFound(t *testing.T) {
	t.Parallel()

	client, backend := newTestClient(t)
	hash := common.HexToHash("0x5e2a8f0b36d1c7e94a0f2b1d3c4e5f6a7b8c9d0e1f2a3b4c5d6e7f8091a2b3c4")
	backend.On("TransactionByHash", mock.Anything, hash).Return(nil, false, ethereum.NotFound)
	backend.On("TransactionReceipt", mock.Anything, hash).Return(nil, ethereum.NotFound)

	tx, err := client.GetTransaction(context.Background(), hash.Hex())
	require.NoError(t, err)
	assert.Nil(t, tx)

	receipt, err := client.GetTransactionReceipt(context.Background(), hash.Hex())
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestRoninClient_GetTransactionReceipt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status uint64
		want   bool
	}{
		{name: "successful", status: types.ReceiptStatusSuccessful, want: true},
		{name: "reverted", status: types.ReceiptStatusFailed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, backend := newTestClient(t)
			hash := common.HexToHash("0x01")
			backend.On("TransactionReceipt", mock.Anything, hash).Return(&types.Receipt{
				TxHash:      hash,
				Status:      tt.status,
				BlockNumber: big.NewInt(41_000_000),
			}, nil)

			receipt, err := client.GetTransactionReceipt(context.Background(), hash.Hex())
			require.NoError(t, err)
			assert.Equal(t, tt.want, receipt.Success)
			assert.Equal(t, uint64(41_000_000), receipt.BlockNumber)
		})
	}
}

func TestRoninClient_InvalidHash(t *testing.T) {
	t.Parallel()

	client, backend := newTestClient(t)

	_, err := client.GetTransaction(context.Background(), "not-a-hash")
	assert.ErrorContains(t, err, "invalid transaction hash")
	_, err = client.GetTransactionReceipt(context.Background(), "0x1234")
	assert.ErrorContains(t, err, "invalid transaction hash")
	backend.AssertNotCalled(t, "TransactionByHash", mock.Anything, mock.Anything)
}

func TestNewRoninClient_BadKey(t *testing.T) {
	t.Parallel()

	_, err := NewRoninClient(new(mockBackend), testChainID, "zz")
	assert.Error(t, err)
}
