package testhelpers

import (
	"context"
	"sync"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/domain/events"
	"ronlotto/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) SendTransfer(ctx context.Context, toWallet string, amount float64) (string, error) {
	args := m.Called(ctx, toWallet, amount)
	return args.String(0), args.Error(1)
}

func (m *MockChainClient) GetTransaction(ctx context.Context, txHash string) (*entities.ChainTransaction, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChainTransaction), args.Error(1)
}

func (m *MockChainClient) GetTransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChainReceipt), args.Error(1)
}

// MockWinnerNotifier is a mock implementation of WinnerNotifier
type MockWinnerNotifier struct {
	mock.Mock
}

func (m *MockWinnerNotifier) NotifyWinner(ctx context.Context, announcement *entities.WinnerAnnouncement) error {
	args := m.Called(ctx, announcement)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockMetricsRecorder is a mock implementation of MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordRoundAction(action string) {
	m.Called(action)
}

func (m *MockMetricsRecorder) RecordPayout(status entities.PaymentStatus, hits entities.HitCount, amount float64) {
	m.Called(status, hits, amount)
}

func (m *MockMetricsRecorder) RecordPaymentVerification(outcome string) {
	m.Called(outcome)
}

// MockRoundController is a mock implementation of RoundController
type MockRoundController struct {
	mock.Mock
}

func (m *MockRoundController) Advance(ctx context.Context) (*interfaces.AdvanceResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.AdvanceResult), args.Error(1)
}

// MockPaymentVerifier is a mock implementation of PaymentVerifier
type MockPaymentVerifier struct {
	mock.Mock
}

func (m *MockPaymentVerifier) Verify(ctx context.Context, request *interfaces.PaymentVerificationRequest) (*entities.Ticket, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

// FixedClock is a Clock that returns a settable time
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at now
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the frozen time
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock
func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SequenceSource is a RandomSource replaying fixed values. Each value is
// reduced modulo n; it panics when exhausted.
type SequenceSource struct {
	values []int
	next   int
}

// NewSequenceSource creates a source replaying values in order
func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

// Intn returns the next value modulo n
func (s *SequenceSource) Intn(n int) int {
	if s.next >= len(s.values) {
		panic("sequence source exhausted")
	}
	v := s.values[s.next] % n
	s.next++
	return v
}
