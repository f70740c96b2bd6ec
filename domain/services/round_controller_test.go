package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/domain/events"
	"ronlotto/domain/interfaces"
	"ronlotto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testDeadline = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

type controllerMocks struct {
	roundRepo      *testhelpers.MockRoundRepository
	ticketRepo     *testhelpers.MockTicketRepository
	paymentRepo    *testhelpers.MockPaymentRepository
	chainClient    *testhelpers.MockChainClient
	eventPublisher *testhelpers.MockEventPublisher
	metrics        *testhelpers.MockMetricsRecorder
	clock          *testhelpers.FixedClock
}

// setupRoundController wires a controller whose draws always produce 00-01-02-03-04-05
func setupRoundController(now time.Time) (interfaces.RoundController, *controllerMocks) {
	m := &controllerMocks{
		roundRepo:      new(testhelpers.MockRoundRepository),
		ticketRepo:     new(testhelpers.MockTicketRepository),
		paymentRepo:    new(testhelpers.MockPaymentRepository),
		chainClient:    new(testhelpers.MockChainClient),
		eventPublisher: new(testhelpers.MockEventPublisher),
		metrics:        new(testhelpers.MockMetricsRecorder),
		clock:          testhelpers.NewFixedClock(now),
	}
	m.eventPublisher.On("Publish", mock.Anything).Return(nil).Maybe()
	m.metrics.On("RecordRoundAction", mock.Anything).Maybe()
	m.metrics.On("RecordPayout", mock.Anything, mock.Anything, mock.Anything).Maybe()

	generator := NewNumberGenerator(testhelpers.NewSequenceSource(0, 0, 0, 0, 0, 0))
	disburser := NewPayoutDisburser(m.paymentRepo, m.chainClient, nil, m.eventPublisher, m.metrics, PayoutDisburserConfig{})

	controller := NewRoundController(
		m.roundRepo, m.ticketRepo, generator, disburser,
		m.eventPublisher, m.metrics, m.clock, 0,
	)
	return controller, m
}

func createTestRound(id int64, deadline time.Time, opts ...func(*entities.Round)) *entities.Round {
	round := &entities.Round{
		ID:        id,
		Deadline:  deadline,
		CreatedAt: deadline.Add(-DefaultRoundDuration),
	}
	for _, opt := range opts {
		opt(round)
	}
	return round
}

func locked(r *entities.Round) { r.IsLocked = true }

func completedWith(numbers string) func(*entities.Round) {
	return func(r *entities.Round) {
		r.IsLocked = true
		r.IsCompleted = true
		r.DrawnNumbers = &numbers
	}
}

func TestRoundController_OpensRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		last *entities.Round
	}{
		{name: "first round ever", last: nil},
		{name: "cooldown elapsed", last: createTestRound(4, testDeadline.Add(-entities.RoundCooldown), completedWith("01-02-03-04-05-06"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			controller, m := setupRoundController(testDeadline)
			m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(nil, nil)
			m.roundRepo.On("GetLatestCompleted", mock.Anything).Return(tt.last, nil)
			if tt.last != nil {
				m.ticketRepo.On("CountUnsettledByRound", mock.Anything, tt.last.ID).Return(int64(0), nil)
			}
			newRound := createTestRound(5, testDeadline.Add(DefaultRoundDuration))
			m.roundRepo.On("Create", mock.Anything, testDeadline.Add(DefaultRoundDuration)).Return(newRound, true, nil)

			result, err := controller.Advance(context.Background())

			require.NoError(t, err)
			assert.Equal(t, interfaces.RoundActionOpened, result.Action)
			assert.Equal(t, int64(5), result.RoundID)
			assert.Equal(t, MessageRoundOpened, result.Message)
			m.roundRepo.AssertExpectations(t)
			m.eventPublisher.AssertCalled(t, "Publish", events.RoundOpenedEvent{RoundID: 5, Deadline: newRound.Deadline})
		})
	}
}

func TestRoundController_Cooldown(t *testing.T) {
	t.Parallel()

	controller, m := setupRoundController(testDeadline)
	last := createTestRound(4, testDeadline.Add(-time.Minute), completedWith("01-02-03-04-05-06"))
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(nil, nil)
	m.roundRepo.On("GetLatestCompleted", mock.Anything).Return(last, nil)
	m.ticketRepo.On("CountUnsettledByRound", mock.Anything, int64(4)).Return(int64(0), nil)

	result, err := controller.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interfaces.RoundActionCooldown, result.Action)
	assert.Equal(t, MessageNoActiveRound, result.Message)
	m.roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoundController_ConcurrentCreateLoses(t *testing.T) {
	t.Parallel()

	controller, m := setupRoundController(testDeadline)
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(nil, nil)
	m.roundRepo.On("GetLatestCompleted", mock.Anything).Return(nil, nil)
	m.roundRepo.On("Create", mock.Anything, mock.Anything).Return(nil, false, nil)

	result, err := controller.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interfaces.RoundActionAlreadyApplied, result.Action)
	m.eventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRoundController_LocksNearClose(t *testing.T) {
	t.Parallel()

	controller, m := setupRoundController(testDeadline.Add(-90 * time.Second))
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline), nil)
	m.roundRepo.On("Lock", mock.Anything, int64(9)).Return(true, nil)

	result, err := controller.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interfaces.RoundActionLocked, result.Action)
	assert.Equal(t, "Less than 2 minutes left. Lotto locked.", result.Message)
	m.roundRepo.AssertExpectations(t)
	m.metrics.AssertCalled(t, "RecordRoundAction", "locked")
}

func TestRoundController_LockAlreadyApplied(t *testing.T) {
	t.Parallel()

	controller, m := setupRoundController(testDeadline.Add(-30 * time.Second))
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline), nil)
	m.roundRepo.On("Lock", mock.Anything, int64(9)).Return(false, nil)

	result, err := controller.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interfaces.RoundActionAlreadyApplied, result.Action)
}

func TestRoundController_NotReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		now   time.Time
		round *entities.Round
	}{
		{name: "open with time left", now: testDeadline.Add(-10 * time.Minute), round: createTestRound(9, testDeadline)},
		{name: "locked before deadline", now: testDeadline.Add(-time.Minute), round: createTestRound(9, testDeadline, locked)},
		{name: "locked inside grace", now: testDeadline.Add(5 * time.Second), round: createTestRound(9, testDeadline, locked)},
		{name: "unlocked inside grace", now: testDeadline.Add(9 * time.Second), round: createTestRound(9, testDeadline)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			controller, m := setupRoundController(tt.now)
			m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(tt.round, nil)

			result, err := controller.Advance(context.Background())

			require.NoError(t, err)
			assert.Equal(t, interfaces.RoundActionNotReady, result.Action)
			assert.Equal(t, MessageNotReady, result.Message)
			m.roundRepo.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
			m.roundRepo.AssertNotCalled(t, "CompleteWithNumbers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRoundController_DrawsAndSettles(t *testing.T) {
	t.Parallel()

	for _, round := range []*entities.Round{
		createTestRound(9, testDeadline, locked),
		createTestRound(9, testDeadline), // never locked by a poll
	} {
		now := testDeadline.Add(15 * time.Second)
		controller, m := setupRoundController(now)

		m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(round, nil)
		m.roundRepo.On("CompleteWithNumbers", mock.Anything, int64(9), "00-01-02-03-04-05", now).Return(true, nil)
		m.ticketRepo.On("ListUnsettledByRound", mock.Anything, int64(9)).Return([]*entities.Ticket{
			createTestTicket(100, 9, "0xwinner", "00-01-02-37-38-39"),
			createTestTicket(101, 9, "0xloser", "10-11-12-13-14-15"),
		}, nil)
		m.ticketRepo.On("Claim", mock.Anything, int64(100)).Return(true, nil)
		m.ticketRepo.On("Claim", mock.Anything, int64(101)).Return(true, nil)
		m.paymentRepo.On("ExistsForTicket", mock.Anything, int64(100)).Return(false, nil)
		m.chainClient.On("SendTransfer", mock.Anything, "0xwinner", 4.0).Return("0xprize", nil)
		m.paymentRepo.On("RecordSent", mock.Anything, mock.MatchedBy(func(p *entities.Payment) bool {
			return p.RoundID == 9 && p.TicketID == 100 && p.Hits == entities.HitsThree && *p.TxHash == "0xprize"
		})).Return(nil)

		result, err := controller.Advance(context.Background())

		require.NoError(t, err)
		assert.Equal(t, interfaces.RoundActionDrawn, result.Action)
		assert.Equal(t, MessageDrawn, result.Message)
		assert.Equal(t, &interfaces.SettlementSummary{
			RoundID:        9,
			DrawnNumbers:   "00-01-02-03-04-05",
			TicketsScanned: 2,
			Winners:        1,
			Sent:           1,
		}, result.Settlement)
		m.roundRepo.AssertExpectations(t)
		m.ticketRepo.AssertExpectations(t)
		m.paymentRepo.AssertExpectations(t)
		m.chainClient.AssertNotCalled(t, "SendTransfer", mock.Anything, "0xloser", mock.Anything)
	}
}

func TestRoundController_DrawAlreadyApplied(t *testing.T) {
	t.Parallel()

	now := testDeadline.Add(15 * time.Second)
	controller, m := setupRoundController(now)
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline, locked), nil)
	m.roundRepo.On("CompleteWithNumbers", mock.Anything, int64(9), mock.Anything, now).Return(false, nil)

	result, err := controller.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interfaces.RoundActionAlreadyApplied, result.Action)
	assert.Nil(t, result.Settlement)
	m.ticketRepo.AssertNotCalled(t, "ListUnsettledByRound", mock.Anything, mock.Anything)
	m.chainClient.AssertNotCalled(t, "SendTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoundController_ResumesInterruptedSettlement(t *testing.T) {
	t.Parallel()

	controller, m := setupRoundController(testDeadline.Add(time.Minute))
	last := createTestRound(9, testDeadline, completedWith("10-20-30-31-32-33"))
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(nil, nil)
	m.roundRepo.On("GetLatestCompleted", mock.Anything).Return(last, nil)
	m.ticketRepo.On("CountUnsettledByRound", mock.Anything, int64(9)).Return(int64(1), nil)
	m.ticketRepo.On("ListUnsettledByRound", mock.Anything, int64(9)).Return([]*entities.Ticket{
		createTestTicket(100, 9, "0xwinner", "10-20-30-31-32-33"),
	}, nil)
	m.ticketRepo.On("Claim", mock.Anything, int64(100)).Return(true, nil)
	m.paymentRepo.On("ExistsForTicket", mock.Anything, int64(100)).Return(false, nil)
	m.chainClient.On("SendTransfer", mock.Anything, "0xwinner", 200.0).Return("0xjackpot", nil)
	m.paymentRepo.On("RecordSent", mock.Anything, mock.Anything).Return(nil)

	result, err := controller.Advance(context.Background())

	require.NoError(t, err)
	assert.Equal(t, interfaces.RoundActionSettlementResumed, result.Action)
	assert.Equal(t, "10-20-30-31-32-33", result.Settlement.DrawnNumbers)
	assert.Equal(t, 1, result.Settlement.Sent)
	m.roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoundController_RepositoryErrors(t *testing.T) {
	t.Parallel()

	controller, m := setupRoundController(testDeadline)
	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(nil, errors.New("database unavailable"))

	result, err := controller.Advance(context.Background())

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "failed to get current round")
	m.metrics.AssertNotCalled(t, "RecordRoundAction", mock.Anything)
}

func TestRoundController_ClaimErrorStillPaysClaimedWinners(t *testing.T) {
	t.Parallel()

	now := testDeadline.Add(15 * time.Second)
	controller, m := setupRoundController(now)

	m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline, locked), nil)
	m.roundRepo.On("CompleteWithNumbers", mock.Anything, int64(9), "00-01-02-03-04-05", now).Return(true, nil)
	m.ticketRepo.On("ListUnsettledByRound", mock.Anything, int64(9)).Return([]*entities.Ticket{
		createTestTicket(100, 9, "0xwinner", "00-01-02-37-38-39"),
		createTestTicket(101, 9, "0xnext", "00-01-02-03-38-39"),
	}, nil)
	m.ticketRepo.On("Claim", mock.Anything, int64(100)).Return(true, nil)
	m.ticketRepo.On("Claim", mock.Anything, int64(101)).Return(false, errors.New("connection reset"))
	m.paymentRepo.On("ExistsForTicket", mock.Anything, int64(100)).Return(false, nil)
	m.chainClient.On("SendTransfer", mock.Anything, "0xwinner", 4.0).Return("0xprize", nil)
	m.paymentRepo.On("RecordSent", mock.Anything, mock.MatchedBy(func(p *entities.Payment) bool {
		return p.TicketID == 100 && *p.TxHash == "0xprize"
	})).Return(nil)

	result, err := controller.Advance(context.Background())

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "failed to claim ticket 101")
	m.chainClient.AssertNumberOfCalls(t, "SendTransfer", 1)
	m.paymentRepo.AssertExpectations(t)
	m.chainClient.AssertNotCalled(t, "SendTransfer", mock.Anything, "0xnext", mock.Anything)
	m.eventPublisher.AssertNotCalled(t, "Publish", mock.AnythingOfType("events.RoundDrawnEvent"))
}

func TestRoundController_RepeatedAdvanceAppliesOneTransition(t *testing.T) {
	t.Parallel()

	t.Run("lock then not ready", func(t *testing.T) {
		t.Parallel()

		controller, m := setupRoundController(testDeadline.Add(-90 * time.Second))
		m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline), nil).Once()
		m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline, locked), nil)
		m.roundRepo.On("Lock", mock.Anything, int64(9)).Return(true, nil)

		first, err := controller.Advance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, interfaces.RoundActionLocked, first.Action)

		second, err := controller.Advance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, interfaces.RoundActionNotReady, second.Action)
		assert.Equal(t, int64(9), second.RoundID)

		m.roundRepo.AssertNumberOfCalls(t, "Lock", 1)
	})

	t.Run("draw then cooldown", func(t *testing.T) {
		t.Parallel()

		now := testDeadline.Add(15 * time.Second)
		controller, m := setupRoundController(now)
		m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(createTestRound(9, testDeadline, locked), nil).Once()
		m.roundRepo.On("GetCurrentOpen", mock.Anything).Return(nil, nil)
		m.roundRepo.On("CompleteWithNumbers", mock.Anything, int64(9), "00-01-02-03-04-05", now).Return(true, nil)
		m.roundRepo.On("GetLatestCompleted", mock.Anything).
			Return(createTestRound(9, testDeadline, completedWith("00-01-02-03-04-05")), nil)
		m.ticketRepo.On("ListUnsettledByRound", mock.Anything, int64(9)).Return([]*entities.Ticket{}, nil)
		m.ticketRepo.On("CountUnsettledByRound", mock.Anything, int64(9)).Return(int64(0), nil)

		first, err := controller.Advance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, interfaces.RoundActionDrawn, first.Action)

		second, err := controller.Advance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, interfaces.RoundActionCooldown, second.Action)
		assert.Equal(t, MessageNoActiveRound, second.Message)

		m.roundRepo.AssertNumberOfCalls(t, "CompleteWithNumbers", 1)
		m.roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.chainClient.AssertNotCalled(t, "SendTransfer", mock.Anything, mock.Anything, mock.Anything)
	})
}
