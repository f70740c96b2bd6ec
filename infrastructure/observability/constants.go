package observability

// Metric name prefixes
const (
	MetricPrefix = "ronlotto"
)

// Metric names
const (
	// Round lifecycle metrics
	RoundActionsTotal = MetricPrefix + ".rounds.actions_total"

	// Payout metrics
	PayoutsTotal      = MetricPrefix + ".payouts.total"
	PayoutAmountTotal = MetricPrefix + ".payouts.amount_total"

	// Ticket payment metrics
	PaymentVerificationsTotal = MetricPrefix + ".payments.verifications_total"
)

// Label keys
const (
	LabelAction  = "action"
	LabelStatus  = "status"
	LabelHits    = "hits"
	LabelOutcome = "outcome"
)
