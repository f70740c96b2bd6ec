package infrastructure

import (
	"fmt"

	"ronlotto/domain/events"
)

// LottoEventStream is the JetStream stream holding every lottery event
const LottoEventStream = "lotto_events"

var eventSubjects = map[events.EventType]string{
	events.EventTypeRoundOpened:     "lotto.round.opened",
	events.EventTypeRoundLocked:     "lotto.round.locked",
	events.EventTypeRoundDrawn:      "lotto.round.drawn",
	events.EventTypePayoutSent:      "lotto.payout.sent",
	events.EventTypePayoutFailed:    "lotto.payout.failed",
	events.EventTypeTicketPurchased: "lotto.ticket.purchased",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("lotto.unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"lotto.>"}
}
