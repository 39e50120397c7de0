package events

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeCallFinalized           EventType = "Call.Finalized"
	EventTypeWithdrawalRequested     EventType = "Withdrawal.Requested"
	EventTypeWithdrawalStatusChanged EventType = "Withdrawal.StatusChanged"
	EventTypeRechargeCompleted       EventType = "Recharge.Completed"
	EventTypeKYCReviewed             EventType = "KYC.Reviewed"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// Factories returns constructors used by out-of-process buses to decode
// payloads back into concrete events.
func Factories() map[string]func() Event {
	return map[string]func() Event{
		EventTypeCallFinalized.String():           func() Event { return &CallFinalized{} },
		EventTypeWithdrawalRequested.String():     func() Event { return &WithdrawalRequested{} },
		EventTypeWithdrawalStatusChanged.String(): func() Event { return &WithdrawalStatusChanged{} },
		EventTypeRechargeCompleted.String():       func() Event { return &RechargeCompleted{} },
		EventTypeKYCReviewed.String():             func() Event { return &KYCReviewed{} },
	}
}
