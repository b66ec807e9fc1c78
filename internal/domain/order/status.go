package order

import (
	"fmt"
	"strings"
)

// Status is the fulfilment state of an order. Statuses are a closed set with
// one canonical lowercase spelling; UI labels are a presentation concern.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus is the payment state of an order, independent of Status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// InvalidTransitionError indicates a status change that is not an edge of
// the lifecycle state machine. The order is left unchanged.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// ParseStatus maps a request string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(strings.ToLower(s)), nil
	default:
		return "", &ValidationError{Field: "status", Reason: "unknown order status"}
	}
}

// ParsePaymentStatus maps a request string to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(s)) {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return PaymentStatus(strings.ToLower(s)), nil
	default:
		return "", &ValidationError{Field: "payment_status", Reason: "unknown payment status"}
	}
}

// statusEdges holds the allowed forward transitions of the order lifecycle:
// pending -> processing -> shipped -> delivered, with cancellation possible
// only before shipping.
var statusEdges = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether next is a valid transition from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// paymentEdges: pending -> completed | failed, completed -> refunded.
// refunded and failed are terminal.
var paymentEdges = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    {},
	PaymentRefunded:  {},
}

// CanTransitionTo reports whether next is a valid transition from s.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
