package domain

// Action is a request to move a reservation through its lifecycle.
type Action string

const (
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionStartRental Action = "start"
	ActionReturn      Action = "return"
	ActionCancel      Action = "cancel"
	ActionMove        Action = "move"
)

type transitionKey struct {
	from   Status
	action Action
}

var transitions = map[transitionKey]Status{
	{StatusPending, ActionApprove}:       StatusConfirmed,
	{StatusPending, ActionReject}:        StatusCancelled,
	{StatusConfirmed, ActionStartRental}: StatusActive,
	{StatusActive, ActionReturn}:         StatusCompleted,
	{StatusPending, ActionCancel}:        StatusCancelled,
	{StatusConfirmed, ActionCancel}:      StatusCancelled,
	{StatusActive, ActionCancel}:         StatusCancelled,
}

// Apply returns the status reached by performing action from s.
// Moving keeps the status and is only allowed on non-terminal reservations.
func (s Status) Apply(action Action) (Status, error) {
	if action == ActionMove {
		if s.IsTerminal() || s == "" {
			return s, &TransitionError{From: s, Action: action}
		}
		return s, nil
	}
	next, ok := transitions[transitionKey{from: s, action: action}]
	if !ok {
		return s, &TransitionError{From: s, Action: action}
	}
	return next, nil
}

// CanApplyPayment checks a payment status change against the reservation
// lifecycle. Paid requires a confirmed, active or completed reservation and
// refunds are only possible after payment.
func CanApplyPayment(state Status, from, to PaymentStatus) error {
	switch to {
	case PaymentPaid:
		if from == PaymentPaid {
			return nil
		}
		if from == PaymentPending && (state.Blocking() || state == StatusCompleted) {
			return nil
		}
	case PaymentRefunded:
		if from == PaymentPaid || from == PaymentRefunded {
			return nil
		}
	case PaymentPending:
		if from == PaymentPending {
			return nil
		}
	default:
		return ErrInvalidPaymentStatus
	}
	return &PaymentTransitionError{Status: to, From: from, State: state}
}
