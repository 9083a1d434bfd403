package payment

// Status is a state in the payment lifecycle.
type Status string

const (
	StatusInit                 Status = "INIT"
	StatusNew                  Status = "NEW"
	StatusFormShowed           Status = "FORM_SHOWED"
	StatusOneChooseVision      Status = "ONECHOOSEVISION"
	StatusFinishAuthorize      Status = "FINISHAUTHORIZE"
	StatusAuthorizing          Status = "AUTHORIZING"
	StatusThreeDSChecking      Status = "THREE_DS_CHECKING"
	StatusSubmitPassivization  Status = "SUBMITPASSIVIZATION"
	StatusSubmitPassivization2 Status = "SUBMITPASSIVIZATION2"
	StatusThreeDSChecked       Status = "THREE_DS_CHECKED"
	StatusAuthorized           Status = "AUTHORIZED"
	StatusAuthFail             Status = "AUTH_FAIL"
	StatusRejected             Status = "REJECTED"
	StatusConfirming           Status = "CONFIRMING"
	StatusConfirmed            Status = "CONFIRMED"
	StatusReversing            Status = "REVERSING"
	StatusRefunding            Status = "REFUNDING"
	StatusCancelled            Status = "CANCELLED"
	StatusDeadlineExpired      Status = "DEADLINE_EXPIRED"
	StatusReversed             Status = "REVERSED"
	StatusPartialReversed      Status = "PARTIAL_REVERSED"
	StatusRefunded             Status = "REFUNDED"
	StatusPartialRefunded      Status = "PARTIAL_REFUNDED"
)

// allowedTransitions is the payment lifecycle edge table. It is the single
// source of truth for CanTransition/ValidNext/Transition — generalized from
// the ancestor's allowedTransitions map in internal/domain/payment/service.go
// from six states to the full twenty-three-state lifecycle.
var allowedTransitions = map[Status][]Status{
	StatusInit:                 {StatusNew},
	StatusNew:                  {StatusFormShowed, StatusCancelled, StatusDeadlineExpired},
	StatusFormShowed:           {StatusOneChooseVision, StatusCancelled, StatusDeadlineExpired},
	StatusOneChooseVision:      {StatusFinishAuthorize, StatusDeadlineExpired},
	StatusFinishAuthorize:      {StatusAuthorizing, StatusDeadlineExpired},
	StatusAuthorizing:          {StatusThreeDSChecking, StatusAuthorized, StatusAuthFail, StatusRejected},
	StatusThreeDSChecking:      {StatusSubmitPassivization, StatusSubmitPassivization2, StatusThreeDSChecked, StatusDeadlineExpired},
	StatusSubmitPassivization:  {StatusThreeDSChecked, StatusDeadlineExpired},
	StatusSubmitPassivization2: {StatusThreeDSChecked, StatusDeadlineExpired},
	StatusThreeDSChecked:       {StatusAuthorized, StatusAuthFail, StatusAuthorizing},
	StatusAuthorized:           {StatusConfirming, StatusReversing},
	StatusAuthFail:             {StatusAuthorizing, StatusRejected},
	StatusConfirming:           {StatusConfirmed, StatusAuthFail},
	StatusConfirmed:            {StatusRefunding},
	StatusReversing:            {StatusReversed, StatusPartialReversed},
	StatusRefunding:            {StatusRefunded, StatusPartialRefunded},
	// Terminal: CANCELLED, DEADLINE_EXPIRED, REJECTED, REVERSED,
	// PARTIAL_REVERSED, REFUNDED, PARTIAL_REFUNDED have no entry and so no
	// outgoing edges.
}

// terminalStatuses lists, by hand, the statuses that have no key in
// allowedTransitions and so no outgoing edges.
var terminalStatuses = map[Status]bool{
	StatusCancelled:       true,
	StatusDeadlineExpired: true,
	StatusRejected:        true,
	StatusReversed:        true,
	StatusPartialReversed: true,
	StatusRefunded:        true,
	StatusPartialRefunded: true,
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// CanTransition is a pure lookup over the edge table.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidNext returns the set of states reachable from current in one hop.
func ValidNext(current Status) []Status {
	edges := allowedTransitions[current]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}
