package order

// Progress step indices for the customer-facing tracker.
const (
	StepSubmitted = 0
	StepValidated = 1
	StepPreparing = 2
	StepReady     = 3
)

// ProgressStep projects the dual status onto the 4-step tracker shown to
// customers. The second return is false when the order maps to no step.
//
// Rules are evaluated in precedence order; the first match wins. Note that
// kitchen status ready lands on the final step alongside served/delivered:
// the tracker deliberately tells the customer "complete" as soon as the food
// is ready, before hand-off happens.
func (o *Order) ProgressStep() (int, bool) {
	switch {
	case o.Status == StatusFinalized || o.KitchenStatus.Completed() || o.KitchenStatus == KitchenReady:
		return StepReady, true
	case o.KitchenStatus == KitchenReceived:
		return StepPreparing, true
	case o.Status == StatusInProgress:
		return StepValidated, true
	case o.Status == StatusPendingValidation || o.KitchenStatus == KitchenNotSent:
		return StepSubmitted, true
	default:
		return 0, false
	}
}
