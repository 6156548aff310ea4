package order

import "time"

// Urgency is a severity tier derived from elapsed time, used purely for
// visual triage on kitchen tickets and takeaway cards.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// Elapsed-minute thresholds for the warning and critical tiers.
const (
	warningAfter  = 10 * time.Minute
	criticalAfter = 20 * time.Minute
)

// ClassifyUrgency maps the elapsed time since a reference instant to an
// urgency tier: under 10 minutes is normal, 10-19 warning, 20 and beyond
// critical.
func ClassifyUrgency(reference, now time.Time) Urgency {
	elapsed := now.Sub(reference)
	switch {
	case elapsed >= criticalAfter:
		return UrgencyCritical
	case elapsed >= warningAfter:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// Urgency classifies the order against the clock, measuring from the first
// kitchen dispatch, or from creation when nothing was ever dispatched.
func (o *Order) Urgency(now time.Time) Urgency {
	ref := o.CreatedAt
	if o.SentToKitchenAt != nil {
		ref = *o.SentToKitchenAt
	}
	return ClassifyUrgency(ref, now)
}
