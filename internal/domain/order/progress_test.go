package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressStep(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		kitchen KitchenStatus
		want    int
	}{
		{"takeaway awaiting validation", StatusPendingValidation, KitchenNotSent, StepSubmitted},
		{"validated, nothing sent", StatusInProgress, KitchenNotSent, StepValidated},
		{"in the kitchen", StatusInProgress, KitchenReceived, StepPreparing},
		// Food ready already shows as the final step, before hand-off.
		{"food ready", StatusInProgress, KitchenReady, StepReady},
		{"served", StatusInProgress, KitchenServed, StepReady},
		{"delivered", StatusInProgress, KitchenDelivered, StepReady},
		{"finalized", StatusFinalized, KitchenServed, StepReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.status, KitchenStatus: tt.kitchen}

			step, ok := o.ProgressStep()

			assert.True(t, ok)
			assert.Equal(t, tt.want, step)
		})
	}
}

func TestProgressStep_UndefinedState(t *testing.T) {
	o := &Order{Status: Status("unknown"), KitchenStatus: KitchenStatus("weird")}

	_, ok := o.ProgressStep()
	assert.False(t, ok)
}
