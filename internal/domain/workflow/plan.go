package workflow

import "sync"

// planBuilder holds the fixed transition graph of an event plan.
// It is configured on first use and only read afterwards.
var (
	planBuilder     StateMachineBuilder
	planBuilderOnce sync.Once
)

func getPlanBuilder() StateMachineBuilder {
	planBuilderOnce.Do(func() {
		planBuilder = configurePlanBuilder()
	})
	return planBuilder
}

func configurePlanBuilder() StateMachineBuilder {
	builder := NewBuilder()

	builder.Configure(StateDraft).
		Permit(TriggerGenerate, StateAwaitingReviewA)

	builder.Configure(StateAwaitingReviewA).
		Permit(TriggerApproveA, StateAwaitingReviewB)

	builder.Configure(StateAwaitingReviewB).
		Permit(TriggerApproveB, StateApproved)

	builder.Configure(StateApproved).
		Permit(TriggerPublish, StatePublished)

	// PUBLISHED is terminal - no outgoing transitions

	return builder
}

// BuildPlanStateMachine creates a state machine for an event plan in the given state
func BuildPlanStateMachine(initialState State) StateMachine {
	return getPlanBuilder().Build(initialState)
}

// NextState looks up the target of (current, trigger) in the plan transition table.
// The second result is false when no transition exists, including for unknown states.
func NextState(current State, trigger Trigger) (State, bool) {
	if !current.IsValid() {
		return current, false
	}

	machine := BuildPlanStateMachine(current)
	if err := machine.Fire(trigger); err != nil {
		return current, false
	}
	return machine.State(), true
}
