package workflow

import (
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateAwaitingReviewA, false},
		{StateAwaitingReviewB, false},
		{StateApproved, false},
		{StatePublished, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateDraft, true},
		{"valid state", StatePublished, true},
		{"wrong case", State("AWAITING_REVIEW_A"), false},
		{"invalid state", State("rejected"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsAwaitingReview(t *testing.T) {
	for _, s := range AllStates() {
		want := s == StateAwaitingReviewA || s == StateAwaitingReviewB
		if got := s.IsAwaitingReview(); got != want {
			t.Errorf("%s.IsAwaitingReview() = %v, want %v", s, got, want)
		}
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerApproveA.String(); got != "approve_A" {
		t.Errorf("Trigger.String() = %v, want %v", got, "approve_A")
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateDraft)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	// Configure same state again should return same config
	config2 := builder.Configure(StateDraft)
	if config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func TestStateConfiguration_PermitPanicsOnInvalidTarget(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	builder.Configure(StateDraft).Permit(TriggerGenerate, State("INVALID"))
}

func TestStateConfiguration_PermitPanicsOnAmbiguousTarget(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic when a trigger already has another target")
		}
	}()

	builder.Configure(StateDraft).
		Permit(TriggerGenerate, StateAwaitingReviewA).
		Permit(TriggerGenerate, StateApproved)
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	machine := BuildPlanStateMachine(StateAwaitingReviewA)

	err := machine.Fire(TriggerApproveB)
	if err == nil {
		t.Fatal("Fire() should fail for invalid transition")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	if machine.State() != StateAwaitingReviewA {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateAwaitingReviewA, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	builder := NewBuilder()
	machine := builder.Build(StateDraft)

	err := machine.Fire(TriggerGenerate)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	machine1 := BuildPlanStateMachine(StateDraft)
	machine2 := BuildPlanStateMachine(StateDraft)

	if err := machine1.Fire(TriggerGenerate); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if machine2.State() != StateDraft {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StateDraft)
	}
	if machine1.State() != StateAwaitingReviewA {
		t.Errorf("machine1 state = %v, want %v", machine1.State(), StateAwaitingReviewA)
	}
}

func TestStateMachine_BuilderChangesDoNotLeak(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerGenerate, StateAwaitingReviewA)
	machine := builder.Build(StateAwaitingReviewA)

	builder.Configure(StateAwaitingReviewA).Permit(TriggerApproveA, StateAwaitingReviewB)

	if machine.CanFire(TriggerApproveA) {
		t.Error("machine built before Configure() should not see the new transition")
	}
}

func TestPlanStateMachine_FullLifecycle(t *testing.T) {
	machine := BuildPlanStateMachine(StateDraft)

	steps := []struct {
		trigger       Trigger
		expectedState State
	}{
		{TriggerGenerate, StateAwaitingReviewA},
		{TriggerApproveA, StateAwaitingReviewB},
		{TriggerApproveB, StateApproved},
		{TriggerPublish, StatePublished},
	}

	for i, step := range steps {
		if err := machine.Fire(step.trigger); err != nil {
			t.Errorf("Step %d: Fire(%v) failed: %v", i, step.trigger, err)
		}

		if machine.State() != step.expectedState {
			t.Errorf("Step %d: State after Fire(%v) = %v, want %v", i, step.trigger, machine.State(), step.expectedState)
		}
	}

	if !machine.State().IsTerminal() {
		t.Error("Final state should be terminal")
	}

	if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
		t.Errorf("Terminal state should have 0 permitted triggers, got %d", len(triggers))
	}
}

func TestPlanStateMachine_PermittedTriggers(t *testing.T) {
	tests := []struct {
		state State
		want  []Trigger
	}{
		{StateDraft, []Trigger{TriggerGenerate}},
		{StateAwaitingReviewA, []Trigger{TriggerApproveA}},
		{StateAwaitingReviewB, []Trigger{TriggerApproveB}},
		{StateApproved, []Trigger{TriggerPublish}},
		{StatePublished, []Trigger{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			got := BuildPlanStateMachine(tt.state).PermittedTriggers()
			if len(got) != len(tt.want) {
				t.Fatalf("PermittedTriggers() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNextState_Table(t *testing.T) {
	tests := []struct {
		from State
		trig Trigger
		want State
	}{
		{StateDraft, TriggerGenerate, StateAwaitingReviewA},
		{StateAwaitingReviewA, TriggerApproveA, StateAwaitingReviewB},
		{StateAwaitingReviewB, TriggerApproveB, StateApproved},
		{StateApproved, TriggerPublish, StatePublished},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.trig), func(t *testing.T) {
			got, ok := NextState(tt.from, tt.trig)
			if !ok {
				t.Fatalf("NextState(%s, %s) reported no transition", tt.from, tt.trig)
			}
			if got != tt.want {
				t.Errorf("NextState(%s, %s) = %s, want %s", tt.from, tt.trig, got, tt.want)
			}
		})
	}
}

func TestNextState_EveryOtherPairHasNoTransition(t *testing.T) {
	defined := map[State]Trigger{
		StateDraft:           TriggerGenerate,
		StateAwaitingReviewA: TriggerApproveA,
		StateAwaitingReviewB: TriggerApproveB,
		StateApproved:        TriggerPublish,
	}

	for _, s := range AllStates() {
		for _, trig := range AllTriggers() {
			if defined[s] == trig {
				continue
			}
			got, ok := NextState(s, trig)
			if ok {
				t.Errorf("NextState(%s, %s) = %s, want no transition", s, trig, got)
			}
			if got != s {
				t.Errorf("NextState(%s, %s) should echo the current state, got %s", s, trig, got)
			}
		}
	}
}

func TestNextState_UnknownInputs(t *testing.T) {
	if _, ok := NextState(State("rejected"), TriggerApproveA); ok {
		t.Error("unknown state should have no transition")
	}
	if _, ok := NextState(StateAwaitingReviewA, Trigger("approve")); ok {
		t.Error("unknown trigger should have no transition")
	}
}

func TestConfigurePlanBuilder_BuildsFromEveryState(t *testing.T) {
	builder := configurePlanBuilder()

	for _, state := range AllStates() {
		machine := builder.Build(state)
		if machine.State() != state {
			t.Errorf("Build(%s).State() = %s", state, machine.State())
		}
	}

	if getPlanBuilder() != getPlanBuilder() {
		t.Error("plan builder should be configured once")
	}
}
