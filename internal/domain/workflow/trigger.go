package workflow

// Trigger represents an action that can cause a state transition
type Trigger string

const (
	TriggerGenerate Trigger = "generate"
	TriggerApproveA Trigger = "approve_A"
	TriggerApproveB Trigger = "approve_B"
	TriggerPublish  Trigger = "publish"
)

// AllTriggers lists every trigger known to the workflow
func AllTriggers() []Trigger {
	return []Trigger{TriggerGenerate, TriggerApproveA, TriggerApproveB, TriggerPublish}
}

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// IsValid returns true if the trigger is known to the workflow
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerGenerate, TriggerApproveA, TriggerApproveB, TriggerPublish:
		return true
	}
	return false
}
