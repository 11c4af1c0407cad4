package domain

import "fmt"

type State string

const (
	StateIdle                 State = "idle"
	StateRequestingPermission State = "requesting_permission"
	StateAcquiring            State = "acquiring"
	StateDenied               State = "denied"
	StateAcquisitionFailed    State = "acquisition_failed"
	StateResolved             State = "resolved"
)

var transitions = map[State][]State{
	StateIdle:                 {StateRequestingPermission},
	StateRequestingPermission: {StateAcquiring, StateDenied, StateAcquisitionFailed},
	StateAcquiring:            {StateResolved, StateAcquisitionFailed},
	StateDenied:               {StateResolved},
	StateAcquisitionFailed:    {StateResolved},
}

func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Machine records the path of one resolution.
type Machine struct {
	trace []State
}

func NewMachine() *Machine {
	return &Machine{trace: []State{StateIdle}}
}

func (m *Machine) Current() State {
	return m.trace[len(m.trace)-1]
}

func (m *Machine) To(next State) error {
	if !m.Current().CanTransition(next) {
		return fmt.Errorf("invalid location transition %s -> %s", m.Current(), next)
	}
	m.trace = append(m.trace, next)
	return nil
}

func (m *Machine) Trace() []State {
	return append([]State(nil), m.trace...)
}
