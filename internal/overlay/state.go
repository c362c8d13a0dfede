package overlay

// Phase is the controller's lifecycle position. Transitions are driven by
// hover changes, grace polls, action settles and click signals; every
// mutation happens under the controller mutex.
type Phase int

const (
	// PhaseIdle means no target and a hidden surface.
	PhaseIdle Phase = iota
	// PhaseShowing means the surface is visible for the current target.
	PhaseShowing
	// PhaseGraceLeaving means the pointer left the icon but the surface
	// stays up until a poll proves the pointer isn't over it.
	PhaseGraceLeaving
	// PhaseLocked means a mutating action is settling; dismissal is
	// suppressed until the deferred re-enumeration lands.
	PhaseLocked
)

// String returns the phase name for logs and status output.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseShowing:
		return "showing"
	case PhaseGraceLeaving:
		return "grace-leaving"
	case PhaseLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Action identifies one of the window controls the preview surface offers.
type Action string

const (
	ActionActivate  Action = "activate"
	ActionClose     Action = "close"
	ActionMinimize  Action = "minimize"
	ActionMaximize  Action = "maximize"
	ActionTerminate Action = "terminate"
)

// Valid reports whether a is one of the known actions. IPC and MCP hand
// in caller-supplied strings.
func (a Action) Valid() bool {
	switch a {
	case ActionActivate, ActionClose, ActionMinimize, ActionMaximize, ActionTerminate:
		return true
	}
	return false
}
