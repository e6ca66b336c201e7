package models

// Phase identifies the merge orchestrator's current position in its
// state machine. Phases are strictly ordered and each one is safe to
// resume mid-way after an interruption.
type Phase string

const (
	// PhaseScanning is the initial phase: both roots are walked and hashed
	PhaseScanning Phase = "scanning"
	// PhaseCopying bulk-copies all non-conflicting paths
	PhaseCopying Phase = "copying"
	// PhaseResolving resolves and copies conflicting paths one by one
	PhaseResolving Phase = "resolving-conflicts"
	// PhaseDone is reached only when every path is processed
	PhaseDone Phase = "done"
)
