package domain

// DeletionState is the two-phase delete machine: Idle or PendingDelete(id).
// The zero value is Idle.
type DeletionState struct {
	pending string
}

// Pending returns the id awaiting confirmation and whether one exists.
func (s DeletionState) Pending() (string, bool) {
	return s.pending, s.pending != ""
}

// IsIdle returns true when nothing awaits confirmation.
func (s DeletionState) IsIdle() bool {
	return s.pending == ""
}

// Request moves to PendingDelete(id). A pending id is overwritten.
func (s DeletionState) Request(id string) DeletionState {
	return DeletionState{pending: id}
}

// Resolve returns to Idle, yielding the id that was pending.
func (s DeletionState) Resolve() (DeletionState, string) {
	return DeletionState{}, s.pending
}
