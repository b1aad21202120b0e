package access

// VisitState is where a pass holder is relative to the checkpoint
type VisitState string

const (
	Outside VisitState = "OUTSIDE"
	Inside  VisitState = "INSIDE"
)

// StateOf maps the open-log flag to a visit state
func StateOf(currentlyInside bool) VisitState {
	if currentlyInside {
		return Inside
	}
	return Outside
}

// Transition is the log mutation a granted scan requires
type Transition struct {
	From VisitState
	To   VisitState
}

// IsCheckIn reports whether the transition opens a new visit
func (t Transition) IsCheckIn() bool {
	return t.From == Outside && t.To == Inside
}

// Next returns the transition implied by the decision. A denial leaves the
// persisted state untouched and reports ok=false.
func (d Decision) Next() (Transition, bool) {
	if !d.Granted {
		return Transition{}, false
	}
	from := StateOf(d.IsCurrentlyInside)
	if from == Inside {
		return Transition{From: Inside, To: Outside}, true
	}
	return Transition{From: Outside, To: Inside}, true
}
