package game

// Phase is one game phase. Phases advance when the first train of the
// triggering type is bought.
type Phase struct {
	Name            string
	TrainLimit      int
	OperatingRounds int    // operating rounds per set in this phase
	Rusts           string // train type that rusts on entering this phase
	ClosesPrivates  bool
}

// PhaseList is the ordered phase sequence with a cursor.
type PhaseList struct {
	phases []*Phase
	idx    int
}

// NewPhaseList builds a phase list. The first phase is current.
func NewPhaseList(phases []*Phase) *PhaseList {
	return &PhaseList{phases: phases}
}

// Current returns the current phase.
func (pl *PhaseList) Current() *Phase { return pl.phases[pl.idx] }

// Index returns the current phase index.
func (pl *PhaseList) Index() int { return pl.idx }

// AdvanceTo moves the cursor forward to the named phase. Returns the
// phases entered, in order, so the caller can apply their effects.
// A name at or before the cursor is a no-op.
func (pl *PhaseList) AdvanceTo(name string) []*Phase {
	var entered []*Phase
	for i := pl.idx + 1; i < len(pl.phases); i++ {
		entered = append(entered, pl.phases[i])
		if pl.phases[i].Name == name {
			pl.idx = i
			return entered
		}
	}
	return nil
}
