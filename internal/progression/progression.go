// Package progression implements the prefix-completion gate that
// decides which sections of a world a student can currently reach.
// State is recomputed from its inputs on every call; nothing here
// performs I/O or holds persistent state across renders.
package progression

import "github.com/strategiert/lernwelt-api/internal/domain"

// SectionState is the computed display state of one section.
type SectionState string

// Possible section states
const (
	// StateLocked means the section fails the accessibility rule and
	// navigation to it is rejected.
	StateLocked SectionState = "locked"

	// StateUnlocked means the section is reachable but neither current
	// nor completed.
	StateUnlocked SectionState = "unlocked"

	// StateCurrent marks the section the student is viewing.
	StateCurrent SectionState = "current"

	// StateCompleted marks sections in the student's completed set.
	StateCompleted SectionState = "completed"
)

// Accessible reports whether the section at position index may be
// viewed. A section is accessible when it lies at or before the current
// position, when it is itself completed, or when every section before
// it is completed (the prefix gate). Completing a section can only ever
// unlock later sections; it never revokes access.
func Accessible(sections []domain.Section, completed map[string]bool, currentIndex, index int) bool {
	if index < 0 || index >= len(sections) {
		return false
	}
	if index <= currentIndex {
		return true
	}
	if completed[sections[index].ID] {
		return true
	}
	for i := 0; i < index; i++ {
		if !completed[sections[i].ID] {
			return false
		}
	}
	return true
}

// ComputeStates computes the display state of every section from the
// ordered section list, the completed set and the current position.
// Identifiers in completed that match no section are ignored; an empty
// section list yields an empty result with nothing current.
func ComputeStates(sections []domain.Section, completed map[string]bool, currentIndex int) []SectionState {
	states := make([]SectionState, len(sections))
	for i := range sections {
		switch {
		case i == currentIndex:
			// The viewed section renders as current even when it is
			// already in the completed set.
			states[i] = StateCurrent
		case completed[sections[i].ID]:
			states[i] = StateCompleted
		case Accessible(sections, completed, currentIndex, i):
			states[i] = StateUnlocked
		default:
			states[i] = StateLocked
		}
	}
	return states
}

// Tracker holds one viewer's position within a world. It is owned by a
// single session and never shared; the completed set only grows while
// the tracker is alive.
type Tracker struct {
	sections     []domain.Section
	completed    map[string]bool
	currentIndex int
}

// NewTracker creates a Tracker over the given sections. The completed
// set may be nil. An out-of-range start index is clamped into the
// section range (or to 0 for an empty world).
func NewTracker(sections []domain.Section, completed map[string]bool, currentIndex int) *Tracker {
	if completed == nil {
		completed = make(map[string]bool)
	}
	if currentIndex < 0 {
		currentIndex = 0
	}
	if len(sections) > 0 && currentIndex >= len(sections) {
		currentIndex = len(sections) - 1
	}
	return &Tracker{
		sections:     sections,
		completed:    completed,
		currentIndex: currentIndex,
	}
}

// CurrentIndex returns the tracker's current position.
func (t *Tracker) CurrentIndex() int {
	return t.currentIndex
}

// States recomputes the per-section states for the tracker's position.
func (t *Tracker) States() []SectionState {
	return ComputeStates(t.sections, t.completed, t.currentIndex)
}

// Navigate moves the current position to index and reports whether the
// move happened. Requests to locked or out-of-range positions are a
// local no-op: the index does not change, nothing is raised, nothing
// reaches the store.
func (t *Tracker) Navigate(index int) bool {
	if index < 0 || index >= len(t.sections) {
		return false
	}
	if !Accessible(t.sections, t.completed, t.currentIndex, index) {
		return false
	}
	t.currentIndex = index
	return true
}

// MarkCompleted records a section as completed. Unknown identifiers are
// accepted and simply never influence the gate, which evaluates by
// position.
func (t *Tracker) MarkCompleted(sectionID string) {
	t.completed[sectionID] = true
}

// Progress returns the number of completed sections and the total
// count. Callers must guard the division when total is zero.
func (t *Tracker) Progress() (done, total int) {
	for i := range t.sections {
		if t.completed[t.sections[i].ID] {
			done++
		}
	}
	return done, len(t.sections)
}
