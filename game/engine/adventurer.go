package engine

// Adventurer is the player token. It does no validation of its own; the
// engine checks every precondition before calling it.
type Adventurer struct {
	pos         Position
	actions     int
	hasArtifact bool
	key         ArtifactKind
	drowned     bool
}

// NewAdventurer places an adventurer at pos with a full action budget.
func NewAdventurer(pos Position) *Adventurer {
	return &Adventurer{pos: pos, actions: ActionsPerTurn}
}

func (a *Adventurer) Position() Position { return a.pos }
func (a *Adventurer) ActionsRemaining() int { return a.actions }
func (a *Adventurer) HasArtifact() bool { return a.hasArtifact }
func (a *Adventurer) Drowned() bool { return a.drowned }

// MoveTo updates the position unconditionally.
func (a *Adventurer) MoveTo(pos Position) {
	a.pos = pos
}

// SpendAction uses one action, never going below zero.
func (a *Adventurer) SpendAction() {
	if a.actions > 0 {
		a.actions--
	}
}

// ResetActions restores the per-turn budget.
func (a *Adventurer) ResetActions() {
	a.actions = ActionsPerTurn
}

// CollectArtifact marks the artifact as held. Calling it again is harmless.
func (a *Adventurer) CollectArtifact() {
	a.hasArtifact = true
}

// GiveKey hands the adventurer the key of the given artifact kind.
func (a *Adventurer) GiveKey(kind ArtifactKind) {
	a.key = kind
}

// Key returns the held key, if any.
func (a *Adventurer) Key() (ArtifactKind, bool) {
	return a.key, a.key != ""
}

func (a *Adventurer) drown() {
	a.drowned = true
}

// View returns a snapshot of the adventurer.
func (a *Adventurer) View() AdventurerView {
	return AdventurerView{
		Position:         a.pos,
		ActionsRemaining: a.actions,
		HasArtifact:      a.hasArtifact,
		Key:              a.key,
		Drowned:          a.drowned,
	}
}
