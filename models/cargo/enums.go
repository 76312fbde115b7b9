package cargo

// Situation tracks a cargo through its lifecycle. Transitions are strictly
// forward: CREATED -> PICKED_UP -> DELIVERED.
type Situation string

const (
	SituationCreated   Situation = "CREATED"
	SituationPickedUp  Situation = "PICKED_UP"
	SituationDelivered Situation = "DELIVERED"
)

func (s Situation) String() string {
	return string(s)
}

func (s Situation) IsValid() bool {
	switch s {
	case SituationCreated, SituationPickedUp, SituationDelivered:
		return true
	default:
		return false
	}
}

// CanBeEdited returns true while the distributor may still change the cargo.
func (s Situation) CanBeEdited() bool {
	return s == SituationCreated
}

// CanBeDeleted returns true unless the cargo has reached its terminal state.
func (s Situation) CanBeDeleted() bool {
	return s != SituationDelivered
}

// IsTerminal returns true once no further transition is possible.
func (s Situation) IsTerminal() bool {
	return s == SituationDelivered
}
