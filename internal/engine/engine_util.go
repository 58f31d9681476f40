package engine

func NewEmptyState() State {
	s := State{
		Picks: map[Team][]string{TeamRadiant: {}, TeamDire: {}},
	}
	s.Phase = DerivePhase(0)
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func DerivePhase(picked int) Phase {
	if picked >= len(SlotOrder) {
		return PhaseDrafted
	}
	return PhaseWaiting
}

// Clone deep-copies s so it can leave the owning actor.
func (s State) Clone() State {
	out := s
	out.Picks = make(map[Team][]string, len(s.Picks))
	for team, heroes := range s.Picks {
		out.Picks[team] = append([]string{}, heroes...)
	}
	return out
}
