package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrWrongHeroCount = errors.New("wrong number of heroes")
var ErrEmptyHero = errors.New("empty hero name")
var ErrDuplicateHero = errors.New("hero picked twice")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Team string

const (
	TeamRadiant Team = "radiant"
	TeamDire    Team = "dire"
)

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseDrafted Phase = "drafted"
)

// State is the current draft of one tracker.
type State struct {
	Phase Phase             `json:"phase"`
	Picks map[Team][]string `json:"picks"`
	Match string            `json:"match,omitempty"`
	Line  string            `json:"line,omitempty"`
}

type CommandType string

const (
	CmdSubmitPickLine CommandType = "SubmitPickLine"
	CmdClearDraft     CommandType = "ClearDraft"
)

/*
	CmdSubmitPickLine -> EvtDraftCleared -> EvtHeroPicked x10 -> EvtMatchLabeled -> EvtDraftCompleted
	CmdClearDraft     -> EvtDraftCleared
	Submitting the line that is already current produces no events.
*/

type Command struct {
	Type  CommandType
	Line  string
	Match string
}

type EventType string

const (
	EvtDraftCleared   EventType = "DraftCleared"
	EvtHeroPicked     EventType = "HeroPicked"
	EvtMatchLabeled   EventType = "MatchLabeled"
	EvtDraftCompleted EventType = "DraftCompleted"
)

type Event struct {
	Type  EventType
	Team  Team
	Slot  int
	Hero  string
	Match string
	Line  string
}

func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdSubmitPickLine:
		heroes, err := ParsePickLine(cmd.Line)
		if err != nil {
			return nil, s, err
		}
		line := strings.Join(heroes, ",")
		match := strings.TrimSpace(cmd.Match)

		// Same draft again: nothing to broadcast.
		if s.Phase == PhaseDrafted && s.Line == line && s.Match == match {
			return nil, s, nil
		}

		events := []Event{{Type: EvtDraftCleared}}
		for slot, hero := range heroes {
			events = append(events, Event{Type: EvtHeroPicked, Team: SlotOrder[slot], Slot: slot, Hero: hero})
		}
		if match != "" {
			events = append(events, Event{Type: EvtMatchLabeled, Match: match})
		}
		events = append(events, Event{Type: EvtDraftCompleted, Line: line})
		return events, Reduce(events), nil

	case CmdClearDraft:
		if s.Phase == PhaseWaiting && len(s.Picks[TeamRadiant])+len(s.Picks[TeamDire]) == 0 {
			return nil, s, nil
		}
		events := []Event{{Type: EvtDraftCleared}}
		return events, Reduce(events), nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Reduce folds events into a fresh state; it never aliases earlier states.
func Reduce(events []Event) State {
	s := NewEmptyState()
	for _, event := range events {
		switch event.Type {
		case EvtDraftCleared:
			s = NewEmptyState()
		case EvtHeroPicked:
			s.Picks[event.Team] = append(s.Picks[event.Team], event.Hero)
		case EvtMatchLabeled:
			s.Match = event.Match
		case EvtDraftCompleted:
			s.Line = event.Line
		}
	}
	s.Phase = DerivePhase(len(s.Picks[TeamRadiant]) + len(s.Picks[TeamDire]))
	return s
}

// ParsePickLine splits a comma-joined line into hero names. Underscores are
// the wire encoding of spaces.
func ParsePickLine(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("%w: empty line", ErrWrongHeroCount)
	}
	parts := strings.Split(line, ",")
	if len(parts) != len(SlotOrder) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongHeroCount, len(SlotOrder), len(parts))
	}

	heroes := make([]string, 0, len(parts))
	for i, p := range parts {
		hero := strings.Join(strings.Fields(strings.ReplaceAll(p, "_", " ")), " ")
		if hero == "" {
			return nil, fmt.Errorf("%w at slot %d", ErrEmptyHero, i)
		}
		if slices.Contains(heroes, hero) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHero, hero)
		}
		heroes = append(heroes, hero)
	}
	return heroes, nil
}
