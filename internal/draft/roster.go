package draft

import (
	"fmt"

	"github.com/Sammers21/owl-esports/internal/dom"
)

// Roster is every drafted hero, Radiant picks first, each faction in slot
// order.
type Roster []HeroName

func (r Roster) Strings() []string {
	out := make([]string, len(r))
	for i, h := range r {
		out[i] = string(h)
	}
	return out
}

// RadiantSide picks the visual side carrying the Radiant marker. Only the
// left label is consulted: a left label without the marker puts Radiant on
// the right, whatever the right label says.
func RadiantSide(left TeamLabel) Side {
	if left.IsRadiantSide {
		return SideLeft
	}
	return SideRight
}

// Factions orders the two labels as (radiant, opposing).
func Factions(left, right TeamLabel) (TeamLabel, TeamLabel) {
	if RadiantSide(left) == SideLeft {
		return left, right
	}
	return right, left
}

// Assemble decodes the Radiant container followed by the opposing one.
// No slot is skipped, reordered or deduplicated.
func Assemble(left, right TeamLabel, leftHeroes, rightHeroes *dom.Node) (Roster, error) {
	radiant, opposing := rightHeroes, leftHeroes
	radiantSide, opposingSide := SideRight, SideLeft
	if RadiantSide(left) == SideLeft {
		radiant, opposing = leftHeroes, rightHeroes
		radiantSide, opposingSide = SideLeft, SideRight
	}

	var roster Roster
	for _, c := range []struct {
		node *dom.Node
		side Side
	}{{radiant, radiantSide}, {opposing, opposingSide}} {
		if c.node == nil {
			return nil, mismatch(fmt.Sprintf("%s heroes", c.side), dom.ErrMissingNode)
		}
		for i, slot := range c.node.Children() {
			hero, err := decodeSlot(slot, i)
			if err != nil {
				return nil, mismatch(fmt.Sprintf("%s heroes", c.side), err)
			}
			roster = append(roster, hero)
		}
	}
	return roster, nil
}
