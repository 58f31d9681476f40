package draft

import (
	"fmt"
	"strings"

	"github.com/Sammers21/owl-esports/internal/dom"
)

// Side is the visual position of a team on the scoreboard.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// radiantMarker is the class substring that identifies the Radiant label.
const radiantMarker = "radiant"

type TeamLabel struct {
	Name          string
	IsRadiantSide bool
}

// nameChild is the position of the name block inside a label region. The
// left region starts with the team logo, the right region ends with it.
func nameChild(side Side) int {
	if side == SideLeft {
		return 1
	}
	return 0
}

// ResolveTeam reads the team name and Radiant marker from a label region.
func ResolveTeam(region *dom.Node, side Side) (TeamLabel, error) {
	where := fmt.Sprintf("%s team label", side)
	if region == nil {
		return TeamLabel{}, mismatch(where, dom.ErrMissingNode)
	}
	block, err := region.Child(nameChild(side))
	if err != nil {
		return TeamLabel{}, mismatch(where, err)
	}
	label, err := block.FirstChild()
	if err != nil {
		return TeamLabel{}, mismatch(where, err)
	}
	class, err := label.Attr("class")
	if err != nil {
		return TeamLabel{}, mismatch(where, err)
	}
	return TeamLabel{
		Name:          strings.TrimSpace(label.Text()),
		IsRadiantSide: strings.Contains(class, radiantMarker),
	}, nil
}
