package dom

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// Role names one fixed region of the scoreboard page.
type Role string

const (
	RoleLeftTeam    Role = "left-team"
	RoleRightTeam   Role = "right-team"
	RoleLeftHeroes  Role = "left-heroes"
	RoleRightHeroes Role = "right-heroes"
)

// Roles lists every region the locator must resolve, in evaluation order.
var Roles = []Role{RoleLeftTeam, RoleRightTeam, RoleLeftHeroes, RoleRightHeroes}

// Paths maps each role to an absolute XPath.
type Paths map[Role]string

// DefaultPaths is the layout of the "Dota2 Scoreboard" page. The page layout
// is the one fragile assumption of the extractor, so it lives only here.
func DefaultPaths() Paths {
	return Paths{
		RoleLeftTeam:    "/html/body/div/div[3]/div/div[1]/div[1]",
		RoleRightTeam:   "/html/body/div/div[3]/div/div[1]/div[3]",
		RoleLeftHeroes:  "/html/body/div/div[3]/div/div[3]/div[1]",
		RoleRightHeroes: "/html/body/div/div[3]/div/div[3]/div[3]",
	}
}

// Cursor yields the lazily evaluated matches of one path. A nil cursor is
// empty.
type Cursor struct {
	iter *xpath.NodeIterator
}

// Next returns the next match, or nil when there is none.
func (c *Cursor) Next() *Node {
	if c == nil || c.iter == nil {
		return nil
	}
	for c.iter.MoveNext() {
		if nav, ok := c.iter.Current().(*htmlquery.NodeNavigator); ok {
			return Wrap(nav.Current())
		}
	}
	return nil
}

// Regions holds one cursor per role.
type Regions struct {
	LeftTeam    *Cursor
	RightTeam   *Cursor
	LeftHeroes  *Cursor
	RightHeroes *Cursor
}

// Locator evaluates a compiled path table against a page root. It never
// fails at evaluation time; unresolved paths surface as empty cursors.
type Locator struct {
	paths Paths
	exprs map[Role]*xpath.Expr
}

func NewLocator(paths Paths) (*Locator, error) {
	l := &Locator{
		paths: make(Paths, len(Roles)),
		exprs: make(map[Role]*xpath.Expr, len(Roles)),
	}
	for _, role := range Roles {
		path, ok := paths[role]
		if !ok || path == "" {
			return nil, fmt.Errorf("no path for %s", role)
		}
		expr, err := xpath.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compile %s path %q: %w", role, path, err)
		}
		l.paths[role] = path
		l.exprs[role] = expr
	}
	return l, nil
}

func (l *Locator) Paths() Paths {
	out := make(Paths, len(l.paths))
	for role, path := range l.paths {
		out[role] = path
	}
	return out
}

// Evaluate returns a cursor over the matches of role's path under root.
func (l *Locator) Evaluate(root *Node, role Role) *Cursor {
	expr, ok := l.exprs[role]
	if !ok || root == nil {
		return nil
	}
	return &Cursor{iter: expr.Select(htmlquery.CreateXPathNavigator(root.n))}
}

func (l *Locator) Locate(root *Node) Regions {
	return Regions{
		LeftTeam:    l.Evaluate(root, RoleLeftTeam),
		RightTeam:   l.Evaluate(root, RoleRightTeam),
		LeftHeroes:  l.Evaluate(root, RoleLeftHeroes),
		RightHeroes: l.Evaluate(root, RoleRightHeroes),
	}
}
