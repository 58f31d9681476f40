package draft

import (
	"fmt"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/require"

	"github.com/Sammers21/owl-esports/internal/dom"
)

// board renders a scoreboard page in the layout of dom.DefaultPaths.
type board struct {
	title      string
	leftName   string
	leftClass  string
	rightName  string
	rightClass string
	left       []string // image srcs; "" renders a slot without an image
	right      []string
}

func defaultBoard() board {
	return board{
		title:      DefaultPageTitle,
		leftName:   "Team Spirit",
		leftClass:  "team-box radiant-highlight",
		rightName:  "Gaimin Gladiators",
		rightClass: "team-box dire",
		left:       heroSrcs("anti_mage", "nevermore", "windrunner", "lion", "treant"),
		right:      heroSrcs("axe", "doom_bringer", "shredder", "crystal_maiden", "tiny"),
	}
}

func heroSrcs(assets ...string) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = "https://cdn.example.com/img/heroes/" + a + ".png"
	}
	return out
}

func slots(srcs []string) string {
	var b strings.Builder
	for _, src := range srcs {
		if src == "" {
			b.WriteString(`<div class="slot"><div></div></div>`)
			continue
		}
		fmt.Fprintf(&b, `<div class="slot"><div><img src="%s" alt=""></div><span>pick</span></div>`, src)
	}
	return b.String()
}

func (b board) html() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<div>
  <div class="header"></div>
  <div class="nav"></div>
  <div>
    <div>
      <div>
        <div><img src="/logo-left.png"><div><span class="%s">%s</span></div></div>
        <div class="score">1 : 0</div>
        <div><div><span class="%s">%s</span></div><img src="/logo-right.png"></div>
      </div>
      <div class="timer">12:34</div>
      <div>
        <div>%s</div>
        <div class="vs"></div>
        <div>%s</div>
      </div>
    </div>
  </div>
</div>
</body>
</html>`, b.title, b.leftClass, b.leftName, b.rightClass, b.rightName, slots(b.left), slots(b.right))
}

func (b board) doc(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(b.html())
	require.NoError(t, err)
	return doc
}

func mustLocator(t *testing.T) *dom.Locator {
	t.Helper()
	loc, err := dom.NewLocator(dom.DefaultPaths())
	require.NoError(t, err)
	return loc
}

// region resolves one role of b's page.
func (b board) region(t *testing.T, role dom.Role) *dom.Node {
	t.Helper()
	n := mustLocator(t).Evaluate(b.doc(t).Root(), role).Next()
	require.NotNil(t, n, "role %s", role)
	return n
}

// slotNode builds a single hero slot.
func slotNode(t *testing.T, inner string) *dom.Node {
	t.Helper()
	doc, err := dom.ParseString(`<html><body><div id="c">` + inner + `</div></body></html>`)
	require.NoError(t, err)
	c := dom.Wrap(htmlquery.FindOne(doc.Root().HTML(), `//div[@id='c']`))
	require.NotNil(t, c)
	first, err := c.FirstChild()
	require.NoError(t, err)
	return first
}
