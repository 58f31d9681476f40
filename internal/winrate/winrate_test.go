package winrate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var heroes = []string{
	"Anti-Mage", "Shadow Fiend", "Windranger", "Lion", "Treant Protector",
	"Axe", "Doom", "Timbersaw", "Crystal Maiden", "Tiny",
}

// counterPages lists every other hero on each hero's page. The row of X on
// the page of H rates X at 50 + idx(X) - idx(H), so heroes[0:5] against
// heroes[5:10] scores 45 and 55.
func counterPages() map[string][]Counter {
	pages := make(map[string][]Counter, len(heroes))
	for hi, h := range heroes {
		for xi, x := range heroes {
			if x == h {
				continue
			}
			pages[h] = append(pages[h], Counter{
				Hero:          Hero{Name: x},
				WinRate:       float64(50 + xi - hi),
				MatchesPlayed: 1000,
			})
		}
	}
	return pages
}

func counterFS(t *testing.T) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{"README.txt": {Data: []byte("not counters")}}
	for hero, counters := range counterPages() {
		data, err := json.Marshal(counters)
		require.NoError(t, err)
		fsys[hero+".json"] = &fstest.MapFile{Data: data}
	}
	return fsys
}

func TestLoad_IndexesEveryHeroFile(t *testing.T) {
	table, err := Load(counterFS(t))
	require.NoError(t, err)
	assert.Len(t, table.Heroes(), 10)
	assert.Equal(t, "Anti-Mage", table.Heroes()[0])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(fstest.MapFS{})
	require.ErrorIs(t, err, ErrNoCounters)

	_, err = Load(fstest.MapFS{"Axe.json": {Data: []byte("{")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Axe.json")
}

func TestFindHero_Aliases(t *testing.T) {
	table := NewTable(counterPages())

	cases := map[string]string{
		"Shadow Fiend":     "Shadow Fiend",
		"shadow fiend":     "Shadow Fiend",
		"shadow_fiend":     "Shadow Fiend",
		"SF":               "Shadow Fiend",
		"sf":               "Shadow Fiend",
		"anti mage":        "Anti-Mage",
		"AM":               "Anti-Mage",
		"Wind":             "Windranger",
		"timb":             "Timbersaw",
		"cm":               "Crystal Maiden",
		"treant protector": "Treant Protector",
		"axe":              "Axe",
	}
	for in, want := range cases {
		got, ok := table.FindHero(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, got, in)
		}
	}

	_, err := table.FindHeroes([]string{"axe", "Pudge"})
	require.ErrorIs(t, err, ErrUnknownHero)
	assert.Contains(t, err.Error(), "Pudge")
}

func TestShortNames_FullNameWinsAndFirstHeroKeepsSharedAlias(t *testing.T) {
	table := NewTable(map[string][]Counter{
		"Storm Spirit":  nil,
		"Shadow Shaman": nil,
		"Lina":          nil,
	})

	// Both reduce to "SS"; Shadow Shaman sorts first.
	got, ok := table.FindHero("SS")
	require.True(t, ok)
	assert.Equal(t, "Shadow Shaman", got)

	// "Lina" is both a full name and its own four-letter short name.
	got, ok = table.FindHero("lina")
	require.True(t, ok)
	assert.Equal(t, "Lina", got)

	assert.Empty(t, shortNames("Axe"))
	assert.Equal(t, []string{"AM", "am"}, shortNames("Anti-Mage"))
	assert.Equal(t, []string{"Keep", "keep"}, shortNames("Keeper of the Light"))
}

func TestPickWinRate(t *testing.T) {
	table := NewTable(counterPages())

	p, err := table.PickWinRate(heroes[:5], heroes[5:])
	require.NoError(t, err)
	assert.InDelta(t, 45.0, p.Radiant, 1e-9)
	assert.InDelta(t, 55.0, p.Dire, 1e-9)

	// Short names and pick line spellings resolve to the same heroes.
	p2, err := table.PickWinRate(
		[]string{"AM", "sf", "wind", "lion", "TP"},
		[]string{"axe", "doom", "timb", "cm", "tiny"})
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	line := "anti mage,shadow fiend,windranger,lion,treant protector,axe,doom,timbersaw,crystal maiden,tiny"
	p3, err := table.PickWinRateFromLines(strings.Split(line, ","))
	require.NoError(t, err)
	assert.Equal(t, p, p3)
}

func TestPickWinRate_Errors(t *testing.T) {
	table := NewTable(counterPages())

	_, err := table.PickWinRateFromLines(heroes[:9])
	require.ErrorIs(t, err, ErrWrongHeroCount)

	_, err = table.PickWinRate(heroes[:4], heroes[5:])
	require.ErrorIs(t, err, ErrWrongHeroCount)

	_, err = table.PickWinRate([]string{"Pudge", "Lion", "Axe", "Doom", "Tiny"}, heroes[5:])
	require.ErrorIs(t, err, ErrUnknownHero)

	pages := counterPages()
	pages["Tiny"] = pages["Tiny"][1:] // drops Anti-Mage's row on Tiny's page
	_, err = NewTable(pages).PickWinRate(heroes[:5], heroes[5:])
	require.ErrorIs(t, err, ErrMissingMatchup)
	assert.Contains(t, err.Error(), "Anti-Mage vs Tiny")
}

const countersPage = `<html><body><table><tbody>
<tr data-link-to="/heroes/axe"><td class="cell-icon" data-value="Axe"><img src="axe.png"></td><td><a href="/heroes/axe">Axe</a></td><td data-value="2.31">2.31%</td><td data-value="47.12">47.12%</td><td data-value="120345">120,345</td></tr>
<tr data-link-to="/heroes/lion"><td data-value="Lion"></td><td><a href="/heroes/lion">Lion</a></td><td data-value="n/a">-</td><td data-value="51">51%</td><td data-value="10">10</td></tr>
<tr data-link-to="/heroes/doom"><td data-value="Doom"></td><td><a href="/heroes/doom">Doom</a></td><td data-value="-1.5">-1.5%</td><td data-value="52.5">52.5%</td><td data-value="99">99</td></tr>
<tr><td>header row without a link</td></tr>
</tbody></table></body></html>`

func TestParsePage(t *testing.T) {
	counters, err := ParsePage(strings.NewReader(countersPage), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, counters, 2)

	assert.Equal(t, Counter{
		Hero:          Hero{Name: "Axe", Link: "https://www.dotabuff.com/heroes/axe"},
		Disadvantage:  2.31,
		WinRate:       47.12,
		MatchesPlayed: 120345,
	}, counters[0])
	assert.Equal(t, "Doom", counters[1].Hero.Name)
	assert.Equal(t, -1.5, counters[1].Disadvantage)

	_, err = ParsePage(strings.NewReader(`<html><body><p>rate limited</p></body></html>`), nil)
	require.ErrorIs(t, err, ErrNoCounters)
}

func TestPredictor_LoadDirAndRun(t *testing.T) {
	dir := t.TempDir()
	for hero, counters := range counterPages() {
		_, err := WriteFile(dir, hero, counters)
		require.NoError(t, err)
	}

	p := NewPredictor(zaptest.NewLogger(t))
	assert.False(t, p.Loaded())
	_, err := p.PickWinRateFromLines(heroes)
	require.ErrorIs(t, err, ErrNotLoaded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx, dir, time.Hour)
	require.True(t, p.Loaded())

	got, err := p.PickWinRateFromLines(heroes)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, got.Radiant, 1e-9)

	got, err = p.PickWinRate([]string{"am", "sf", "wind", "lion", "tp"}, []string{"axe", "doom", "timb", "cm", "tiny"})
	require.NoError(t, err)
	assert.InDelta(t, 55.0, got.Dire, 1e-9)

	// A broken reload keeps the previous data.
	require.Error(t, p.LoadDir(t.TempDir()))
	assert.True(t, p.Loaded())
}

func TestPredictor_NilIsNeverLoaded(t *testing.T) {
	var p *Predictor
	assert.False(t, p.Loaded())
	_, err := p.PickWinRate(heroes[:5], heroes[5:])
	require.ErrorIs(t, err, ErrNotLoaded)
}
