package winrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

// TeamSize is the number of heroes on each side.
const TeamSize = 5

var (
	ErrNotLoaded      = errors.New("counter data has not been loaded yet")
	ErrWrongHeroCount = errors.New("wrong number of heroes")
	ErrUnknownHero    = errors.New("unknown hero")
	ErrMissingMatchup = errors.New("missing matchup")
)

// Prediction holds the expected win rate of each side, in percent.
type Prediction struct {
	Radiant float64
	Dire    float64
}

// Table is a loaded, read-only counter data set.
type Table struct {
	heroes   []string
	aliases  map[string]string
	matchups map[string]map[string]float64 // [hero][enemy]
}

// Load reads every <hero>.json file at the root of fsys.
func Load(fsys fs.FS) (*Table, error) {
	names, err := fs.Glob(fsys, "*"+fileExt)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no %s files", ErrNoCounters, fileExt)
	}

	byHero := make(map[string][]Counter, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var counters []Counter
		if err := json.Unmarshal(data, &counters); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		byHero[strings.TrimSuffix(name, fileExt)] = counters
	}
	return NewTable(byHero), nil
}

// NewTable indexes counters by the hero whose page listed them.
func NewTable(byHero map[string][]Counter) *Table {
	t := &Table{
		heroes:   make([]string, 0, len(byHero)),
		aliases:  make(map[string]string),
		matchups: make(map[string]map[string]float64),
	}
	for hero, counters := range byHero {
		t.heroes = append(t.heroes, hero)
		for _, c := range counters {
			m := t.matchups[c.Hero.Name]
			if m == nil {
				m = make(map[string]float64)
				t.matchups[c.Hero.Name] = m
			}
			m[hero] = c.WinRate
		}
	}
	slices.Sort(t.heroes)

	// Full names first so a short name never shadows one; among short
	// names the alphabetically first hero keeps a shared alias.
	for _, h := range t.heroes {
		t.alias(h, h)
		t.alias(strings.ToLower(h), h)
		t.alias(normalize(h), h)
	}
	for _, h := range t.heroes {
		for _, s := range shortNames(h) {
			t.alias(s, h)
		}
	}
	return t
}

func (t *Table) alias(key, hero string) {
	if _, taken := t.aliases[key]; !taken {
		t.aliases[key] = hero
	}
}

// Heroes lists the heroes that have counter data, sorted.
func (t *Table) Heroes() []string {
	return slices.Clone(t.heroes)
}

// FindHero resolves a full name, any casing or separator variant of it
// ("anti_mage", "anti mage") or a short name ("AM", "sf", "wind").
func (t *Table) FindHero(name string) (string, bool) {
	if h, ok := t.aliases[name]; ok {
		return h, true
	}
	h, ok := t.aliases[normalize(name)]
	return h, ok
}

func (t *Table) FindHeroes(names []string) ([]string, error) {
	heroes := make([]string, 0, len(names))
	for _, name := range names {
		h, ok := t.FindHero(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHero, name)
		}
		heroes = append(heroes, h)
	}
	return heroes, nil
}

// PickWinRate scores each side as the mean of its heroes' win rates against
// every enemy hero.
func (t *Table) PickWinRate(radiant, dire []string) (Prediction, error) {
	if len(radiant) != TeamSize || len(dire) != TeamSize {
		return Prediction{}, fmt.Errorf("%w: expected %d per side, got %d and %d",
			ErrWrongHeroCount, TeamSize, len(radiant), len(dire))
	}
	r, err := t.FindHeroes(radiant)
	if err != nil {
		return Prediction{}, fmt.Errorf("radiant: %w", err)
	}
	d, err := t.FindHeroes(dire)
	if err != nil {
		return Prediction{}, fmt.Errorf("dire: %w", err)
	}

	var p Prediction
	if p.Radiant, err = t.sideRate(r, d); err != nil {
		return Prediction{}, err
	}
	if p.Dire, err = t.sideRate(d, r); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// PickWinRateFromLines takes ten heroes, Radiant first.
func (t *Table) PickWinRateFromLines(all []string) (Prediction, error) {
	if len(all) != 2*TeamSize {
		return Prediction{}, fmt.Errorf("%w: expected %d, got %d", ErrWrongHeroCount, 2*TeamSize, len(all))
	}
	return t.PickWinRate(all[:TeamSize], all[TeamSize:])
}

func (t *Table) sideRate(team, enemies []string) (float64, error) {
	var total float64
	for _, hero := range team {
		for _, enemy := range enemies {
			rate, ok := t.matchups[hero][enemy]
			if !ok {
				return 0, fmt.Errorf("%w: %s vs %s", ErrMissingMatchup, hero, enemy)
			}
			total += rate
		}
	}
	return total / float64(len(team)*len(enemies)), nil
}

// normalize lowercases and turns '_' and '-' into single spaces.
func normalize(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(name))
	return strings.Join(strings.Fields(name), " ")
}

// shortNames derives the typing shortcuts of a hero: the initials of a
// two-word (or two-part hyphenated) name, otherwise its first four letters.
func shortNames(name string) []string {
	var short string
	if words := strings.Split(name, " "); len(words) == 2 {
		short = initials(words)
	} else if parts := strings.Split(name, "-"); len(parts) == 2 {
		short = initials(parts)
	} else if len(name) >= 4 {
		short = name[:4]
	}
	if short == "" {
		return nil
	}
	return []string{short, strings.ToLower(short)}
}

func initials(words []string) string {
	if words[0] == "" || words[1] == "" {
		return ""
	}
	return words[0][:1] + words[1][:1]
}
