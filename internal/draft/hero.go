package draft

import (
	"errors"
	"strings"

	"github.com/Sammers21/owl-esports/internal/dom"
)

var (
	errEmptyFilename = errors.New("image src has an empty final path segment")
	errEmptyAsset    = errors.New("image filename has an empty asset name")
)

// HeroName is a canonical hero name such as "shadow fiend".
type HeroName string

// Aliases maps asset-derived names to canonical hero names. Lookups are
// exact and case-sensitive, and values never appear as keys.
var Aliases = map[string]HeroName{
	"doom bringer": "doom",
	"windrunner":   "windranger",
	"treant":       "treant protector",
	"shredder":     "timbersaw",
	"nevermore":    "shadow fiend",
}

// Canonical applies the alias table to a candidate name.
func Canonical(candidate string) HeroName {
	if name, ok := Aliases[candidate]; ok {
		return name
	}
	return HeroName(candidate)
}

// DecodeHero reads the portrait at slot[0][0] and derives its hero name from
// the image src: last path segment, up to the first '.', underscores as
// spaces, then aliases.
func DecodeHero(slot *dom.Node) (HeroName, error) {
	return decodeSlot(slot, -1)
}

func decodeSlot(slot *dom.Node, idx int) (HeroName, error) {
	if slot == nil {
		return "", &DecodeError{Slot: idx, Err: dom.ErrMissingNode}
	}
	wrapper, err := slot.FirstChild()
	if err != nil {
		return "", &DecodeError{Slot: idx, Err: err}
	}
	img, err := wrapper.FirstChild()
	if err != nil {
		return "", &DecodeError{Slot: idx, Err: err}
	}
	src, err := img.Attr("src")
	if err != nil {
		return "", &DecodeError{Slot: idx, Err: err}
	}

	segments := strings.Split(src, "/")
	file := segments[len(segments)-1]
	if file == "" {
		return "", &DecodeError{Slot: idx, Src: src, Err: errEmptyFilename}
	}
	asset, _, _ := strings.Cut(file, ".")
	if asset == "" {
		return "", &DecodeError{Slot: idx, Src: src, Err: errEmptyAsset}
	}
	return Canonical(strings.ReplaceAll(asset, "_", " ")), nil
}
