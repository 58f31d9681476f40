package draft

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/dom"
	"github.com/Sammers21/owl-esports/pkg/types"
)

// DefaultPageTitle identifies the scoreboard page.
const DefaultPageTitle = "Dota2 Scoreboard"

// Page is one observation of the host page.
type Page interface {
	Title() string
	Root() *dom.Node
}

// Locator resolves the four structural regions under a page root.
type Locator interface {
	Locate(root *dom.Node) dom.Regions
}

// Sender accepts a delivery without waiting for its outcome.
type Sender interface {
	Send(d types.Delivery) bool
}

// Outcome labels of one invocation.
const (
	OutcomeExtracted = "extracted"
	OutcomeWrongPage = "wrong_page"
	OutcomeMismatch  = "mismatch"
)

type Result struct {
	Left     TeamLabel
	Right    TeamLabel
	Radiant  TeamLabel
	Opposing TeamLabel
	Roster   Roster
	Command  string
	Match    string
}

// Delivery builds the message for a tracker identifier.
func (r *Result) Delivery(id string) types.Delivery {
	return types.Delivery{ID: id, PickLine: r.Command, Match: r.Match}
}

type Extractor struct {
	title     string
	locator   Locator
	sender    Sender
	trackerID string
	logger    *zap.Logger
	observe   func(outcome string)
}

type Option func(*Extractor)

func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithSender forwards every extracted result to s under trackerID.
func WithSender(s Sender, trackerID string) Option {
	return func(e *Extractor) {
		e.sender = s
		e.trackerID = trackerID
	}
}

// WithObserver is called once per Process with the invocation outcome.
func WithObserver(fn func(outcome string)) Option {
	return func(e *Extractor) { e.observe = fn }
}

func NewExtractor(title string, locator Locator, opts ...Option) *Extractor {
	e := &Extractor{
		title:   title,
		locator: locator,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs Locator, Team Resolver and Roster Assembler once. A page
// whose title is not the expected one fails with ErrWrongPage before any
// path is evaluated; any other failure matches ErrStructuralMismatch and
// carries no partial result.
func (e *Extractor) Extract(page Page) (*Result, error) {
	if title := page.Title(); title != e.title {
		return nil, ErrWrongPage
	}

	regions := e.locator.Locate(page.Root())

	left, err := ResolveTeam(regions.LeftTeam.Next(), SideLeft)
	if err != nil {
		return nil, err
	}
	right, err := ResolveTeam(regions.RightTeam.Next(), SideRight)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("teams resolved",
		zap.String("left", left.Name), zap.Bool("left_radiant", left.IsRadiantSide),
		zap.String("right", right.Name), zap.Bool("right_radiant", right.IsRadiantSide))

	roster, err := Assemble(left, right, regions.LeftHeroes.Next(), regions.RightHeroes.Next())
	if err != nil {
		return nil, err
	}

	radiant, opposing := Factions(left, right)
	res := &Result{
		Left:     left,
		Right:    right,
		Radiant:  radiant,
		Opposing: opposing,
		Roster:   roster,
		Command:  FormatCommand(roster),
		Match:    FormatMatchLabel(radiant, opposing),
	}
	e.logger.Debug("draft extracted",
		zap.Strings("heroes", roster.Strings()),
		zap.String("command", res.Command),
		zap.String("match", res.Match))
	return res, nil
}

// Process is one full invocation: extract, then hand the result to the
// sender. A wrong page is a silent no-op (nil result, nil error). Mismatches
// are logged and returned, and nothing is sent.
func (e *Extractor) Process(page Page) (*Result, error) {
	res, err := e.Extract(page)
	switch {
	case errors.Is(err, ErrWrongPage):
		e.logger.Debug("skipping page", zap.String("want_title", e.title))
		e.report(OutcomeWrongPage)
		return nil, nil
	case err != nil:
		e.logger.Warn("draft extraction aborted", zap.Error(err))
		e.report(OutcomeMismatch)
		return nil, err
	}

	e.report(OutcomeExtracted)
	if e.sender != nil && !e.sender.Send(res.Delivery(e.trackerID)) {
		e.logger.Warn("delivery not queued", zap.String("match", res.Match))
	}
	return res, nil
}

func (e *Extractor) report(outcome string) {
	if e.observe != nil {
		e.observe(outcome)
	}
}
