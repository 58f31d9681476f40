package winrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	siteURL  = "https://www.dotabuff.com"
	fileExt  = ".json"
	rowXPath = "//table/tbody/tr[@data-link-to]"
)

var ErrNoCounters = errors.New("no counters found")

// Hero is a hero of the counter data set.
type Hero struct {
	Name string `json:"Name"`
	Link string `json:"Link"`
}

// Counter is one row of a hero's counters table. The row of hero X on the
// page of hero H carries X's win rate in matches against H.
type Counter struct {
	Hero          Hero    `json:"Hero"`
	Disadvantage  float64 `json:"Disadvantage"`
	WinRate       float64 `json:"WinRate"`
	MatchesPlayed int64   `json:"MatchesPlayed"`
}

// ParsePage reads the counters table of a hero page. Rows that do not parse
// are skipped.
func ParsePage(r io.Reader, logger *zap.Logger) ([]Counter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse counters page: %w", err)
	}

	rows := htmlquery.Find(doc, rowXPath)
	counters := make([]Counter, 0, len(rows))
	for i, tr := range rows {
		c, err := parseRow(tr)
		if err != nil {
			logger.Debug("skipping counter row", zap.Int("row", i), zap.Error(err))
			continue
		}
		counters = append(counters, c)
	}
	if len(counters) == 0 {
		return nil, ErrNoCounters
	}
	return counters, nil
}

func parseRow(tr *html.Node) (Counter, error) {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			cells = append(cells, c)
		}
	}
	if len(cells) != 5 {
		return Counter{}, fmt.Errorf("expected 5 cells, got %d", len(cells))
	}

	name := htmlquery.SelectAttr(cells[0], "data-value")
	if name == "" {
		return Counter{}, errors.New("row has no hero name")
	}
	var link string
	if a := htmlquery.FindOne(cells[1], "descendant::a[@href]"); a != nil {
		link = siteURL + htmlquery.SelectAttr(a, "href")
	}

	disadvantage, err := strconv.ParseFloat(htmlquery.SelectAttr(cells[2], "data-value"), 64)
	if err != nil {
		return Counter{}, fmt.Errorf("disadvantage of %s: %w", name, err)
	}
	winRate, err := strconv.ParseFloat(htmlquery.SelectAttr(cells[3], "data-value"), 64)
	if err != nil {
		return Counter{}, fmt.Errorf("win rate of %s: %w", name, err)
	}
	matches, err := strconv.ParseInt(htmlquery.SelectAttr(cells[4], "data-value"), 10, 64)
	if err != nil {
		return Counter{}, fmt.Errorf("matches played of %s: %w", name, err)
	}

	return Counter{
		Hero:          Hero{Name: name, Link: link},
		Disadvantage:  disadvantage,
		WinRate:       winRate,
		MatchesPlayed: matches,
	}, nil
}

// WriteFile stores the counters of hero as <dir>/<hero>.json, the layout
// Load reads back.
func WriteFile(dir, hero string, counters []Counter) (string, error) {
	data, err := json.Marshal(counters)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, hero+fileExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write counters of %s: %w", hero, err)
	}
	return path, nil
}
