package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxDocumentSize bounds how much of a page snapshot is read.
const MaxDocumentSize = 8 << 20

var ErrEmptyDocument = errors.New("empty document")

// Document is one parsed page snapshot.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document, converting it to UTF-8 when another charset
// is detected.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	var src io.Reader = bytes.NewReader(data)
	if cs := detectCharset(data); cs != "utf-8" {
		if utf8Reader, err := charset.NewReader(bytes.NewReader(data), "text/html; charset="+cs); err == nil {
			src = utf8Reader
		}
	}

	root, err := htmlquery.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) Root() *Node {
	return Wrap(d.root)
}

// Title returns the whitespace-collapsed text of the first <title>, the way
// a browser reports document.title.
func (d *Document) Title() string {
	text := goquery.NewDocumentFromNode(d.root).Find("title").First().Text()
	return strings.Join(strings.Fields(text), " ")
}

// detectCharset only consults the detector for bytes that are not already
// valid UTF-8; chardet tends to label plain ASCII as ISO-8859-1.
func detectCharset(data []byte) string {
	if utf8.Valid(data) {
		return "utf-8"
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
