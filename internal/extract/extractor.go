// Package extract turns fetched storefront pages into typed records. Each
// method reads one page, skips elements it cannot make sense of and returns
// whatever it collected, possibly nothing.
package extract

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/law-makers/storelens/internal/apperr"
)

// Extractor holds the converters shared by the per-concern methods. It keeps
// no per-page state and is safe for concurrent use.
type Extractor struct {
	strict   *bluemonday.Policy
	markdown *md.Converter
}

// New creates an Extractor.
func New() *Extractor {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	return &Extractor{
		strict:   bluemonday.StrictPolicy(),
		markdown: conv,
	}
}

// ParseHTML parses a page body into a goquery document.
func ParseHTML(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseError, err)
	}
	return doc, nil
}

// each calls fn for every element of sel. An element whose handler panics is
// logged and skipped; the remaining elements are still visited.
func each(what string, sel *goquery.Selection, fn func(i int, s *goquery.Selection)) {
	sel.Each(func(i int, s *goquery.Selection) {
		defer recoverElement(what)
		fn(i, s)
	})
}

// eachUntil is each with early exit: fn returns false to stop.
func eachUntil(what string, sel *goquery.Selection, fn func(i int, s *goquery.Selection) bool) {
	sel.EachWithBreak(func(i int, s *goquery.Selection) (cont bool) {
		cont = true
		defer recoverElement(what)
		return fn(i, s)
	})
}

func recoverElement(what string) {
	if r := recover(); r != nil {
		log.Debug().Str("extractor", what).Interface("panic", r).Msg("Skipping element")
	}
}

// firstText returns the cleaned text of the first match of selector under s.
func firstText(s *goquery.Selection, selector string) string {
	return CleanText(s.Find(selector).First().Text())
}

// blockText returns the text under sel with a newline between text nodes, so
// adjacent elements never run into each other the way Selection.Text does.
func blockText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return sb.String()
}

// nextInDocument returns the first element after n in document order, not
// counting n's own descendants, whose tag is one of tags.
func nextInDocument(n *html.Node, tags ...string) *html.Node {
	match := func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return false
		}
		for _, t := range tags {
			if c.Data == t {
				return true
			}
		}
		return false
	}

	var search func(*html.Node) *html.Node
	search = func(c *html.Node) *html.Node {
		if match(c) {
			return c
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			if found := search(ch); found != nil {
				return found
			}
		}
		return nil
	}

	for cur := n; cur != nil; cur = cur.Parent {
		for sib := cur.NextSibling; sib != nil; sib = sib.NextSibling {
			if found := search(sib); found != nil {
				return found
			}
		}
	}
	return nil
}

// NextText returns the cleaned text of the first p, div or span that follows
// s in document order.
func NextText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	next := nextInDocument(s.Nodes[0], "p", "div", "span")
	if next == nil {
		return ""
	}
	return CleanText(goquery.NewDocumentFromNode(next).Text())
}
