package editor

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockSeparator joins the text of adjacent block elements.
const blockSeparator = "\n\n"

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Hr: true, atom.Section: true, atom.Article: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

func parseFragment(src string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(src), bodyContext)
}

func renderFragment(nodes []*html.Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// PlainText projects an HTML body to text: block elements are separated by a
// blank line, <br> becomes a newline and entities are decoded.
func PlainText(src string) string {
	nodes, err := parseFragment(src)
	if err != nil {
		return src
	}

	var (
		blocks []string
		cur    strings.Builder
	)
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			blocks = append(blocks, cur.String())
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				cur.WriteByte('\n')
				return
			}
			block := blockElements[n.DataAtom]
			if block {
				flush()
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				flush()
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	flush()

	return strings.Join(blocks, blockSeparator)
}

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Text  string
}

// Outline lists the h1-h6 headings of an HTML body in document order.
// Empty headings are skipped.
func Outline(src string) []Heading {
	nodes, err := parseFragment(src)
	if err != nil {
		return nil
	}

	out := []Heading{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level, ok := headingLevels[n.DataAtom]; ok {
				if text := strings.TrimSpace(textContent(n)); text != "" {
					out = append(out, Heading{Level: level, Text: text})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// Stats are the counts shown in the status line.
type Stats struct {
	Words              int
	Characters         int
	CharactersNoSpaces int
}

// CountStats computes word and character counts of plain text.
func CountStats(text string) Stats {
	s := Stats{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
	}
	for _, r := range text {
		if !unicode.IsSpace(r) {
			s.CharactersNoSpaces++
		}
	}
	return s
}

var ErrEmptyTerm = errors.New("search term is empty")

// SearchOptions controls how a term is matched.
type SearchOptions struct {
	MatchCase bool
	WholeWord bool
}

// compileTerm matches term literally.
func compileTerm(term string, opts SearchOptions) (*regexp.Regexp, error) {
	if term == "" {
		return nil, ErrEmptyTerm
	}
	pattern := regexp.QuoteMeta(term)
	if opts.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !opts.MatchCase {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// CountMatches reports how many times term occurs in text.
func CountMatches(text, term string, opts SearchOptions) (int, error) {
	re, err := compileTerm(term, opts)
	if err != nil {
		return 0, err
	}
	return len(re.FindAllStringIndex(text, -1)), nil
}

// ReplaceAll replaces every occurrence of term in the text nodes of an HTML
// body, leaving tags and attributes untouched. It returns the new body and
// the number of replacements; with no match the body is returned as is.
func ReplaceAll(src, term, replacement string, opts SearchOptions) (string, int, error) {
	re, err := compileTerm(term, opts)
	if err != nil {
		return src, 0, err
	}
	nodes, err := parseFragment(src)
	if err != nil {
		return src, 0, err
	}

	count := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if hits := len(re.FindAllStringIndex(n.Data, -1)); hits > 0 {
				count += hits
				n.Data = re.ReplaceAllLiteralString(n.Data, replacement)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	if count == 0 {
		return src, 0, nil
	}
	out, err := renderFragment(nodes)
	if err != nil {
		return src, 0, err
	}
	return out, count, nil
}
