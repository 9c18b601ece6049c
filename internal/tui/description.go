package tui

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// blankRuns collapses three or more newlines left behind by block elements.
	blankRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns = regexp.MustCompile(`\s+`)
)

// htmlToMarkdown converts the tracker's HTML description into markdown for glamour.
// Unparseable input is returned as-is.
func htmlToMarkdown(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}
	var b strings.Builder
	w := markdownWriter{out: &b}
	w.walk(doc)
	out := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out)
}

// markdownWriter accumulates markdown while walking an HTML tree.
type markdownWriter struct {
	out    *strings.Builder
	lists  []listState
	pre    bool
	inItem int
}

// listState tracks numbering for one open list.
type listState struct {
	ordered bool
	next    int
}

func (w *markdownWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		w.element(n)
		return
	}
	w.children(n)
}

func (w *markdownWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *markdownWriter) text(s string) {
	if w.pre {
		w.out.WriteString(s)
		return
	}
	s = spaceRuns.ReplaceAllString(s, " ")
	if w.atLineStart() {
		s = strings.TrimLeft(s, " ")
	}
	w.out.WriteString(s)
}

func (w *markdownWriter) element(n *html.Node) {
	switch n.DataAtom {
	case atom.P, atom.Div:
		if w.inItem > 0 {
			w.children(n)
			return
		}
		w.block()
		w.children(n)
		w.block()
	case atom.Br:
		w.out.WriteString("  \n")
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		w.block()
		w.out.WriteString(strings.Repeat("#", level) + " ")
		w.children(n)
		w.block()
	case atom.Strong, atom.B:
		w.wrap(n, "**")
	case atom.Em, atom.I:
		w.wrap(n, "_")
	case atom.S, atom.Del:
		w.wrap(n, "~~")
	case atom.Code:
		if w.pre {
			w.children(n)
			return
		}
		w.wrap(n, "`")
	case atom.Pre:
		w.block()
		w.out.WriteString("```\n")
		w.pre = true
		w.children(n)
		w.pre = false
		w.out.WriteString("\n```")
		w.block()
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			w.children(n)
			return
		}
		w.out.WriteString("[")
		w.children(n)
		w.out.WriteString("](" + href + ")")
	case atom.Ul, atom.Ol:
		w.block()
		w.lists = append(w.lists, listState{ordered: n.DataAtom == atom.Ol, next: 1})
		w.children(n)
		w.lists = w.lists[:len(w.lists)-1]
		w.block()
	case atom.Li:
		w.item(n)
	case atom.Blockquote:
		w.block()
		w.out.WriteString("> ")
		w.children(n)
		w.block()
	case atom.Hr:
		w.block()
		w.out.WriteString("---")
		w.block()
	case atom.Script, atom.Style:
	default:
		w.children(n)
	}
}

func (w *markdownWriter) item(n *html.Node) {
	w.newline()
	depth := len(w.lists)
	if depth == 0 {
		w.out.WriteString("- ")
		w.inItem++
		w.children(n)
		w.inItem--
		return
	}
	w.out.WriteString(strings.Repeat("  ", depth-1))
	state := &w.lists[depth-1]
	if state.ordered {
		w.out.WriteString(strconv.Itoa(state.next) + ". ")
		state.next++
	} else {
		w.out.WriteString("- ")
	}
	// Task-list items carry a data-checked attribute in the tracker's editor output.
	switch attr(n, "data-checked") {
	case "true":
		w.out.WriteString("[x] ")
	case "false":
		w.out.WriteString("[ ] ")
	}
	w.inItem++
	w.children(n)
	w.inItem--
}

func (w *markdownWriter) wrap(n *html.Node, marker string) {
	w.out.WriteString(marker)
	w.children(n)
	w.out.WriteString(marker)
}

// block ensures the next output starts a new paragraph.
func (w *markdownWriter) block() {
	if w.out.Len() == 0 {
		return
	}
	w.out.WriteString("\n\n")
}

// newline ensures the next output starts on its own line.
func (w *markdownWriter) newline() {
	if w.atLineStart() {
		return
	}
	w.out.WriteString("\n")
}

func (w *markdownWriter) atLineStart() bool {
	s := w.out.String()
	return s == "" || strings.HasSuffix(s, "\n")
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
