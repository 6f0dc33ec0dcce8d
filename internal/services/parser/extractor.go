// Package parser turns free-form AI responses into structured reports.
// Parsing is tolerant: headings may vary in phrasing and markup, and a
// response that matches nothing still yields a well-formed report.
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strategy selects how content is attributed to headings.
type Strategy int

const (
	// LineScan walks the text once, switching the active field whenever a
	// heading line is seen and appending every other non-empty line to it.
	LineScan Strategy = iota

	// Region finds each field's first heading and captures the lines up to
	// the next heading or markdown heading.
	Region
)

// Heading maps a heading pattern onto a field. Patterns are matched
// against the line with leading markup and numbering removed.
type Heading struct {
	Field   string
	Pattern *regexp.Regexp
}

// Line is one trimmed input line as seen by a LineHandler.
type Line struct {
	Text    string
	Inline  string // heading lines only: text after the first colon
	Heading bool
}

// LineHandler consumes the lines of one field instead of the default
// accumulation. It receives the heading line itself first.
type LineHandler func(Line)

// Section is the content collected for one field.
type Section struct {
	Lines []string
}

// Join concatenates the collected lines.
func (s *Section) Join(sep string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(s.Lines, sep))
}

// First returns the first collected line, or "".
func (s *Section) First() string {
	if s == nil || len(s.Lines) == 0 {
		return ""
	}
	return s.Lines[0]
}

// Extractor is a heading table plus a strategy. Handlers apply to LineScan only.
type Extractor struct {
	Headings []Heading
	Strategy Strategy
	Handlers map[string]LineHandler
}

// Extract splits text into sections keyed by field. Fields whose lines went
// to a handler are absent from the result.
func (x Extractor) Extract(text string) map[string]*Section {
	lines := splitLines(text)
	if x.Strategy == Region {
		return x.regions(lines)
	}
	return x.scan(lines)
}

func (x Extractor) scan(lines []string) map[string]*Section {
	sections := make(map[string]*Section)
	current := ""
	for _, line := range lines {
		if field, inline, ok := x.match(line); ok {
			current = field
			x.emit(sections, field, Line{Text: line, Inline: inline, Heading: true})
			continue
		}
		if current == "" || line == "" {
			continue
		}
		x.emit(sections, current, Line{Text: line})
	}
	return sections
}

func (x Extractor) emit(sections map[string]*Section, field string, l Line) {
	if h, ok := x.Handlers[field]; ok {
		h(l)
		return
	}
	content := l.Text
	if l.Heading {
		content = l.Inline
	}
	if content == "" {
		return
	}
	sec, ok := sections[field]
	if !ok {
		sec = &Section{}
		sections[field] = sec
	}
	sec.Lines = append(sec.Lines, content)
}

func (x Extractor) regions(lines []string) map[string]*Section {
	sections := make(map[string]*Section)
	for _, h := range x.Headings {
		if _, done := sections[h.Field]; done {
			continue
		}
		for i, line := range lines {
			field, inline, ok := x.match(line)
			if !ok || field != h.Field {
				continue
			}
			sec := &Section{}
			if inline != "" {
				sec.Lines = append(sec.Lines, inline)
			}
			for _, next := range lines[i+1:] {
				if _, _, isHeading := x.match(next); isHeading || strings.HasPrefix(next, "#") {
					break
				}
				if next != "" {
					sec.Lines = append(sec.Lines, next)
				}
			}
			sections[h.Field] = sec
			break
		}
	}
	return sections
}

// match returns the field of the first heading matching line. A pattern
// matching at the start of the bare line wins; otherwise a heading-shaped
// line may carry the keyword anywhere, e.g. "### 💡 AAPL 투자 스타일 적합성",
// and the earliest keyword decides.
func (x Extractor) match(line string) (field, inline string, ok bool) {
	if line == "" {
		return "", "", false
	}
	bare := stripMarkup(line)
	if bare == "" {
		return "", "", false
	}
	for _, h := range x.Headings {
		if loc := h.Pattern.FindStringIndex(bare); loc != nil && loc[0] == 0 {
			return h.Field, afterColon(bare), true
		}
	}
	if !headingShaped(line, bare) {
		return "", "", false
	}
	best := -1
	for _, h := range x.Headings {
		if loc := h.Pattern.FindStringIndex(bare); loc != nil && (best < 0 || loc[0] < best) {
			best, field = loc[0], h.Field
		}
	}
	if best < 0 {
		return "", "", false
	}
	return field, afterColon(bare), true
}

var numbering = regexp.MustCompile(`^(?:\d+[.)]|[IVX]+\.)\s*`)

// stripMarkup removes leading markdown, bullets, numbering and any other
// runes before the first letter (emoji, stray symbols).
func stripMarkup(line string) string {
	for {
		before := line
		line = strings.TrimLeft(line, "#>*-•[( \t")
		line = numbering.ReplaceAllString(line, "")
		line = strings.TrimLeftFunc(line, func(r rune) bool { return !unicode.IsLetter(r) })
		if line == before {
			return line
		}
	}
}

// maxHeadingRunes bounds how long an unmarked line may be and still read as a heading.
const maxHeadingRunes = 30

// headingShaped reports whether a line looks like a heading rather than
// prose: markdown heading, numbered item, bold line, trailing colon, or a
// short line that does not end like a sentence. Bullets only qualify with
// a trailing colon.
func headingShaped(line, bare string) bool {
	switch {
	case strings.HasPrefix(line, "#"):
		return true
	case numbering.MatchString(line), strings.HasPrefix(line, "**"):
		return true
	case strings.HasSuffix(bare, ":"), strings.HasSuffix(bare, "："):
		return true
	case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "•"), strings.HasPrefix(line, "* "):
		return false
	}
	if utf8.RuneCountInString(bare) > maxHeadingRunes {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(strings.TrimRight(bare, "* "))
	return !strings.ContainsRune(".!?。다요", last)
}

func afterColon(s string) string {
	idx := strings.IndexAny(s, ":：")
	if idx < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s[idx:])
	rest := strings.TrimSpace(s[idx+size:])
	return strings.TrimSpace(strings.Trim(rest, "*"))
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

// pattern compiles a case-insensitive heading regex. Extractor.match decides
// whether it must sit at the start of the line.
func pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i:` + expr + `)`)
}
