package story

import (
	"regexp"
	"strconv"
	"strings"
)

// SceneBreakHTML is the fragment for <SECTION BREAK>
const SceneBreakHTML = `<div class="scene-break">◆ ◆ ◆</div>`

// noteLines is the fragment for <GNOTE>, one entry per output line
var noteLines = []string{
	`<div class="g-note">`,
	`    <span class="g-note-glyph">◈</span>`,
	`    <span class="g-note-text">// NOTE FROM MANAGEMENT</span>`,
	`</div>`,
}

// DefaultIndent is the indentation of the story text inside the page template
var DefaultIndent = strings.Repeat(" ", 16)

// InlineTags are the only tags which survive escaping, in opening and closing form
var InlineTags = []string{"strong", "em", "b", "i", "u", "mark", "small", "sub", "sup"}

var reInlineTag = regexp.MustCompile(`</?(?:` + strings.Join(InlineTags, "|") + `)>`)

// Placeholders are delimited by NUL, which is removed from the input before extraction
const placeholderMark = "\x00"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var quoteNormalizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// RenderOption configures a Renderer
type RenderOption func(*Renderer)

// WithIndent sets the prefix of the internal lines of multi-line fragments
func WithIndent(indent string) RenderOption {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer converts the lines of a chapter to HTML fragments.
// It has no state apart from its options, so it can be shared between chapters.
type Renderer struct {
	indent string
	note   string
}

func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{indent: DefaultIndent}
	for _, opt := range opts {
		opt(r)
	}

	var br ByteRenderer
	for i, l := range noteLines {
		if i > 0 {
			br.Render("\n", r.indent)
		}
		br.Render(l)
	}
	r.note = br.String()

	return r
}

// Render returns one fragment per line producing output, in source order
func (r *Renderer) Render(lines []Line) []string {
	fragments := make([]string, 0, len(lines))
	for _, line := range lines {
		if frag, ok := r.RenderLine(line.Text); ok {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

// RenderLine renders a single line. The second return value is false for
// lines without output: blank lines and chapter boundaries.
func (r *Renderer) RenderLine(line string) (string, bool) {
	line = strings.TrimSpace(line)

	switch Classify(line) {
	case KindBlank, KindChapter:
		return "", false
	case KindSectionBreak:
		return SceneBreakHTML, true
	case KindNote:
		return r.note, true
	}

	var br ByteRenderer
	br.Render("<p>", r.Inline(line), "</p>")
	return br.String(), true
}

// Inline escapes text for HTML, keeping the whitelisted inline tags and
// replacing curly quotes by straight ones.
// Tags are taken out before escaping and put back after, otherwise their angle
// brackets would be escaped too.
func (r *Renderer) Inline(text string) string {

	// Nothing in the input may look like a placeholder
	text = strings.ReplaceAll(text, placeholderMark, "")

	var saved []string
	text = reInlineTag.ReplaceAllStringFunc(text, func(tag string) string {
		saved = append(saved, tag)
		return placeholderMark + strconv.Itoa(len(saved)-1) + placeholderMark
	})

	// The replacer looks for '&' before the other two, so entities are not escaped twice
	text = htmlEscaper.Replace(text)

	if len(saved) > 0 {
		pairs := make([]string, 0, 2*len(saved))
		for i, tag := range saved {
			pairs = append(pairs, placeholderMark+strconv.Itoa(i)+placeholderMark, tag)
		}
		text = strings.NewReplacer(pairs...).Replace(text)
	}

	return quoteNormalizer.Replace(text)
}
