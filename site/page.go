package site

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hesusruiz/htmlizer/story"
)

// navIndent is the indentation of the nav items inside the templates
const navIndent = "\n            "

// ChapterFileName returns the name of the page of a chapter
func ChapterFileName(number int) string {
	return "chapter" + strconv.Itoa(number) + ".html"
}

// PageRenderer fills the chapter page template
type PageRenderer struct {
	tmpl       *Template
	storyTitle string

	// HomeHref is the link to the index page, relative to the chapter pages
	HomeHref string

	inline *story.Renderer
	upper  cases.Caser
}

// NewPageRenderer returns a renderer for the chapter pages. The story renderer is used
// to escape titles the same way as the text of the chapters.
func NewPageRenderer(tmpl *Template, storyTitle string, r *story.Renderer) *PageRenderer {
	return &PageRenderer{
		tmpl:       tmpl,
		storyTitle: storyTitle,
		HomeHref:   "../index.html",
		inline:     r,
		upper:      cases.Upper(language.English),
	}
}

// Render returns the full HTML page of a chapter. numbers are all the chapter numbers
// of the book in ascending order, for the navigation bar.
func (pr *PageRenderer) Render(p *story.Page, numbers []int) ([]byte, error) {
	title := pr.inline.Inline(p.Title)

	// Every fragment goes at the indentation of the story text, with a blank line between them
	var content strings.Builder
	for i, frag := range p.Fragments {
		if i > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(story.DefaultIndent)
		content.WriteString(frag)
	}

	vars := Vars{
		"story.title":         pr.inline.Inline(pr.storyTitle),
		"chapter.number":      strconv.Itoa(p.Number),
		"chapter.label":       fmt.Sprintf("CHAPTER_%02d", p.Number),
		"chapter.title":       title,
		"chapter.title.upper": pr.upper.String(title),
		"chapter.content":     content.String(),
		"chapter.readtime":    p.ReadTime,
		"chapter.words":       strconv.Itoa(p.Words),
		"nav.links":           pr.navLinks(p.Number, numbers),
		"nav.prev":            pr.prevButton(p.Prev),
		"nav.next":            pr.nextButton(p.Next),
	}

	html, err := pr.tmpl.Execute(vars)
	if err != nil {
		return nil, fmt.Errorf("rendering chapter %d: %w", p.Number, err)
	}
	return html, nil
}

func (pr *PageRenderer) navLinks(current int, numbers []int) string {
	links := []string{fmt.Sprintf(`<li><a href="%s">HOME</a></li>`, pr.HomeHref)}
	for _, num := range numbers {
		active := ""
		if num == current {
			active = ` class="active"`
		}
		links = append(links, fmt.Sprintf(`<li><a href="%s"%s>CHAPTER %d</a></li>`, ChapterFileName(num), active, num))
	}
	return strings.Join(links, navIndent)
}

func (pr *PageRenderer) prevButton(prev int) string {
	if prev == 0 {
		return fmt.Sprintf(`<a href="%s" class="nav-btn">
                <span class="arrow">←</span>
                <span>HOME</span>
            </a>`, pr.HomeHref)
	}
	return fmt.Sprintf(`<a href="%s" class="nav-btn">
                <span class="arrow">←</span>
                <span>CHAPTER %d</span>
            </a>`, ChapterFileName(prev), prev)
}

func (pr *PageRenderer) nextButton(next int) string {
	if next == 0 {
		return `<a href="#" class="nav-btn disabled">
                <span>NEXT CHAPTER</span>
                <span class="arrow">→</span>
            </a>`
	}
	return fmt.Sprintf(`<a href="%s" class="nav-btn">
                <span>CHAPTER %d</span>
                <span class="arrow">→</span>
            </a>`, ChapterFileName(next), next)
}
