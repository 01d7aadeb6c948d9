package site

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/hesusruiz/htmlizer/story"
)

// IndexRenderer fills the index page template
type IndexRenderer struct {
	tmpl       *Template
	storyTitle string

	// ChapterDir is the directory of the chapter pages, relative to the index page
	ChapterDir string

	inline *story.Renderer
}

func NewIndexRenderer(tmpl *Template, storyTitle string, r *story.Renderer) *IndexRenderer {
	return &IndexRenderer{
		tmpl:       tmpl,
		storyTitle: storyTitle,
		ChapterDir: "chapters",
		inline:     r,
	}
}

// Render returns the index page listing the chapters of the summary
func (ir *IndexRenderer) Render(s story.Summary) ([]byte, error) {
	vars := Vars{
		"story.title":    ir.inline.Inline(ir.storyTitle),
		"nav.links":      ir.navLinks(s),
		"chapters.cards": ir.cards(s),
		"chapters.count": fmt.Sprintf("%d AVAILABLE", len(s.Entries)),
		"chapters.words": strconv.Itoa(s.TotalWords),
	}

	html, err := ir.tmpl.Execute(vars)
	if err != nil {
		return nil, fmt.Errorf("rendering index: %w", err)
	}
	return html, nil
}

func (ir *IndexRenderer) chapterHref(number int) string {
	return path.Join(ir.ChapterDir, ChapterFileName(number))
}

func (ir *IndexRenderer) navLinks(s story.Summary) string {
	links := []string{`<li><a href="index.html" class="active">HOME</a></li>`}
	for _, num := range s.Numbers() {
		links = append(links, fmt.Sprintf(`<li><a href="%s">CHAPTER %d</a></li>`, ir.chapterHref(num), num))
	}
	return strings.Join(links, navIndent)
}

func (ir *IndexRenderer) cards(s story.Summary) string {
	cards := make([]string, 0, len(s.Entries)+1)

	// Entries are in ascending order, the locked card follows the last one
	last := 0
	if nums := s.Numbers(); len(nums) > 0 {
		last = nums[len(nums)-1]
	}

	for _, e := range s.Entries {
		cards = append(cards, fmt.Sprintf(`<a href="%s" class="chapter-card">
                <div class="chapter-number">%02d</div>
                <div class="chapter-info">
                    <h3>%s</h3>
                    <p>%s</p>
                    <div class="chapter-meta">
                        <span class="read-time">%s</span>
                        <span class="chapter-status online">ACCESSIBLE</span>
                    </div>
                </div>
                <div class="card-decoration"></div>
            </a>`, ir.chapterHref(e.Number), e.Number, ir.inline.Inline(e.Title), ir.inline.Inline(e.Description), e.ReadTime))
	}

	// The next chapter is announced but locked
	cards = append(cards, fmt.Sprintf(`<div class="chapter-card locked">
                <div class="chapter-number">%02d</div>
                <div class="chapter-info">
                    <h3>Coming Soon</h3>
                    <p>The story continues...</p>
                    <div class="chapter-meta">
                        <span class="read-time">??? min read</span>
                        <span class="chapter-status offline">LOCKED</span>
                    </div>
                </div>
                <div class="card-decoration"></div>
            </div>`, last+1))

	return strings.Join(cards, navIndent+navIndent)
}
