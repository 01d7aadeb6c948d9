package site

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hesusruiz/htmlizer/story"
)

// Output is one generated file, held in memory until every page rendered fine
type Output struct {
	Path string
	Data []byte

	// Chapter is zero for the index page
	Chapter int
	Title   string
}

// Options control which pages are generated and where they go.
type Options struct {
	// Chapter selects a single chapter; zero generates all of them
	Chapter int

	// UpdateIndex regenerates the index page. It is implied when generating all chapters.
	UpdateIndex bool

	OutputDir string
	IndexPath string

	StoryTitle     string
	WordsPerMinute int

	// Nil templates mean the built-in ones
	PageTemplate  *Template
	IndexTemplate *Template

	Log *zap.SugaredLogger
}

// Build renders the requested pages of the book. Nothing is written: the caller
// passes the result to a Writer once Build succeeded.
func Build(b *story.Book, opts Options) ([]Output, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if b.Len() == 0 {
		return nil, story.ErrNoChapters
	}

	pageTmpl := opts.PageTemplate
	if pageTmpl == nil {
		pageTmpl = DefaultPageTemplate()
	}
	indexTmpl := opts.IndexTemplate
	if indexTmpl == nil {
		indexTmpl = DefaultIndexTemplate()
	}

	numbers := b.Numbers()
	if opts.Chapter != 0 {
		if _, err := b.Chapter(opts.Chapter); err != nil {
			return nil, err
		}
		numbers = []int{opts.Chapter}
	}

	r := story.NewRenderer()

	pr := NewPageRenderer(pageTmpl, opts.StoryTitle, r)
	pr.HomeHref = relativeHref(opts.OutputDir, opts.IndexPath, pr.HomeHref)

	var outputs []Output
	all := b.Numbers()

	for _, num := range numbers {
		page, err := b.Page(num, r, opts.WordsPerMinute)
		if err != nil {
			return nil, err
		}

		html, err := pr.Render(page, all)
		if err != nil {
			return nil, err
		}

		log.Debugw("chapter rendered", "chapter", num, "words", page.Words, "fragments", len(page.Fragments))

		outputs = append(outputs, Output{
			Path:    filepath.Join(opts.OutputDir, ChapterFileName(num)),
			Data:    html,
			Chapter: num,
			Title:   page.Title,
		})
	}

	if opts.Chapter == 0 || opts.UpdateIndex {
		ir := NewIndexRenderer(indexTmpl, opts.StoryTitle, r)
		ir.ChapterDir = relativeHref(filepath.Dir(opts.IndexPath), opts.OutputDir, ir.ChapterDir)

		html, err := ir.Render(b.Summary(opts.WordsPerMinute))
		if err != nil {
			return nil, err
		}

		log.Debugw("index rendered", "chapters", b.Len())

		outputs = append(outputs, Output{
			Path:  opts.IndexPath,
			Data:  html,
			Title: opts.StoryTitle,
		})
	}

	return outputs, nil
}

// relativeHref returns target as a link relative to the directory from,
// or def when one can not be computed.
func relativeHref(from string, target string, def string) string {
	if len(from) == 0 || len(target) == 0 {
		return def
	}
	rel, err := filepath.Rel(from, target)
	if err != nil {
		return def
	}
	return filepath.ToSlash(rel)
}
