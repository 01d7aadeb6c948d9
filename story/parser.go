package story

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/hesusruiz/vcutils/yaml"
	"go.uber.org/zap"
)

const headerDelimiter = "---"

// maxLineSize is the longest line accepted by the scanner. A paragraph is a single line
// in the manuscript, so the default 64KiB of bufio.Scanner is too small for some authors.
const maxLineSize = 1 << 20

// Line is one non-blank, trimmed line of the manuscript.
type Line struct {
	// Number is the 1-based line number in the source, for diagnostics
	Number int
	Text   string
}

// Meta is the title and description of a chapter
type Meta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithMetadata sets a static table of chapter metadata. Metadata in the boundary tags
// of the manuscript takes precedence over the table.
func WithMetadata(table map[int]Meta) Option {
	return func(p *Parser) {
		p.table = table
	}
}

// WithStrict makes a repeated chapter number an error instead of replacing the
// previous content of the chapter.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithLogger sets the logger used to trace the parsing.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.log = logger
		}
	}
}

// Parser splits a manuscript into chapters, reading one line at a time.
type Parser struct {
	// The source of the manuscript for scanning
	s *bufio.Scanner

	// the name of the file being processed, for messages
	fileName string

	// One-level backtracking, used when looking for the YAML header
	bufferedLine *Line

	// currentLineCounter is the number of lines read from the scanner
	currentLineCounter int

	// This is true when we have read the whole input
	atEOF bool

	// The number of the chapter receiving lines, zero before the first boundary tag
	current int

	// The lines of the current chapter, not yet stored in the book
	accumulator []Line

	// Line number of the first boundary tag seen for each chapter number
	firstSeen map[int]int

	table  map[int]Meta
	strict bool

	book *Book

	log *zap.SugaredLogger
}

// NewParser creates a parser reading lines from linescanner.
// fileName is for logging/tracing purposes.
func NewParser(fileName string, linescanner *bufio.Scanner, opts ...Option) *Parser {

	linescanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	p := &Parser{
		fileName:  fileName,
		s:         linescanner,
		firstSeen: make(map[int]int),
		book:      newBook(fileName),
		log:       zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse parses a manuscript held in memory.
// An empty book is not an error here: the caller decides how to report it.
func Parse(src []byte, opts ...Option) (*Book, error) {
	return ParseNamed("manuscript", src, opts...)
}

// ParseNamed is like Parse, using fileName in messages.
func ParseNamed(fileName string, src []byte, opts ...Option) (*Book, error) {
	linescanner := bufio.NewScanner(bytes.NewReader(src))
	return NewParser(fileName, linescanner, opts...).Parse()
}

// ParseFile reads the manuscript from a file and parses it.
func ParseFile(fileName string, opts ...Option) (*Book, error) {

	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading manuscript: %w", err)
	}
	defer file.Close()

	// Process the file one line at a time
	linescanner := bufio.NewScanner(file)

	return NewParser(fileName, linescanner, opts...).Parse()
}

// ReadLine returns one trimmed line from the underlying bufio.Scanner, or nil if the line
// is blank or we reached the end of the input (check atEOF to distinguish).
// It supports one-level backtracking, with the UnreadLine method.
func (p *Parser) ReadLine() *Line {

	// If there is a line alredy buffered, return it
	if p.bufferedLine != nil {
		line := p.bufferedLine
		p.bufferedLine = nil
		return line
	}

	if !p.s.Scan() {
		p.atEOF = true
		return nil
	}

	p.currentLineCounter++

	text := strings.TrimSpace(p.s.Text())
	if len(text) == 0 {
		return nil
	}

	return &Line{Number: p.currentLineCounter, Text: text}
}

// UnreadLine buffers one line so the next call to ReadLine returns it again
func (p *Parser) UnreadLine(line *Line) {
	if p.bufferedLine != nil {
		panic(fmt.Sprintf("UnreadLine: too many calls in line: %d", p.currentLineCounter))
	}
	p.bufferedLine = line
}

// Parse reads the whole manuscript and returns the book with its chapters.
func (p *Parser) Parse() (*Book, error) {

	// Process the YAML header if there is one. It should be at the beginning of the file
	if err := p.PreprocessYAMLHeader(); err != nil {
		return nil, err
	}

	// The header may ask for strict processing, but can not relax what the caller asked
	if p.book.Config.Bool("strict") {
		p.strict = true
	}

	for {
		line := p.ReadLine()
		if line == nil {
			if p.atEOF {
				break
			}
			// Blank lines do not separate anything at this level
			continue
		}

		b, isBoundary := ParseBoundary(line.Text)
		if !isBoundary {
			p.accumulator = append(p.accumulator, *line)
			continue
		}

		if err := p.startChapter(b, line.Number); err != nil {
			return nil, err
		}

	}

	if err := p.s.Err(); err != nil {
		return nil, fmt.Errorf("%s: scanning line %d: %w", p.fileName, p.currentLineCounter+1, err)
	}

	// Store whatever was pending for the last chapter
	p.flush()

	p.book.resolveTitles()

	p.log.Debugw("manuscript parsed", "file", p.fileName, "lines", p.currentLineCounter, "chapters", p.book.Len())

	return p.book, nil
}

// startChapter closes the chapter being accumulated and starts a new one
func (p *Parser) startChapter(b Boundary, lineNum int) error {

	// Chapter zero only closes the previous chapter; its lines go nowhere
	if b.Number == 0 {
		p.flush()
		p.current = 0
		p.accumulator = nil
		p.log.Debugw("chapter zero, discarding block", "line", lineNum)
		return nil
	}

	if first, seen := p.firstSeen[b.Number]; seen {
		if p.strict {
			return &DuplicateChapterError{Number: b.Number, FirstLine: first, Line: lineNum}
		}
		p.log.Debugw("chapter number repeated, last block wins", "chapter", b.Number, "line", lineNum, "first", first)
	} else {
		p.firstSeen[b.Number] = lineNum
	}

	p.flush()

	p.current = b.Number
	p.accumulator = nil
	p.book.Meta[b.Number] = p.metaFor(b)

	p.log.Debugw("chapter boundary", "chapter", b.Number, "line", lineNum, "title", p.book.Meta[b.Number].Title)

	return nil
}

// metaFor applies the precedence rule: boundary tag, then static table, then defaults
func (p *Parser) metaFor(b Boundary) Meta {
	meta := DefaultMeta(b.Number)

	if entry, ok := p.table[b.Number]; ok {
		if len(entry.Title) > 0 {
			meta.Title = entry.Title
		}
		if len(entry.Description) > 0 {
			meta.Description = entry.Description
		}
	}

	// An empty field in the tag counts as unspecified
	if len(b.Title) > 0 {
		meta.Title = b.Title
	}
	if len(b.Description) > 0 {
		meta.Description = b.Description
	}

	return meta
}

// flush stores the accumulated lines under the current chapter number.
// Nothing is stored before the first boundary tag or for chapters without content.
func (p *Parser) flush() {
	if p.current <= 0 || len(p.accumulator) == 0 {
		return
	}

	p.book.chapters[p.current] = &Chapter{
		Number: p.current,
		Lines:  p.accumulator,
	}
	p.log.Debugw("chapter stored", "chapter", p.current, "lines", len(p.accumulator))

	p.accumulator = nil
}

// PreprocessYAMLHeader reads the optional YAML header delimited by '---' lines at the
// beginning of the manuscript. Without a header the book gets an empty configuration.
func (p *Parser) PreprocessYAMLHeader() error {
	var err error

	// Initialise the config just in case we do not find a suitable one
	p.book.Config, _ = yaml.ParseYaml("")

	// Skip leading blank lines
	line := p.ReadLine()
	for line == nil && !p.atEOF {
		line = p.ReadLine()
	}
	if line == nil {
		return nil
	}

	// We accept YAML data only at the beginning of the file
	if line.Text != headerDelimiter {
		p.UnreadLine(line)
		return nil
	}

	// Build a string with all subsequent lines up to the next "---".
	// We use the raw lines because indentation is significant in YAML.
	var yamlString strings.Builder
	var endYamlFound bool

	for p.s.Scan() {
		p.currentLineCounter++

		raw := p.s.Text()
		if strings.TrimSpace(raw) == headerDelimiter {
			endYamlFound = true
			break
		}

		yamlString.WriteString(raw)
		yamlString.WriteString("\n")
	}

	if !endYamlFound {
		if err := p.s.Err(); err != nil {
			return fmt.Errorf("%s: scanning YAML header: %w", p.fileName, err)
		}
		return fmt.Errorf("%s: %w", p.fileName, ErrUnterminatedHeader)
	}

	// Parse the string that was built as YAML data
	p.book.Config, err = yaml.ParseYaml(yamlString.String())
	if err != nil {
		return fmt.Errorf("%s: malformed YAML header: %w", p.fileName, err)
	}

	p.log.Debugw("YAML header found", "file", p.fileName, "lines", p.currentLineCounter)

	return nil
}
