package story

import (
	"errors"
	"fmt"
)

var (
	ErrNoChapters         = errors.New("no chapters found")
	ErrChapterNotFound    = errors.New("chapter not found")
	ErrDuplicateChapter   = errors.New("duplicate chapter number")
	ErrUnterminatedHeader = errors.New("end of file reached but no end of YAML header found")
)

// ChapterNotFoundError is returned when a specific chapter is requested
// and the manuscript does not contain it.
type ChapterNotFoundError struct {
	Number int
}

func (e *ChapterNotFoundError) Error() string {
	return fmt.Sprintf("chapter %d not found", e.Number)
}

func (e *ChapterNotFoundError) Unwrap() error {
	return ErrChapterNotFound
}

// DuplicateChapterError reports a second boundary tag for the same chapter
// number when the parser runs in strict mode.
type DuplicateChapterError struct {
	Number    int
	FirstLine int
	Line      int
}

func (e *DuplicateChapterError) Error() string {
	return fmt.Sprintf("line %d: chapter %d already started at line %d", e.Line, e.Number, e.FirstLine)
}

func (e *DuplicateChapterError) Unwrap() error {
	return ErrDuplicateChapter
}
