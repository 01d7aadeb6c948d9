package story

import (
	"regexp"
	"strconv"
	"strings"
)

// A Kind is the classification of one manuscript line.
type Kind uint32

const (
	// KindBlank is an empty line, or a line with only whitespace.
	KindBlank Kind = iota
	// KindChapter looks like <Chapter 3> or <Chapter 3;Title;Description>.
	KindChapter
	// KindSectionBreak is the <SECTION BREAK> marker.
	KindSectionBreak
	// KindNote is the <GNOTE> marker.
	KindNote
	// KindText is anything else, including malformed tags.
	KindText
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "Blank"
	case KindChapter:
		return "Chapter"
	case KindSectionBreak:
		return "SectionBreak"
	case KindNote:
		return "Note"
	case KindText:
		return "Text"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

const (
	SectionBreakTag = "<SECTION BREAK>"
	NoteTag         = "<GNOTE>"
)

// Title is terminated by ';' and the description by '>'
var reChapter = regexp.MustCompile(`^(?i:<chapter)\s+(\d+)(?:;([^;]*);([^>]*))?>$`)

// Boundary holds the data carried by a chapter boundary tag.
type Boundary struct {
	Number int
	// HasMeta is true for the <Chapter N;TITLE;DESCRIPTION> form
	HasMeta     bool
	Title       string
	Description string
}

// Classify returns the Kind of a line. It never fails: anything which is not
// a recognized marker is text.
func Classify(line string) Kind {
	line = strings.TrimSpace(line)

	switch {
	case len(line) == 0:
		return KindBlank
	case line == SectionBreakTag:
		return KindSectionBreak
	case line == NoteTag:
		return KindNote
	}

	if _, ok := ParseBoundary(line); ok {
		return KindChapter
	}

	return KindText
}

// ParseBoundary decodes a chapter boundary tag. The second return value is
// false if the line is not a valid boundary, including numbers too big to fit
// in an int. Zero is a boundary: the block it starts belongs to no chapter.
func ParseBoundary(line string) (Boundary, bool) {
	line = strings.TrimSpace(line)

	// Cheap check before running the regexp on every line of the manuscript
	if len(line) < len("<Chapter 1>") || line[0] != '<' {
		return Boundary{}, false
	}

	m := reChapter.FindStringSubmatchIndex(line)
	if m == nil {
		return Boundary{}, false
	}

	num, err := strconv.Atoi(line[m[2]:m[3]])
	if err != nil {
		return Boundary{}, false
	}

	b := Boundary{Number: num}

	// The metadata group did not participate in the match for the bare form
	if m[4] >= 0 {
		b.HasMeta = true
		b.Title = strings.TrimSpace(line[m[4]:m[5]])
		b.Description = strings.TrimSpace(line[m[6]:m[7]])
	}

	return b, true
}
