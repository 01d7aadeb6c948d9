package story

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hesusruiz/vcutils/yaml"
)

const DefaultDescription = "..."

// Chapter is one chapter of the manuscript, immutable once parsing completes.
type Chapter struct {
	Number      int
	Title       string
	Description string
	Lines       []Line
}

// DefaultMeta returns the metadata used when neither the manuscript nor the
// metadata table say anything about a chapter.
func DefaultMeta(number int) Meta {
	return Meta{
		Title:       "Chapter " + strconv.Itoa(number),
		Description: DefaultDescription,
	}
}

// Book is the result of parsing a manuscript: the chapters with content, keyed by number,
// and the metadata of every chapter number seen in a boundary tag.
type Book struct {
	fileName string
	chapters map[int]*Chapter

	// Meta has an entry for every boundary tag, including chapters dropped for being empty
	Meta map[int]Meta

	// Config is the YAML header of the manuscript, empty if there was none
	Config *yaml.YAML
}

func newBook(fileName string) *Book {
	return &Book{
		fileName: fileName,
		chapters: make(map[int]*Chapter),
		Meta:     make(map[int]Meta),
	}
}

func (b *Book) resolveTitles() {
	for num, ch := range b.chapters {
		meta, ok := b.Meta[num]
		if !ok {
			meta = DefaultMeta(num)
		}
		ch.Title = meta.Title
		ch.Description = meta.Description
	}
}

// Len returns the number of chapters with content
func (b *Book) Len() int {
	return len(b.chapters)
}

// Numbers returns the chapter numbers in ascending order
func (b *Book) Numbers() []int {
	nums := make([]int, 0, len(b.chapters))
	for num := range b.chapters {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

// Chapter returns the chapter with the given number.
func (b *Book) Chapter(number int) (*Chapter, error) {
	ch, ok := b.chapters[number]
	if !ok {
		return nil, &ChapterNotFoundError{Number: number}
	}
	return ch, nil
}

// Title returns the story title from the YAML header, or def.
func (b *Book) Title(def string) string {
	if b.Config == nil {
		return def
	}
	return b.Config.String("title", def)
}

// WordsPerMinute returns the reading speed set in the YAML header, or def if the
// header does not set one.
func (b *Book) WordsPerMinute(def int) (int, error) {
	if b.Config == nil {
		return def, nil
	}

	node, err := b.Config.Get("wpm")
	if err != nil || node.Data() == nil {
		return def, nil
	}

	// The YAML decoder gives unsigned integers for positive numbers, which the
	// typed accessors of the config do not convert
	value := node.Data()
	wpm := 0
	switch v := value.(type) {
	case uint64:
		if v <= math.MaxInt32 {
			wpm = int(v)
		}
	case int64:
		wpm = int(v)
	case int:
		wpm = v
	case float64:
		if v == math.Trunc(v) && v <= math.MaxInt32 {
			wpm = int(v)
		}
	case string:
		wpm, _ = strconv.Atoi(strings.TrimSpace(v))
	}

	if wpm <= 0 {
		return 0, fmt.Errorf("%s: invalid wpm %v in YAML header, expecting a positive integer", b.fileName, value)
	}

	return wpm, nil
}

// Page is the data needed to render the page of one chapter.
type Page struct {
	Number      int
	Title       string
	Description string
	Fragments   []string
	Words       int
	ReadTime    string

	// Total is the number of chapters in the book
	Total int

	// Prev and Next are the neighbour chapter numbers, zero when there is none
	Prev int
	Next int
}

// Page renders one chapter and computes its metrics.
func (b *Book) Page(number int, r *Renderer, wpm int) (*Page, error) {
	ch, err := b.Chapter(number)
	if err != nil {
		return nil, err
	}

	words := CountWords(ch.Lines)

	page := &Page{
		Number:      ch.Number,
		Title:       ch.Title,
		Description: ch.Description,
		Fragments:   r.Render(ch.Lines),
		Words:       words,
		ReadTime:    FormatReadTime(EstimateReadTime(words, wpm)),
		Total:       b.Len(),
	}

	// Numbers need not be contiguous, so neighbours come from the sorted list
	nums := b.Numbers()
	i := sort.SearchInts(nums, number)
	if i > 0 {
		page.Prev = nums[i-1]
	}
	if i < len(nums)-1 {
		page.Next = nums[i+1]
	}

	return page, nil
}

// Entry is the index data of one chapter
type Entry struct {
	Number      int
	Title       string
	Description string
	Words       int
	ReadTime    string
}

// Summary is the data needed to render the index page.
type Summary struct {
	Entries    []Entry
	TotalWords int
}

// Summary computes the index data of all the chapters, in ascending order.
func (b *Book) Summary(wpm int) Summary {
	var s Summary

	for _, num := range b.Numbers() {
		ch := b.chapters[num]
		words := CountWords(ch.Lines)
		s.Entries = append(s.Entries, Entry{
			Number:      num,
			Title:       ch.Title,
			Description: ch.Description,
			Words:       words,
			ReadTime:    FormatReadTime(EstimateReadTime(words, wpm)),
		})
		s.TotalWords += words
	}

	return s
}

// Numbers returns the chapter numbers in the summary
func (s Summary) Numbers() []int {
	nums := make([]int, len(s.Entries))
	for i, e := range s.Entries {
		nums[i] = e.Number
	}
	return nums
}
