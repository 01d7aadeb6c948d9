package story

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleManuscript = `
<Chapter 1;The Arrival;Doug's morning commute takes a turn.>
Doug woke up.
<SECTION BREAK>
He went to work & never came back.

<Chapter 3;The Meeting;Floor managers convene.>
` + "“Sit,” said the manager." + `
<Chapter 7>
The end.
`

func TestBookPage(t *testing.T) {
	book, err := Parse([]byte(sampleManuscript))
	if err != nil {
		t.Fatal(err)
	}

	r := NewRenderer()

	tests := []struct {
		name string
		num  int
		want *Page
	}{
		{
			name: "first chapter",
			num:  1,
			want: &Page{
				Number:      1,
				Title:       "The Arrival",
				Description: "Doug's morning commute takes a turn.",
				Fragments: []string{
					"<p>Doug woke up.</p>",
					SceneBreakHTML,
					"<p>He went to work &amp; never came back.</p>",
				},
				Words:    11,
				ReadTime: "~1 min read",
				Total:    3,
				Prev:     0,
				Next:     3,
			},
		},
		{
			name: "middle chapter after a gap",
			num:  3,
			want: &Page{
				Number:      3,
				Title:       "The Meeting",
				Description: "Floor managers convene.",
				Fragments:   []string{`<p>"Sit," said the manager.</p>`},
				Words:       4,
				ReadTime:    "~1 min read",
				Total:       3,
				Prev:        1,
				Next:        7,
			},
		},
		{
			name: "last chapter",
			num:  7,
			want: &Page{
				Number:      7,
				Title:       "Chapter 7",
				Description: DefaultDescription,
				Fragments:   []string{"<p>The end.</p>"},
				Words:       2,
				ReadTime:    "~1 min read",
				Total:       3,
				Prev:        3,
				Next:        0,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := book.Page(tt.num, r, DefaultWordsPerMinute)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Page() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBookPageNotFound(t *testing.T) {
	book, err := Parse([]byte(sampleManuscript))
	if err != nil {
		t.Fatal(err)
	}

	_, err = book.Page(2, NewRenderer(), DefaultWordsPerMinute)
	if !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("Page() error = %v, want %v", err, ErrChapterNotFound)
	}

	var nf *ChapterNotFoundError
	if !errors.As(err, &nf) || nf.Number != 2 {
		t.Errorf("Page() error = %#v", err)
	}
	if !strings.Contains(err.Error(), "chapter 2") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBookSummary(t *testing.T) {
	book, err := Parse([]byte(sampleManuscript))
	if err != nil {
		t.Fatal(err)
	}

	got := book.Summary(DefaultWordsPerMinute)

	want := Summary{
		Entries: []Entry{
			{Number: 1, Title: "The Arrival", Description: "Doug's morning commute takes a turn.", Words: 11, ReadTime: "~1 min read"},
			{Number: 3, Title: "The Meeting", Description: "Floor managers convene.", Words: 4, ReadTime: "~1 min read"},
			{Number: 7, Title: "Chapter 7", Description: DefaultDescription, Words: 2, ReadTime: "~1 min read"},
		},
		TotalWords: 17,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
	if nums := got.Numbers(); !reflect.DeepEqual(nums, []int{1, 3, 7}) {
		t.Errorf("Numbers() = %v", nums)
	}
}

func TestBookReadTimeUsesWordsPerMinute(t *testing.T) {
	book, err := Parse([]byte("<Chapter 1>\n" + strings.Repeat("word ", 500)))
	if err != nil {
		t.Fatal(err)
	}

	if got := book.Summary(200).Entries[0].ReadTime; got != "~3 min read" {
		t.Errorf("ReadTime at 200 wpm = %q", got)
	}
	if got := book.Summary(100).Entries[0].ReadTime; got != "~5 min read" {
		t.Errorf("ReadTime at 100 wpm = %q", got)
	}
}
