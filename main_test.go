package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hesusruiz/htmlizer/config"
	"github.com/hesusruiz/htmlizer/story"
)

const manuscript = `---
title: HELL INC.
---
<CHAPTER 1>
Doug woke up in Hell.

<CHAPTER 2;The Meeting;Doug meets his new boss.>
The boss smiled.
<GNOTE>
`

// setup writes a manuscript and a config file sending the output to a temporary directory
func setup(t *testing.T, text string, cfg string) (dir string, opts runOptions) {
	t.Helper()
	dir = t.TempDir()

	opts.input = filepath.Join(dir, "story.txt")
	if err := os.WriteFile(opts.input, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	opts.configPath = filepath.Join(dir, config.DefaultFileName)
	if err := os.WriteFile(opts.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	return dir, opts
}

func TestRun(t *testing.T) {
	dir, opts := setup(t, manuscript, "chapters:\n  1:\n    title: The Arrival\n")

	var out bytes.Buffer
	if err := run(opts, &out, zap.NewNop().Sugar()); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"chapters/chapter1.html", "chapters/chapter2.html", "index.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"<title>HELL INC.</title>", "<h3>The Arrival</h3>", "<h3>The Meeting</h3>", "2 AVAILABLE"} {
		if !strings.Contains(string(index), s) {
			t.Errorf("index.html is missing %q", s)
		}
	}

	for _, s := range []string{
		"Found 2 chapter(s): 1, 2",
		"✓ Chapter 1: The Arrival → " + filepath.Join(dir, "chapters", "chapter1.html"),
		"✓ Chapter 2: The Meeting → ",
		"✓ Updated " + filepath.Join(dir, "index.html") + " with 2 chapters",
	} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output is missing %q in\n%s", s, out.String())
		}
	}
}

func TestRunDryRun(t *testing.T) {
	dir, opts := setup(t, manuscript, "")
	opts.dryrun = true

	var out bytes.Buffer
	if err := run(opts, &out, zap.NewNop().Sugar()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("dry run wrote files: %d entries in %s", len(entries), dir)
	}
}

func TestRunSingleChapter(t *testing.T) {
	dir, opts := setup(t, manuscript, "")
	opts.chapter = 2

	var out bytes.Buffer
	if err := run(opts, &out, zap.NewNop().Sugar()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "chapters", "chapter2.html")); err != nil {
		t.Errorf("chapter 2 not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "chapters", "chapter1.html")); !os.IsNotExist(err) {
		t.Errorf("chapter 1 written when only chapter 2 was asked")
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); !os.IsNotExist(err) {
		t.Errorf("index written without update-index")
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		cfg      string
		modify   func(*runOptions)
		wantErr  error
		wantHelp bool
	}{
		{
			name:     "no chapters",
			text:     "Just some text.\n",
			wantErr:  story.ErrNoChapters,
			wantHelp: true,
		},
		{
			name:    "unknown chapter",
			text:    manuscript,
			modify:  func(o *runOptions) { o.chapter = 5 },
			wantErr: story.ErrChapterNotFound,
		},
		{
			name:    "missing manuscript",
			text:    manuscript,
			modify:  func(o *runOptions) { o.input += ".missing" },
			wantErr: os.ErrNotExist,
		},
		{
			name:    "duplicate chapter in strict mode",
			text:    "<CHAPTER 1>\na\n<CHAPTER 1>\nb\n",
			modify:  func(o *runOptions) { o.strict = true },
			wantErr: story.ErrDuplicateChapter,
		},
		{
			name:    "strict from the config file",
			text:    "<CHAPTER 1>\na\n<CHAPTER 1>\nb\n",
			cfg:     "strict: true\n",
			wantErr: story.ErrDuplicateChapter,
		},
		{
			name:    "bad config file",
			text:    manuscript,
			cfg:     "wpm: [1, 2]\n",
			wantErr: config.ErrConfigParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, opts := setup(t, tt.text, tt.cfg)
			if tt.modify != nil {
				tt.modify(&opts)
			}

			var out bytes.Buffer
			err := run(opts, &out, zap.NewNop().Sugar())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("run() error = %v, want %v", err, tt.wantErr)
			}

			if got := strings.Contains(out.String(), "<CHAPTER 1>"); got != tt.wantHelp {
				t.Errorf("markup help shown = %v, want %v", got, tt.wantHelp)
			}

			// Nothing is written when something fails
			if _, err := os.Stat(filepath.Join(dir, "index.html")); !os.IsNotExist(err) {
				t.Errorf("index written despite the error")
			}
		})
	}
}

func TestResolveSettings(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cfgWPM int
		flag   int
		want   int
	}{
		{name: "config", cfgWPM: 250, want: 250},
		{name: "header over config", header: "---\nwpm: 300\n---\n", cfgWPM: 250, want: 300},
		{name: "flag over header", header: "---\nwpm: 300\n---\n", cfgWPM: 250, flag: 100, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := story.Parse([]byte(tt.header + "<CHAPTER 1>\ntext\n"))
			if err != nil {
				t.Fatal(err)
			}
			cfg := config.DefaultConfig()
			cfg.WordsPerMinute = tt.cfgWPM

			s, err := resolveSettings(runOptions{wpm: tt.flag, output: "out"}, cfg, book)
			if err != nil {
				t.Fatal(err)
			}
			if s.wpm != tt.want {
				t.Errorf("wpm = %d, want %d", s.wpm, tt.want)
			}
			if s.output != "out" {
				t.Errorf("output = %q, want %q", s.output, "out")
			}
			if s.title != cfg.Title {
				t.Errorf("title = %q, want %q", s.title, cfg.Title)
			}
		})
	}
}

func TestProcessWatch(t *testing.T) {
	dir, opts := setup(t, manuscript, "")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	if err := processWatch(ctx, opts, &out, zap.NewNop().Sugar()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		t.Errorf("index not written in watch mode: %v", err)
	}
	if n := strings.Count(out.String(), "Processing"); n != 1 {
		t.Errorf("processed %d times, want 1", n)
	}
}

func TestReportError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	reportError(zap.New(core).Sugar(), &story.ChapterNotFoundError{Number: 9})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("%d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["chapter"] != int64(9) {
		t.Errorf("chapter field = %v", fields["chapter"])
	}
	if got, ok := fields["error"].(string); !ok || got != "chapter 9 not found" {
		t.Errorf("error field = %v", fields["error"])
	}
}
