package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hesusruiz/htmlizer/config"
	"github.com/hesusruiz/htmlizer/site"
	"github.com/hesusruiz/htmlizer/story"
)

// Default input file name
const defaultInputFileName = "story.txt"

// How often the manuscript is checked for changes in watch mode
const watchInterval = 1 * time.Second

// runOptions are the command line settings. Zero values mean "not given".
type runOptions struct {
	input         string
	configPath    string
	chapter       int
	updateIndex   bool
	output        string
	pageTemplate  string
	indexTemplate string
	wpm           int
	strict        bool
	dryrun        bool
}

// settings are the values used for a run, after merging the command line,
// the manuscript header, the config file and the defaults, in that order of precedence.
type settings struct {
	title         string
	wpm           int
	output        string
	index         string
	pageTemplate  string
	indexTemplate string
}

func resolveSettings(opts runOptions, cfg *config.Config, book *story.Book) (settings, error) {
	s := settings{
		title:         book.Title(cfg.Title),
		output:        cfg.Output,
		index:         cfg.Index,
		pageTemplate:  cfg.Templates.Page,
		indexTemplate: cfg.Templates.Index,
	}

	wpm, err := book.WordsPerMinute(cfg.WordsPerMinute)
	if err != nil {
		return s, err
	}
	s.wpm = wpm

	if opts.wpm > 0 {
		s.wpm = opts.wpm
	}
	if len(opts.output) > 0 {
		s.output = opts.output
	}
	if len(opts.pageTemplate) > 0 {
		s.pageTemplate = opts.pageTemplate
	}
	if len(opts.indexTemplate) > 0 {
		s.indexTemplate = opts.indexTemplate
	}

	return s, nil
}

func loadTemplate(path string) (*site.Template, error) {
	if len(path) == 0 {
		return nil, nil
	}
	return site.LoadTemplate(path)
}

// printMarkupHelp shows what a manuscript is expected to look like
func printMarkupHelp(out io.Writer) {
	fmt.Fprintln(out, "  ✗ No chapters found in the manuscript")
	fmt.Fprintln(out, "    Expected chapter tags like:")
	fmt.Fprintln(out, "      <CHAPTER 1>")
	fmt.Fprintln(out, "      <CHAPTER 2;The Meeting;Doug meets his new boss.>")
}

// run processes the manuscript once: everything is rendered in memory and only
// written when all the pages are fine.
func run(opts runOptions, out io.Writer, sugar *zap.SugaredLogger) error {

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	book, err := story.ParseFile(opts.input,
		story.WithMetadata(cfg.Chapters),
		story.WithStrict(cfg.Strict || opts.strict),
		story.WithLogger(sugar),
	)
	if err != nil {
		return err
	}

	if book.Len() == 0 {
		printMarkupHelp(out)
		return story.ErrNoChapters
	}

	fmt.Fprintf(out, "  Found %d chapter(s): %s\n\n", book.Len(), joinNumbers(book.Numbers()))

	s, err := resolveSettings(opts, cfg, book)
	if err != nil {
		return err
	}

	pageTmpl, err := loadTemplate(s.pageTemplate)
	if err != nil {
		return err
	}
	indexTmpl, err := loadTemplate(s.indexTemplate)
	if err != nil {
		return err
	}

	outputs, err := site.Build(book, site.Options{
		Chapter:        opts.chapter,
		UpdateIndex:    opts.updateIndex,
		OutputDir:      s.output,
		IndexPath:      s.index,
		StoryTitle:     s.title,
		WordsPerMinute: s.wpm,
		PageTemplate:   pageTmpl,
		IndexTemplate:  indexTmpl,
		Log:            sugar,
	})
	if err != nil {
		var notFound *story.ChapterNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(out, "  ✗ Chapter %d not found\n", notFound.Number)
		}
		return err
	}

	w := site.NewWriter(opts.dryrun, sugar)
	if err := w.WriteAll(outputs); err != nil {
		return err
	}

	for _, o := range outputs {
		if o.Chapter == 0 {
			fmt.Fprintf(out, "  ✓ Updated %s with %d chapters\n", o.Path, book.Len())
			continue
		}
		fmt.Fprintf(out, "  ✓ Chapter %d: %s → %s\n", o.Chapter, o.Title, o.Path)
	}

	sugar.Debugw("run completed", "input", opts.input, "files", len(outputs), "dryrun", opts.dryrun)

	return nil
}

func joinNumbers(nums []int) string {
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, ", ")
}

// processWatch rebuilds whenever the manuscript is modified, until ctx is done.
// Errors in the manuscript are reported and the watch goes on, so they can be fixed.
func processWatch(ctx context.Context, opts runOptions, out io.Writer, sugar *zap.SugaredLogger) error {

	var oldTimestamp time.Time

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {

		// Get the modified timestamp of the input file
		info, err := os.Stat(opts.input)
		if err != nil {
			return err
		}
		currentTimestamp := info.ModTime()

		// If current modified timestamp is newer than the previous timestamp, process the file
		if oldTimestamp.Before(currentTimestamp) {
			oldTimestamp = currentTimestamp
			fmt.Fprintln(out, "************Processing*************")
			if err := run(opts, out, sugar); err != nil {
				sugar.Errorw("processing failed", "input", opts.input, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

	}
}

// reportError logs the error that ended the program
func reportError(sugar *zap.SugaredLogger, err error) {
	var notFound *story.ChapterNotFoundError
	if errors.As(err, &notFound) {
		sugar.Errorw("htmlizer failed", "error", err, "chapter", notFound.Number)
	} else {
		sugar.Errorw("htmlizer failed", "error", err)
	}
	_ = sugar.Sync()
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	opts := runOptions{
		input:         defaultInputFileName,
		configPath:    c.String("config"),
		chapter:       c.Int("chapter"),
		updateIndex:   c.Bool("update-index"),
		output:        c.String("output"),
		pageTemplate:  c.String("page-template"),
		indexTemplate: c.String("index-template"),
		wpm:           c.Int("wpm"),
		strict:        c.Bool("strict"),
		dryrun:        c.Bool("dryrun"),
	}

	if opts.chapter < 0 {
		return fmt.Errorf("invalid chapter number %d", opts.chapter)
	}
	if opts.wpm < 0 {
		return fmt.Errorf("%w: %d", config.ErrInvalidWordsPerMinute, opts.wpm)
	}

	var z *zap.Logger
	var err error

	// Setup the logging system
	if c.Bool("debug") {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	sugar := z.Sugar()
	defer sugar.Sync()

	// Get the input file name
	if c.Args().Present() {
		opts.input = c.Args().First()
	} else {
		fmt.Printf("no input file provided, using \"%v\"\n", opts.input)
	}

	fmt.Println()
	fmt.Println("🔥 DOUG HTMLizer - Converting stories to hellish HTML")
	fmt.Println()

	if opts.dryrun {
		fmt.Printf("dry run: processing %v without writing output\n", opts.input)
	}

	// This is useful for development.
	// If the user specified to watch, loop processing the input file when modified until interrupted
	if c.Bool("watch") {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return processWatch(ctx, opts, os.Stdout, sugar)
	}

	if err := run(opts, os.Stdout, sugar); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("✨ Done! Your souls are ready for deployment.")
	fmt.Println()

	return nil
}

func main() {

	app := &cli.App{
		Name:      "htmlizer",
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		Usage:     "convert a story manuscript into chapter pages and an index page",
		UsageText: "htmlizer [options] [MANUSCRIPT] (default manuscript is " + defaultInputFileName + ")",
		Action:    process,
		ArgsUsage: "MANUSCRIPT",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "chapter",
				Aliases: []string{"c"},
				Usage:   "process only chapter `NUMBER`",
			},
			&cli.BoolFlag{
				Name:    "update-index",
				Aliases: []string{"i"},
				Usage:   "also update the index page when processing a single chapter",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write chapter pages to `DIR` (default from the config file, or \"chapters\")",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "read site configuration from `FILE` (default " + config.DefaultFileName + " if present)",
			},
			&cli.StringFlag{
				Name:  "page-template",
				Usage: "use `FILE` as the chapter page template",
			},
			&cli.StringFlag{
				Name:  "index-template",
				Usage: "use `FILE` as the index page template",
			},
			&cli.IntFlag{
				Name:  "wpm",
				Usage: "reading speed in words per minute for the read time estimates",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail when a chapter number appears twice in the manuscript",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not write any file, just process the manuscript",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the manuscript for changes",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		z, zerr := zap.NewProduction()
		if zerr != nil {
			panic(err)
		}
		reportError(z.Sugar(), err)
		os.Exit(1)
	}

}
