// Package config loads the site configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/hesusruiz/htmlizer/story"
)

// DefaultFileName is looked for in the current directory when no config file is given
const DefaultFileName = "htmlizer.yaml"

// MaxInputSize limits the size of the config file
const MaxInputSize = 1 << 20

var (
	ErrConfigNotFound        = errors.New("config file not found")
	ErrConfigParse           = errors.New("failed to parse config")
	ErrInputTooLarge         = errors.New("config file exceeds maximum size")
	ErrInvalidWordsPerMinute = errors.New("invalid words per minute")
	ErrInvalidChapterNumber  = errors.New("invalid chapter number")
)

// Config holds the site configuration.
type Config struct {
	// Title of the story, used in page titles and the index
	Title string `yaml:"title"`

	// WordsPerMinute is the reading speed for the reading time estimates
	WordsPerMinute int `yaml:"wpm"`

	// Strict makes a repeated chapter number in the manuscript an error
	Strict bool `yaml:"strict"`

	// Output is the directory for chapter pages
	Output string `yaml:"output"`

	// Index is the path of the generated index page
	Index string `yaml:"index"`

	Templates TemplatesConfig `yaml:"templates"`

	// Chapters is the static metadata table. Boundary tags in the manuscript win over it.
	Chapters map[int]story.Meta `yaml:"chapters"`
}

// TemplatesConfig holds the paths of the page templates, empty for the built-in ones
type TemplatesConfig struct {
	Page  string `yaml:"page"`
	Index string `yaml:"index"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Title:          "DOUG",
		WordsPerMinute: story.DefaultWordsPerMinute,
		Output:         "chapters",
		Index:          "index.html",
		Chapters:       map[int]story.Meta{},
	}
}

// Validate checks the values which can not be fixed with a default
func (c *Config) Validate() error {
	if c.WordsPerMinute <= 0 {
		return fmt.Errorf("%w: wpm must be positive, got %d", ErrInvalidWordsPerMinute, c.WordsPerMinute)
	}
	for num := range c.Chapters {
		if num <= 0 {
			return fmt.Errorf("%w: chapters.%d", ErrInvalidChapterNumber, num)
		}
	}
	return nil
}

// Parse decodes config data over the defaults. Unknown fields are rejected so that
// typos do not go unnoticed.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}

	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if cfg.Chapters == nil {
		cfg.Chapters = map[int]story.Meta{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads the config file at path. An empty path looks for DefaultFileName in the
// current directory and returns the defaults if it does not exist.
// Relative paths in the file are resolved against the directory of the file.
func Load(path string) (*Config, error) {
	explicit := len(path) > 0
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if !explicit {
				return DefaultConfig(), nil
			}
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if len(p) == 0 || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Output = resolve(c.Output)
	c.Index = resolve(c.Index)
	c.Templates.Page = resolve(c.Templates.Page)
	c.Templates.Index = resolve(c.Templates.Index)
}
