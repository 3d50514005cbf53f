// Package segment turns raw document text into ordered units for checking.
package segment

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/originality/internal/model"
)

// Sentence delimiters. The newline is inert after Normalize and only matters for
// callers that split pre-marked text directly.
const sentenceDelimiters = ".?\n"

const wordSeparator = " "

var multiSpace = regexp.MustCompile(`[ ]{2,}`)

// Options tunes the segmentation thresholds
type Options struct {
	MinLength  int // Minimum fragment length in characters (full sentence)
	MinWords   int // Minimum space-delimited tokens (full sentence)
	WindowSize int // Tokens per unit (fixed window)
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		MinLength:  10,
		MinWords:   5,
		WindowSize: 10,
	}
}

// OptionsFromConfig builds options from configuration, falling back to defaults
func OptionsFromConfig(cfg model.SegmentConfig) Options {
	opts := DefaultOptions()
	if cfg.MinLength > 0 {
		opts.MinLength = cfg.MinLength
	}
	if cfg.MinWords > 0 {
		opts.MinWords = cfg.MinWords
	}
	if cfg.WindowSize > 0 {
		opts.WindowSize = cfg.WindowSize
	}
	return opts
}

// Segment splits a document into units using the given strategy
func Segment(text string, strategy model.Strategy, opts Options) ([]model.Unit, error) {
	switch strategy {
	case model.StrategyFullSentence:
		return FullSentence(text, opts), nil
	case model.StrategyFixedWindow:
		return FixedWindow(text, opts), nil
	default:
		return nil, fmt.Errorf("segment: %w: %q", model.ErrUnknownStrategy, strategy)
	}
}

// Normalize turns line breaks into spaces and collapses runs of spaces
func Normalize(text string) string {
	text = strings.NewReplacer("\n", wordSeparator, "\r", wordSeparator).Replace(text)
	return multiSpace.ReplaceAllString(text, wordSeparator)
}

// FullSentence splits on sentence delimiters and keeps fragments that are long
// enough and have enough words
func FullSentence(text string, opts Options) []model.Unit {
	fragments := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return strings.ContainsRune(sentenceDelimiters, r)
	})

	units := make([]model.Unit, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.Trim(fragment, wordSeparator)
		if utf8.RuneCountInString(fragment) < opts.MinLength {
			continue
		}
		if len(strings.Split(fragment, wordSeparator)) < opts.MinWords {
			continue
		}
		units = append(units, model.Unit{Index: len(units), Text: fragment})
	}

	return units
}

// FixedWindow groups tokens into windows of opts.WindowSize, the last one possibly shorter
func FixedWindow(text string, opts Options) []model.Unit {
	normalized := strings.Trim(Normalize(text), wordSeparator)
	if normalized == "" {
		return []model.Unit{}
	}

	size := opts.WindowSize
	if size <= 0 {
		size = DefaultOptions().WindowSize
	}

	words := strings.Split(normalized, wordSeparator)
	units := make([]model.Unit, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		units = append(units, model.Unit{
			Index: len(units),
			Text:  strings.Join(words[start:end], wordSeparator),
		})
	}

	return units
}

// Tokens returns the space-delimited tokens of a unit
func Tokens(u model.Unit) []string {
	if u.Text == "" {
		return nil
	}
	return strings.Split(u.Text, wordSeparator)
}
