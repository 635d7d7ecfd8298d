package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// unit is one boundary unit (paragraph, sentence, or word) as a half-open
// span into the original text. Consecutive units tile the text exactly:
// each unit carries its trailing separator, the first unit carries any
// leading whitespace, and unit.end always equals the next unit's start.
type unit struct {
	start int
	end   int
}

var (
	paragraphSep = regexp.MustCompile(`\n[ \t\r]*\n\s*`)
	sentenceEnd  = regexp.MustCompile(`[.!?]+[ \t\r\n]+`)
	wordSep      = regexp.MustCompile(`\s+`)
)

// segment splits text into boundary units for the given strategy. The
// strategy is assumed validated by New. Whitespace-only text yields no units.
func segment(text string, strategy Strategy) []unit {
	switch strategy {
	case StrategySentence:
		return splitAt(text, sentenceBoundaries(text))
	case StrategyWord:
		return splitAt(text, separatorBoundaries(text, wordSep))
	default:
		return splitAt(text, separatorBoundaries(text, paragraphSep))
	}
}

// separatorBoundaries returns the candidate cut positions after each
// separator match.
func separatorBoundaries(text string, sep *regexp.Regexp) []int {
	matches := sep.FindAllStringIndex(text, -1)
	cuts := make([]int, 0, len(matches))
	for _, m := range matches {
		cuts = append(cuts, m[1])
	}
	return cuts
}

// sentenceBoundaries returns cut positions after sentence-ending punctuation
// followed by whitespace, but only when the next rune starts a new sentence
// (an upper-case letter, optionally behind a quote). This mirrors the usual
// lookahead idiom; Go regexps have no lookahead, so the check is explicit.
func sentenceBoundaries(text string) []int {
	var cuts []int
	for _, m := range sentenceEnd.FindAllStringIndex(text, -1) {
		if startsSentence(text[m[1]:]) {
			cuts = append(cuts, m[1])
		}
	}
	return cuts
}

func startsSentence(rest string) bool {
	r, size := utf8.DecodeRuneInString(rest)
	if r == utf8.RuneError {
		return false
	}
	if r == '"' || r == '\'' || r == '“' || r == '‘' {
		r, _ = utf8.DecodeRuneInString(rest[size:])
	}
	return unicode.IsUpper(r)
}

// splitAt cuts text into tiling units at the given positions, skipping cuts
// that would produce a unit with no visible content (the whitespace is
// instead absorbed by the neighboring unit).
func splitAt(text string, cuts []int) []unit {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var units []unit
	prev := 0
	for _, cut := range cuts {
		if cut <= prev || cut >= len(text) {
			continue
		}
		if strings.TrimSpace(text[prev:cut]) == "" {
			// Separator run with nothing before it; fold into the next unit.
			continue
		}
		units = append(units, unit{start: prev, end: cut})
		prev = cut
	}

	if strings.TrimSpace(text[prev:]) != "" {
		units = append(units, unit{start: prev, end: len(text)})
	} else if len(units) > 0 {
		// Trailing whitespace belongs to the last unit so the spans still
		// tile the whole text.
		units[len(units)-1].end = len(text)
	}

	return units
}
