// Package textmetrics provides the low-level text measurements the heuristic
// checks are built on. All functions are pure and never fail on empty input.
package textmetrics

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// WordCount counts whitespace-separated tokens. Empty input counts zero.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// RawSentenceCount counts terminator-separated fragments without dropping
// empty ones, so trailing terminators still contribute a fragment. The
// passive-voice ratio uses this as its denominator.
func RawSentenceCount(text string) int {
	if text == "" {
		return 0
	}
	return len(sentenceSplitRe.Split(text, -1))
}

// SplitSentences splits on runs of sentence terminators, trimming and
// dropping empty fragments.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	parts := sentenceSplitRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitParagraphs splits on blank-line boundaries. When the text has no
// blank-line structure at all it falls back to single newlines, keeping only
// lines longer than minFallbackLen so note-style fragments don't count as
// paragraphs.
func SplitParagraphs(text string, minFallbackLen int) []string {
	paras := splitNonEmpty(text, "\n\n")
	if len(paras) >= 2 {
		return paras
	}
	fallback := make([]string, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) > minFallbackLen {
			fallback = append(fallback, line)
		}
	}
	return fallback
}

// BlankLineParagraphs splits strictly on blank lines with no fallback.
func BlankLineParagraphs(text string) []string {
	return splitNonEmpty(text, "\n\n")
}

func splitNonEmpty(text, sep string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CountPatternMatches sums case-insensitive match counts across all patterns.
// Patterns must be pre-compiled with the (?i) flag where needed.
func CountPatternMatches(text string, patterns []*regexp.Regexp) int {
	if text == "" {
		return 0
	}
	count := 0
	for _, re := range patterns {
		count += len(re.FindAllStringIndex(text, -1))
	}
	return count
}

// CountPhraseOccurrences sums lowercase substring occurrence counts of each
// phrase in the text.
func CountPhraseOccurrences(text string, phrases []string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	count := 0
	for _, p := range phrases {
		count += strings.Count(lower, p)
	}
	return count
}

// StripHTML removes tags and collapses whitespace. Canvas bodies arrive as
// HTML fragments.
func StripHTML(text string) string {
	text = htmlTagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Mean of integer samples; 0 for an empty slice.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// StdDev is the population standard deviation; 0 for fewer than two samples.
func StdDev(values []int) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// CoefficientOfVariation is stddev/mean; 0 when the mean is zero.
func CoefficientOfVariation(values []int) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}

// ParagraphWordCounts maps paragraphs to their word counts.
func ParagraphWordCounts(paragraphs []string) []int {
	counts := make([]int, len(paragraphs))
	for i, p := range paragraphs {
		counts[i] = WordCount(p)
	}
	return counts
}

// StartsUpper reports whether the first rune of s is an uppercase letter.
func StartsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
