// Package heuristics contains the hand-authored linguistic and structural
// checks behind the integrity flags. Every function is pure, degrades to a
// zero result on empty input and never fails.
package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/similarity"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

// TransitionCount counts clichéd transitions and meta-commentary.
func TransitionCount(text string) int {
	return textmetrics.CountPhraseOccurrences(text, AITransitions)
}

// HedgeCount counts hedge phrases.
func HedgeCount(text string) int {
	return textmetrics.CountPhraseOccurrences(text, HedgePhrases)
}

// InflatedWords returns "complex (vs simple)" entries for every inflated
// vocabulary pair found in the text.
func InflatedWords(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var found []string
	for _, pair := range InflatedVocab {
		if strings.Contains(lower, pair.Complex) {
			found = append(found, fmt.Sprintf("%s (vs %s)", pair.Complex, pair.Simple))
		}
	}
	return found
}

// GenericCount counts generic or vague phrases.
func GenericCount(text string) int {
	return textmetrics.CountPhraseOccurrences(text, GenericPhrases)
}

// BalanceCount counts false-equivalence markers.
func BalanceCount(text string) int {
	return textmetrics.CountPhraseOccurrences(text, BalanceMarkers)
}

// PassiveCount counts passive-voice constructions.
func PassiveCount(text string) int {
	return textmetrics.CountPatternMatches(text, PassivePatterns)
}

// PersonalCount counts first-person and embodied language markers.
func PersonalCount(text string) int {
	if text == "" {
		return 0
	}
	return textmetrics.CountPatternMatches(strings.ToLower(text), PersonalMarkers)
}

// EmotionalCount counts emotional and vulnerable language markers.
func EmotionalCount(text string) int {
	return textmetrics.CountPhraseOccurrences(text, EmotionalMarkers)
}

// ParagraphUniformity scores how mechanically even the paragraph lengths
// are: 1 - CV when CV < 1, else 0. Needs at least three blank-line
// paragraphs; anything less scores 0.
func ParagraphUniformity(text string) float64 {
	paragraphs := textmetrics.BlankLineParagraphs(text)
	if len(paragraphs) < 3 {
		return 0.0
	}
	counts := textmetrics.ParagraphWordCounts(paragraphs)
	if textmetrics.Mean(counts) == 0 {
		return 0.0
	}
	cv := textmetrics.CoefficientOfVariation(counts)
	if cv < 1 {
		return 1 - cv
	}
	return 0.0
}

// RepetitiveReasoning reports circular reasoning: among sentences longer than
// 20 characters (at least five required), more than 20% of all pairs exceed
// 0.7 Jaccard similarity. Quadratic in sentence count, fine at essay scale.
func RepetitiveReasoning(text string) bool {
	if text == "" {
		return false
	}

	var sentences []string
	for _, s := range textmetrics.SplitSentences(text) {
		if len(s) > 20 {
			sentences = append(sentences, strings.ToLower(s))
		}
	}
	if len(sentences) < 5 {
		return false
	}

	similarPairs := 0
	for i := 0; i < len(sentences)-1; i++ {
		for j := i + 1; j < len(sentences); j++ {
			if similarity.Jaccard(sentences[i], sentences[j]) > 0.7 {
				similarPairs++
			}
		}
	}

	totalPairs := len(sentences) * (len(sentences) - 1) / 2
	if totalPairs == 0 {
		return false
	}
	return float64(similarPairs)/float64(totalPairs) > 0.2
}

var (
	multiSpaceRe  = regexp.MustCompile(`  +`)
	lineBreakRe   = regexp.MustCompile(`\n{3,}`)
	specialCharRe = regexp.MustCompile("\x00|\x0c|\ufeff")
)

// CopyPasteIndicators lists formatting artifacts that typically survive a
// paste from another document.
func CopyPasteIndicators(text string) []string {
	if text == "" {
		return nil
	}

	var indicators []string
	if multiSpaceRe.MatchString(text) {
		indicators = append(indicators, "Multiple consecutive spaces")
	}
	if lineBreakRe.MatchString(text) {
		indicators = append(indicators, "Excessive line breaks")
	}
	if strings.Contains(text, "\t") && strings.Contains(text, "    ") {
		indicators = append(indicators, "Mixed tab/space formatting")
	}
	if specialCharRe.MatchString(text) {
		indicators = append(indicators, "Special formatting characters")
	}
	return indicators
}

// SentenceCompleteness is the ratio of sentences that look fully formed:
// at least eight words and starting with an uppercase letter.
func SentenceCompleteness(text string) float64 {
	sentences := textmetrics.SplitSentences(text)
	if len(sentences) == 0 {
		return 0.0
	}
	complete := 0
	for _, s := range sentences {
		if textmetrics.WordCount(s) >= 8 && textmetrics.StartsUpper(s) {
			complete++
		}
	}
	return float64(complete) / float64(len(sentences))
}

// IsGenericFilename reports whether the filename matches a pattern that
// suggests the student never named the file.
func IsGenericFilename(filename string) bool {
	if filename == "" {
		return false
	}
	lower := strings.ToLower(filename)
	for _, re := range GenericFilenames {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// WhiteTextReport is the outcome of scanning for hidden-prompt keywords.
// Instructors can embed instructions in white text that an AI pasting the
// prompt would follow but a student reading the page would never see.
type WhiteTextReport struct {
	Flags   []string
	Found   []string
	Missing []string
	Score   float64
}

func CheckWhiteTextKeywords(text string, keywords []string) WhiteTextReport {
	var report WhiteTextReport
	if text == "" || len(keywords) == 0 {
		return report
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.TrimSpace(strings.ToLower(kw))) {
			report.Found = append(report.Found, kw)
		} else {
			report.Missing = append(report.Missing, kw)
		}
	}

	report.Score = float64(len(report.Found)) / float64(len(keywords))
	if len(report.Found) > 0 {
		report.Flags = append(report.Flags,
			fmt.Sprintf("White text keywords detected: %s", strings.Join(report.Found, ", ")))
		switch {
		case report.Score >= 0.8:
			report.Flags = append(report.Flags,
				"HIGH CONFIDENCE: Most/all white text keywords present - likely AI-generated from prompt")
		case report.Score >= 0.5:
			report.Flags = append(report.Flags,
				"MEDIUM CONFIDENCE: Multiple white text keywords found")
		}
	}
	return report
}
