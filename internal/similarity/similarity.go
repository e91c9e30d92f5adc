// Package similarity implements the token-set similarity measure and phrase
// extraction used for duplicate and plagiarism detection.
//
// Jaccard over word sets is a bag-of-words measure, not edit distance:
// word-order changes and paraphrasing reduce the detected similarity. That is
// an intentional simplification for essay-scale screening.
package similarity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

var punctRe = regexp.MustCompile(`[^\w\s]`)

// Jaccard returns intersection-over-union of the two texts' lowercase word
// sets. Equal texts (after trim/lowercase) score 1.0; an empty side scores
// 0.0. Symmetric and reflexive for non-empty input.
func Jaccard(text1, text2 string) float64 {
	if text1 == "" || text2 == "" {
		return 0.0
	}

	t1 := strings.ToLower(strings.TrimSpace(text1))
	t2 := strings.ToLower(strings.TrimSpace(text2))

	if t1 == t2 {
		return 1.0
	}

	words1 := tokenSet(t1)
	words2 := tokenSet(t2)

	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}

// ExtractKeyPhrases emits every lowercase sliding window of minWords to
// maxWords words per sentence, keeping only windows where at least
// minWords-1 words are longer than three characters. Pure function-word
// windows are filtered out this way.
func ExtractKeyPhrases(text string, minWords, maxWords int) []string {
	if text == "" {
		return nil
	}

	text = textmetrics.StripHTML(text)

	var phrases []string
	for _, sentence := range textmetrics.SplitSentences(text) {
		words := strings.Fields(sentence)
		if len(words) < minWords {
			continue
		}
		maxLen := maxWords
		if len(words) < maxLen {
			maxLen = len(words)
		}
		for length := minWords; length <= maxLen; length++ {
			for i := 0; i+length <= len(words); i++ {
				phrase := strings.ToLower(strings.Join(words[i:i+length], " "))
				content := 0
				for _, w := range strings.Fields(phrase) {
					if len(w) > 3 {
						content++
					}
				}
				if content >= minWords-1 {
					phrases = append(phrases, phrase)
				}
			}
		}
	}
	return phrases
}

// NormalizePhrase strips punctuation, lowercases and sorts the words so that
// reordered wordings of the same phrase compare equal.
func NormalizePhrase(phrase string) string {
	phrase = punctRe.ReplaceAllString(strings.ToLower(phrase), "")
	words := strings.Fields(phrase)
	sort.Strings(words)
	return strings.Join(words, " ")
}
