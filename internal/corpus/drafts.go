package corpus

import (
	"fmt"
	"strings"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/similarity"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

// DraftComparison scores how much revision happened between a rough draft
// and a final submission. RevisionScore runs 0-100, higher meaning more
// genuine revision.
type DraftComparison struct {
	Similarity         float64  `json:"similarity"`
	RevisionScore      int      `json:"revision_score"`
	SentencesAdded     int      `json:"sentences_added"`
	SentencesRemoved   int      `json:"sentences_removed"`
	SentencesUnchanged int      `json:"sentences_unchanged"`
	Flags              []string `json:"flags"`
}

// CompareDrafts compares a rough draft against the final text. Identical or
// near-identical drafts short-circuit with score 0.
func CompareDrafts(rough, final string) DraftComparison {
	cmp := DraftComparison{
		Similarity: similarity.Jaccard(rough, final),
	}

	if cmp.Similarity >= 0.98 {
		cmp.Flags = append(cmp.Flags, "CRITICAL: Drafts are essentially identical - no revision occurred")
		return cmp
	}
	if cmp.Similarity >= 0.95 {
		cmp.Flags = append(cmp.Flags, "Drafts are nearly identical (>95% similar) - minimal revision")
	}

	set1 := sentenceSet(rough)
	set2 := sentenceSet(final)
	union := make(map[string]bool, len(set1)+len(set2))
	for s := range set1 {
		union[s] = true
		if set2[s] {
			cmp.SentencesUnchanged++
		} else {
			cmp.SentencesRemoved++
		}
	}
	for s := range set2 {
		union[s] = true
		if !set1[s] {
			cmp.SentencesAdded++
		}
	}

	score := 0
	changeRatio := 0.0
	if len(union) > 0 {
		changeRatio = float64(cmp.SentencesAdded+cmp.SentencesRemoved) / float64(len(union))
	}
	switch {
	case changeRatio >= 0.3:
		score += 30
	case changeRatio >= 0.15:
		score += 20
	case changeRatio >= 0.05:
		score += 10
	default:
		cmp.Flags = append(cmp.Flags, "Very few sentence-level changes between drafts")
	}

	paras1 := textmetrics.BlankLineParagraphs(rough)
	paras2 := textmetrics.BlankLineParagraphs(final)
	if len(paras1) != len(paras2) {
		score += 10
	}

	newVocab := vocabularyGrowth(rough, final)
	switch {
	case newVocab >= 20:
		score += 20
	case newVocab >= 10:
		score += 10
	}

	// A fully regenerated text shares almost no words with the draft yet
	// often lands on the same paragraph skeleton.
	if cmp.Similarity < 0.5 && len(paras1) == len(paras2) && len(paras1) > 0 {
		if paragraphShapeSimilarity(paras1, paras2) > 0.7 {
			cmp.Flags = append(cmp.Flags,
				"Low text similarity but similar paragraph structure - possible AI regeneration")
		}
	}

	words1 := textmetrics.WordCount(rough)
	words2 := textmetrics.WordCount(final)
	if float64(words2) < float64(words1)*0.7 {
		cmp.Flags = append(cmp.Flags, "Final draft significantly shorter than rough draft - unusual")
	}

	if score > 100 {
		score = 100
	}
	cmp.RevisionScore = score
	if score < 20 {
		cmp.Flags = append(cmp.Flags, "Insufficient revision between drafts")
	}
	return cmp
}

func sentenceSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range textmetrics.SplitSentences(strings.ToLower(text)) {
		set[s] = true
	}
	return set
}

// vocabularyGrowth counts distinct substantive words (>4 chars) present in
// the final text but not the rough draft.
func vocabularyGrowth(rough, final string) int {
	old := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(rough)) {
		old[w] = true
	}
	seen := make(map[string]bool)
	count := 0
	for _, w := range strings.Fields(strings.ToLower(final)) {
		if len(w) > 4 && !old[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

// paragraphShapeSimilarity is the fraction of aligned paragraph pairs whose
// word counts differ by fewer than 10 words.
func paragraphShapeSimilarity(paras1, paras2 []string) float64 {
	if len(paras1) == 0 || len(paras1) != len(paras2) {
		return 0
	}
	near := 0
	for i := range paras1 {
		diff := textmetrics.WordCount(paras1[i]) - textmetrics.WordCount(paras2[i])
		if diff < 0 {
			diff = -diff
		}
		if diff < 10 {
			near++
		}
	}
	return float64(near) / float64(len(paras1))
}

// DraftReportLine renders one comparison for the console report.
func DraftReportLine(student string, cmp DraftComparison) string {
	return fmt.Sprintf("%s: similarity %.0f%%, revision score %d/100",
		student, cmp.Similarity*100, cmp.RevisionScore)
}
