package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

// StructureReport carries the flag messages a structural check produced.
// Messages are appended to the submission's flag list in order.
type StructureReport struct {
	Flags []string
}

var introPatterns = []*regexp.Regexp{
	regexp.MustCompile(`this essay will (explore|examine|discuss|analyze|argue)`),
	regexp.MustCompile(`in this (essay|paper|analysis|discussion)`),
	regexp.MustCompile(`the purpose of this (essay|paper)`),
	regexp.MustCompile(`this (paper|essay) aims to`),
	regexp.MustCompile(`throughout this (essay|paper)`),
	regexp.MustCompile(`the following (essay|paper|analysis) will`),
}

var conclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`in conclusion,?\s*(it is clear|we can see|this essay has)`),
	regexp.MustCompile(`to (sum up|summarize|conclude),?\s*(the|this|it)`),
	regexp.MustCompile(`all (things considered|in all)`),
	regexp.MustCompile(`in (summary|closing),?\s*(this|the|it)`),
	regexp.MustCompile(`as (this essay|we) have (shown|seen|demonstrated|discussed)`),
	regexp.MustCompile(`the (foregoing|preceding|above) (discussion|analysis|examination)`),
}

var transitionStarters = []string{
	"first", "second", "third", "additionally", "furthermore",
	"moreover", "however", "in addition", "another", "finally",
	"next", "then", "also", "similarly", "consequently",
}

var topicSentenceRe = regexp.MustCompile(`^[a-z]+ (is|are|was|were|has|have|can|should|must|will)`)

// EssayOrganization looks for organizational patterns typical of generated
// essays: formulaic openings and closings, the classic five-paragraph shape,
// mechanically uniform paragraphs and formula-driven body paragraphs. Texts
// under 200 characters are too short to judge.
func EssayOrganization(text string) StructureReport {
	var report StructureReport
	if len(text) < 200 {
		return report
	}

	paragraphs := textmetrics.SplitParagraphs(text, 50)

	if len(paragraphs) > 0 {
		firstPara := strings.ToLower(paragraphs[0])
		for _, re := range introPatterns {
			if re.MatchString(firstPara) {
				report.Flags = append(report.Flags, "Formulaic AI-style introduction")
				break
			}
		}
	}

	if len(paragraphs) > 1 {
		lastPara := strings.ToLower(paragraphs[len(paragraphs)-1])
		for _, re := range conclusionPatterns {
			if re.MatchString(lastPara) {
				report.Flags = append(report.Flags, "Formulaic AI-style conclusion")
				break
			}
		}
	}

	if len(paragraphs) == 5 {
		wc := textmetrics.ParagraphWordCounts(paragraphs)
		if wc[0] < wc[2] && wc[4] < wc[2] &&
			abs(wc[1]-wc[2]) < 30 && abs(wc[2]-wc[3]) < 30 {
			report.Flags = append(report.Flags, "Classic 5-paragraph essay structure (common in AI)")
		}
	}

	if len(paragraphs) >= 3 {
		wc := textmetrics.ParagraphWordCounts(paragraphs)
		avg := textmetrics.Mean(wc)
		if avg > 30 {
			cv := textmetrics.CoefficientOfVariation(wc)
			if cv < 0.15 {
				report.Flags = append(report.Flags,
					fmt.Sprintf("Suspiciously uniform paragraph lengths (CV: %.2f)", cv))
			}
		}
	}

	if len(paragraphs) >= 3 {
		transitionStarts := 0
		topicSentences := 0
		for _, para := range paragraphs[1 : len(paragraphs)-1] {
			firstSentence := strings.ToLower(strings.SplitN(para, ".", 2)[0])
			for _, starter := range transitionStarters {
				if strings.HasPrefix(firstSentence, starter) {
					transitionStarts++
					break
				}
			}
			if topicSentenceRe.MatchString(firstSentence) {
				topicSentences++
			}
		}
		bodyCount := len(paragraphs) - 2
		if bodyCount > 0 {
			if float64(transitionStarts)/float64(bodyCount) > 0.6 {
				report.Flags = append(report.Flags, "Most body paragraphs start with transitions (mechanical)")
			}
			if float64(topicSentences)/float64(bodyCount) > 0.8 {
				report.Flags = append(report.Flags, "Every paragraph follows topic-sentence formula")
			}
		}
	}

	return report
}

var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#{1,3}\s+.+$`),
	regexp.MustCompile(`^[A-Z][^.!?]*:$`),
	regexp.MustCompile(`^\*\*[^*]+\*\*$`),
	regexp.MustCompile(`^[IVX]+\.\s+[A-Z]`),
	regexp.MustCompile(`^\d+\.\s+[A-Z][^.!?]{5,}$`),
	regexp.MustCompile(`^[A-Z][a-z]+(\s+[A-Z][a-z]+){1,5}$`),
}

var aiHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`introduction`),
	regexp.MustCompile(`background`),
	regexp.MustCompile(`overview`),
	regexp.MustCompile(`main\s*(body|points?|arguments?)`),
	regexp.MustCompile(`(key\s*)?(points?|findings?|takeaways?)`),
	regexp.MustCompile(`(analysis|discussion)`),
	regexp.MustCompile(`conclusion`),
	regexp.MustCompile(`(final\s*)?thoughts?`),
	regexp.MustCompile(`summary`),
}

var numberedHeadingRe = regexp.MustCompile(`^\d+\.?\s`)

// HeadingStructure flags heading schemes typical of generated documents:
// three or more headings where at least two carry generic AI-style names, or
// three or more numbered section headings.
func HeadingStructure(text string) StructureReport {
	var report StructureReport
	if text == "" {
		return report
	}

	var headings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range headingPatterns {
			if re.MatchString(line) {
				headings = append(headings, line)
				break
			}
		}
	}

	if len(headings) < 3 {
		return report
	}

	aiStyle := 0
	for _, h := range headings {
		lower := strings.ToLower(h)
		for _, re := range aiHeadingPatterns {
			if re.MatchString(lower) {
				aiStyle++
				break
			}
		}
	}
	if aiStyle >= 2 {
		report.Flags = append(report.Flags,
			fmt.Sprintf("AI-typical heading structure (%d generic headings)", aiStyle))
	}

	numbered := 0
	for _, h := range headings {
		if numberedHeadingRe.MatchString(h) {
			numbered++
		}
	}
	if numbered >= 3 {
		report.Flags = append(report.Flags, "Numbered section headings (common in AI output)")
	}

	return report
}

var bulletLineRe = regexp.MustCompile(`^[\-\*•◦▪]\s|^\d+[\.\)]\s|^[a-z][\.\)]\s`)

var proseTransitions = []string{
	"however", "therefore", "furthermore", "additionally",
	"moreover", "consequently", "thus", "hence",
}

// ProseInNotes checks whether a submission that should be informal notes is
// really polished prose. Two of four indicators flag it; three make it
// strong evidence.
func ProseInNotes(text string) StructureReport {
	var report StructureReport
	if text == "" {
		return report
	}

	paragraphs := textmetrics.BlankLineParagraphs(text)
	if len(paragraphs) == 0 {
		paragraphs = textmetrics.SplitParagraphs(text, 0)
	}

	indicators := 0

	longParagraphs := 0
	for _, p := range paragraphs {
		if textmetrics.WordCount(p) > 40 {
			longParagraphs++
		}
	}
	if longParagraphs >= 2 {
		indicators++
	}

	bulleted := 0
	totalLines := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		totalLines++
		if bulletLineRe.MatchString(line) {
			bulleted++
		}
	}
	if totalLines > 5 && float64(bulleted)/float64(totalLines) < 0.2 {
		indicators++
	}

	if textmetrics.CountPhraseOccurrences(text, proseTransitions) >= 3 {
		indicators++
	}

	if SentenceCompleteness(text) > 0.6 {
		indicators++
	}

	if indicators >= 2 {
		report.Flags = append(report.Flags,
			fmt.Sprintf("Submission appears to be prose, not notes/outline (indicators: %d)", indicators))
	}
	if indicators >= 3 {
		report.Flags = append(report.Flags, "Strong evidence: Polished prose submitted as 'notes'")
	}

	return report
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
