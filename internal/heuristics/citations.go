package heuristics

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Citation is one in-text reference extracted from a submission.
type Citation struct {
	Author string
	Year   string
}

// Verification is the outcome of an external citation lookup.
type Verification struct {
	Verified   bool
	Confidence string
	Source     string
	Title      string
}

// CitationVerifier resolves a citation against an external catalog. The
// deterministic text checks never require one; when absent, citations are
// simply unverifiable.
type CitationVerifier interface {
	Verify(ctx context.Context, author, year string) (Verification, error)
}

var (
	apaParenRe  = regexp.MustCompile(`\(([A-Z][a-z]+(?:\s+(?:&|and)\s+[A-Z][a-z]+)?(?:\s+et\s+al\.)?),?\s*(\d{4})\)`)
	apaNarrRe   = regexp.MustCompile(`([A-Z][a-z]+(?:\s+(?:&|and)\s+[A-Z][a-z]+)?(?:\s+et\s+al\.)?)\s*\((\d{4})\)`)
	referenceRe = regexp.MustCompile(`(references|works?\s+cited|bibliography)\s*[\n:]`)
)

var vagueCitationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`according to (?:research|studies|experts|scientists)`),
	regexp.MustCompile(`studies (?:show|suggest|indicate|have shown)`),
	regexp.MustCompile(`research (?:shows|suggests|indicates|has shown)`),
	regexp.MustCompile(`experts (?:say|believe|argue|suggest)`),
	regexp.MustCompile(`it has been (?:shown|proven|demonstrated|found)`),
}

// Surnames so common that repeated use in citations suggests fabrication.
var commonSurnames = map[string]bool{
	"smith": true, "johnson": true, "williams": true, "brown": true,
	"jones": true, "davis": true, "miller": true,
}

// ExtractCitations pulls APA-style in-text citations, keeping the first
// author's surname per citation.
func ExtractCitations(text string) []Citation {
	if text == "" {
		return nil
	}

	var citations []Citation
	for _, re := range []*regexp.Regexp{apaParenRe, apaNarrRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			author := strings.Fields(m[1])[0]
			author = strings.TrimSuffix(author, ",")
			citations = append(citations, Citation{Author: author, Year: m[2]})
		}
	}
	return citations
}

// BibReport is the outcome of the citation-plausibility checks.
type BibReport struct {
	Flags     []string
	Citations []Citation
}

// BibliographicMarkers checks in-text citations for patterns typical of
// fabricated sources: vague citation language, a glut of round publication
// years, repeated generic surnames, citations clustered in one year, and
// citations without any reference list.
func BibliographicMarkers(text string) BibReport {
	var report BibReport
	if text == "" {
		return report
	}

	lower := strings.ToLower(text)

	vagueCount := 0
	for _, re := range vagueCitationPatterns {
		vagueCount += len(re.FindAllStringIndex(lower, -1))
	}
	if vagueCount >= 3 {
		report.Flags = append(report.Flags,
			fmt.Sprintf("Vague citation language without specific sources (%d instances)", vagueCount))
	}

	citations := ExtractCitations(text)
	report.Citations = citations

	if len(citations) > 0 {
		roundYears := 0
		for _, c := range citations {
			if strings.HasSuffix(c.Year, "0") {
				roundYears++
			}
		}
		if len(citations) >= 3 && float64(roundYears)/float64(len(citations)) > 0.5 {
			report.Flags = append(report.Flags,
				fmt.Sprintf("Suspicious: Many citations from round years (%d/%d)", roundYears, len(citations)))
		}

		genericAuthors := 0
		for _, c := range citations {
			if commonSurnames[strings.ToLower(c.Author)] {
				genericAuthors++
			}
		}
		if genericAuthors >= 2 {
			report.Flags = append(report.Flags,
				fmt.Sprintf("Multiple citations with very common author surnames (%d)", genericAuthors))
		}

		yearCounts := make(map[string]int)
		for _, c := range citations {
			yearCounts[c.Year]++
		}
		topYear, topCount := "", 0
		for year, count := range yearCounts {
			if count > topCount {
				topYear, topCount = year, count
			}
		}
		if topCount >= 3 && float64(topCount)/float64(len(citations)) > 0.4 {
			report.Flags = append(report.Flags,
				fmt.Sprintf("Many citations clustered in %s (%d citations)", topYear, topCount))
		}
	}

	if len(citations) >= 3 && !referenceRe.MatchString(lower) {
		report.Flags = append(report.Flags,
			"In-text citations present but no References/Works Cited section")
	}

	return report
}

// VerifyCitations resolves deduplicated citations through the verifier and
// appends flags for the ones no catalog knows. Lookup failures degrade to
// unverifiable; they never abort the batch.
func VerifyCitations(ctx context.Context, verifier CitationVerifier, citations []Citation) []string {
	if verifier == nil || len(citations) == 0 {
		return nil
	}

	seen := make(map[Citation]bool)
	var notFound []Citation
	for _, c := range citations {
		if seen[c] {
			continue
		}
		seen[c] = true

		result, err := verifier.Verify(ctx, c.Author, c.Year)
		if err != nil {
			continue
		}
		if !result.Verified {
			notFound = append(notFound, c)
		}
	}

	if len(notFound) == 0 {
		return nil
	}

	flags := []string{fmt.Sprintf("%d citation(s) could not be verified:", len(notFound))}
	for i, c := range notFound {
		if i == 3 {
			flags = append(flags, fmt.Sprintf("   - ... and %d more", len(notFound)-3))
			break
		}
		flags = append(flags, fmt.Sprintf("   - %s (%s)", c.Author, c.Year))
	}
	return flags
}
