package heuristics

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEssayOrganizationFormulaicIntroAndConclusion(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("Supporting evidence sentence goes here with detail. ", 8))
	text := "This essay will explore the causes of the industrial revolution in depth.\n\n" +
		body + "\n\n" +
		"In conclusion, it is clear that the revolution reshaped society."
	report := EssayOrganization(text)
	if !containsFlag(report.Flags, "Formulaic AI-style introduction") {
		t.Errorf("missing intro flag: %v", report.Flags)
	}
	if !containsFlag(report.Flags, "Formulaic AI-style conclusion") {
		t.Errorf("missing conclusion flag: %v", report.Flags)
	}
}

func TestEssayOrganizationShortTextSkipped(t *testing.T) {
	if got := EssayOrganization("This essay will explore something."); len(got.Flags) != 0 {
		t.Errorf("short text should not be judged: %v", got.Flags)
	}
}

func TestEssayOrganizationUniformParagraphs(t *testing.T) {
	para := strings.TrimSpace(strings.Repeat("every paragraph has exactly the same number of words here now ", 4))
	text := strings.Join([]string{para, para, para, para}, "\n\n")
	report := EssayOrganization(text)
	found := false
	for _, f := range report.Flags {
		if strings.HasPrefix(f, "Suspiciously uniform paragraph lengths") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected uniform-length flag, got %v", report.Flags)
	}
}

func TestHeadingStructure(t *testing.T) {
	text := "Introduction:\n\nsome text here\n\nMain Points:\n\nmore text\n\nConclusion:\n\nfinal text"
	report := HeadingStructure(text)
	if len(report.Flags) == 0 {
		t.Fatal("expected AI-style heading flag")
	}

	numbered := "1. First Section Heading\ntext\n2. Second Section Heading\ntext\n3. Third Section Heading\ntext"
	report = HeadingStructure(numbered)
	if !containsFlag(report.Flags, "Numbered section headings (common in AI output)") {
		t.Errorf("expected numbered-headings flag, got %v", report.Flags)
	}

	if got := HeadingStructure("just a paragraph of plain prose without any headings at all"); len(got.Flags) != 0 {
		t.Errorf("plain prose should not flag: %v", got.Flags)
	}
}

func TestProseInNotes(t *testing.T) {
	para := "However, the evidence clearly demonstrates that sustained investment produces better outcomes over time. " +
		"Therefore, the committee should reconsider its funding priorities for the coming fiscal year. " +
		"Furthermore, these recommendations align with what similar institutions have already accomplished elsewhere."
	text := para + "\n\n" + para
	report := ProseInNotes(text)
	if len(report.Flags) == 0 {
		t.Fatal("polished prose submitted as notes should flag")
	}

	notes := "- idea one\n- maybe pivot\n- check sources\n- ask prof\n- due friday\n- cite later"
	if got := ProseInNotes(notes); len(got.Flags) != 0 {
		t.Errorf("bulleted fragments should not flag: %v", got.Flags)
	}
}

func TestBibliographicMarkersRoundYearsAndSurnames(t *testing.T) {
	text := "As shown by (Smith, 2020) and (Johnson, 2010), outcomes improved. " +
		"Later work (Davis, 2000) agreed with these findings."
	report := BibliographicMarkers(text)
	if len(report.Citations) != 3 {
		t.Fatalf("got %d citations, want 3: %v", len(report.Citations), report.Citations)
	}
	foundRound, foundCommon, foundMissing := false, false, false
	for _, f := range report.Flags {
		if strings.HasPrefix(f, "Suspicious: Many citations from round years") {
			foundRound = true
		}
		if strings.HasPrefix(f, "Multiple citations with very common author surnames") {
			foundCommon = true
		}
		if f == "In-text citations present but no References/Works Cited section" {
			foundMissing = true
		}
	}
	if !foundRound || !foundCommon || !foundMissing {
		t.Errorf("flags incomplete: %v", report.Flags)
	}
}

func TestBibliographicMarkersReferencesSectionSuppressesFlag(t *testing.T) {
	text := "Findings from (Nakamura, 2017), (Okafor, 2013) and (Lindqvist, 2019) converge.\n" +
		"References:\nNakamura, T. (2017). A study."
	report := BibliographicMarkers(text)
	for _, f := range report.Flags {
		if f == "In-text citations present but no References/Works Cited section" {
			t.Errorf("reference list present, flag should be suppressed: %v", report.Flags)
		}
	}
}

func TestBibliographicMarkersYearClustering(t *testing.T) {
	text := "Work by (Nakamura, 2019), (Okafor, 2019), (Lindqvist, 2019) and (Petrov, 2008) differs."
	report := BibliographicMarkers(text + "\nReferences:\nfull list")
	found := false
	for _, f := range report.Flags {
		if strings.HasPrefix(f, "Many citations clustered in 2019") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected clustering flag, got %v", report.Flags)
	}
}

type stubVerifier struct {
	verified map[string]bool
	err      error
}

func (s stubVerifier) Verify(_ context.Context, author, year string) (Verification, error) {
	if s.err != nil {
		return Verification{}, s.err
	}
	return Verification{Verified: s.verified[author+year]}, nil
}

func TestVerifyCitations(t *testing.T) {
	citations := []Citation{
		{Author: "Nakamura", Year: "2017"},
		{Author: "Nakamura", Year: "2017"}, // duplicate, checked once
		{Author: "Okafor", Year: "2013"},
	}
	verifier := stubVerifier{verified: map[string]bool{"Nakamura2017": true}}
	flags := VerifyCitations(context.Background(), verifier, citations)
	if len(flags) != 2 {
		t.Fatalf("got %v, want header plus one entry", flags)
	}
	if !strings.Contains(flags[1], "Okafor (2013)") {
		t.Errorf("unexpected entry: %q", flags[1])
	}
}

func TestVerifyCitationsDegradesOnError(t *testing.T) {
	verifier := stubVerifier{err: errors.New("network down")}
	flags := VerifyCitations(context.Background(), verifier, []Citation{{Author: "Okafor", Year: "2013"}})
	if flags != nil {
		t.Errorf("lookup errors must degrade to no flags, got %v", flags)
	}
}

func containsFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
