package corpus

import (
	"fmt"
	"strings"
	"testing"
)

// wordText builds n distinct space-separated words with the given prefix.
func wordText(prefix string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s%d ", prefix, i)
	}
	return strings.TrimSpace(sb.String())
}

func TestSelfPlagiarismDetected(t *testing.T) {
	// 54 shared tokens out of a 66-token union: Jaccard ~0.82.
	text1 := wordText("w", 60)
	text2 := wordText("w", 54) + " " + wordText("v", 6)

	result := Analyze([]Entry{
		{UserID: 7, AssignmentID: 1, Assignment: "Essay 1", Text: text1},
		{UserID: 7, AssignmentID: 2, Assignment: "Essay 2", Text: text2},
	})

	matches, ok := result.SelfPlagiarism[7]
	if !ok || len(matches) != 1 {
		t.Fatalf("expected one self-plagiarism match for user 7, got %v", result.SelfPlagiarism)
	}
	m := matches[0]
	if m.Similarity < SelfPlagiarismThreshold {
		t.Errorf("similarity %.2f below threshold", m.Similarity)
	}
	if m.Assignment1ID == m.Assignment2ID {
		t.Errorf("match must span two assignments: %+v", m)
	}
}

func TestShortSubmissionsExemptFromCorpus(t *testing.T) {
	short := wordText("w", 10)
	result := Analyze([]Entry{
		{UserID: 8, AssignmentID: 1, Text: short},
		{UserID: 8, AssignmentID: 2, Text: short},
	})
	if _, ok := result.SelfPlagiarism[8]; ok {
		t.Fatal("submissions of 50 words or fewer must be skipped even when identical")
	}
}

func TestSelfPlagiarismIgnoresSameAssignment(t *testing.T) {
	text := wordText("w", 60)
	matches := SelfPlagiarism([]Entry{
		{UserID: 7, AssignmentID: 1, Text: text},
		{UserID: 7, AssignmentID: 1, Text: text},
	})
	if len(matches) != 0 {
		t.Fatalf("resubmissions to the same assignment are not self-plagiarism: %v", matches)
	}
}

func TestCrossStudentDetected(t *testing.T) {
	text := wordText("w", 60)
	matches := CrossStudent([]Entry{
		{UserID: 1, AssignmentID: 10, Assignment: "Essay", StudentName: "Alice Mason", Text: text},
		{UserID: 2, AssignmentID: 20, Assignment: "Reflection", StudentName: "Bob Reyes", Text: text},
	})
	if len(matches) != 1 {
		t.Fatalf("expected one cross-student match, got %v", matches)
	}
	if matches[0].Student1 != "Alice Mason" || matches[0].Student2 != "Bob Reyes" {
		t.Errorf("wrong pair: %+v", matches[0])
	}
	if matches[0].Similarity != 1.0 {
		t.Errorf("identical texts should score 1.0, got %.2f", matches[0].Similarity)
	}
}

func TestCrossStudentSkipsSameAssignment(t *testing.T) {
	// Same-assignment duplicates belong to the per-submission duplicate check.
	text := wordText("w", 60)
	matches := CrossStudent([]Entry{
		{UserID: 1, AssignmentID: 10, Text: text},
		{UserID: 2, AssignmentID: 10, Text: text},
	})
	if len(matches) != 0 {
		t.Fatalf("same-assignment pairs must be skipped, got %v", matches)
	}
}

func TestCrossStudentDeduplicatesPairs(t *testing.T) {
	text := wordText("w", 60)
	matches := CrossStudent([]Entry{
		{UserID: 1, AssignmentID: 10, Text: text},
		{UserID: 2, AssignmentID: 20, Text: text},
		{UserID: 2, AssignmentID: 20, Text: text},
	})
	if len(matches) != 1 {
		t.Fatalf("duplicate entries must not produce duplicate matches, got %d: %v", len(matches), matches)
	}
}

func TestPhraseOverlapExactMatch(t *testing.T) {
	shared := "the ancient library preserved thousands of handwritten manuscripts from medieval scholars."
	texts := map[int64]string{
		1: shared + " Nothing else matters here today.",
		2: shared + " Completely different additional commentary follows afterwards.",
	}
	names := map[int64]string{1: "Alice Mason", 2: "Bob Reyes"}

	matches := PhraseOverlap(texts, names, 0.6)
	if len(matches) != 1 {
		t.Fatalf("expected one phrase-overlap pair, got %v", matches)
	}
	m := matches[0]
	if m.Student1 != "Alice Mason" || m.Student2 != "Bob Reyes" {
		t.Errorf("wrong students: %+v", m)
	}
	if len(m.ExactMatches) == 0 {
		t.Error("shared sentence should produce exact phrase matches")
	}
	if len(m.ExactMatches) > 5 {
		t.Errorf("exact match sample must be capped at 5, got %d", len(m.ExactMatches))
	}
	if m.TotalMatches == 0 {
		t.Error("total match count should be positive")
	}
}

func TestPhraseOverlapSkipsShortTexts(t *testing.T) {
	texts := map[int64]string{
		1: "identical short line",
		2: "identical short line",
	}
	if matches := PhraseOverlap(texts, nil, 0.6); len(matches) != 0 {
		t.Fatalf("texts of 100 chars or fewer must be skipped, got %v", matches)
	}
}
