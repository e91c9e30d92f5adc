package heuristics

import (
	"strings"
	"testing"
)

func TestTransitionCount(t *testing.T) {
	text := "It is important to note that it is important to note that it is important to note this."
	if got := TransitionCount(text); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	if got := TransitionCount(""); got != 0 {
		t.Errorf("empty: got %d, want 0", got)
	}
}

func TestHedgeCount(t *testing.T) {
	text := "It can be argued that the policy failed. Arguably, it seems that nothing changed."
	if got := HedgeCount(text); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestInflatedWords(t *testing.T) {
	text := "We must utilize every resource in order to facilitate progress."
	found := InflatedWords(text)
	if len(found) != 3 {
		t.Fatalf("got %d entries, want 3: %v", len(found), found)
	}
	if found[0] != "utilize (vs use)" {
		t.Errorf("unexpected first entry: %q", found[0])
	}
}

func TestPassiveCount(t *testing.T) {
	text := "The report was completed on time. Mistakes could be avoided."
	if got := PassiveCount(text); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestPersonalCount(t *testing.T) {
	text := "I think my results surprised us, growing up we never saw this."
	if got := PersonalCount(text); got < 4 {
		t.Errorf("got %d, want at least 4", got)
	}
	if got := PersonalCount("The subject completed the task."); got != 0 {
		t.Errorf("impersonal text: got %d, want 0", got)
	}
}

func TestParagraphUniformity(t *testing.T) {
	para := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}
	uniform := strings.Join([]string{para(50), para(52), para(51), para(49), para(50)}, "\n\n")
	if got := ParagraphUniformity(uniform); got <= 0.9 {
		t.Errorf("uniform paragraphs: got %f, want > 0.9", got)
	}

	varied := strings.Join([]string{para(10), para(120), para(35)}, "\n\n")
	if got := ParagraphUniformity(varied); got > 0.8 {
		t.Errorf("varied paragraphs: got %f, want <= 0.8", got)
	}

	if got := ParagraphUniformity(para(50) + "\n\n" + para(50)); got != 0 {
		t.Errorf("two paragraphs: got %f, want 0 (needs three)", got)
	}
	if got := ParagraphUniformity(""); got != 0 {
		t.Errorf("empty: got %f, want 0", got)
	}
}

func TestRepetitiveReasoning(t *testing.T) {
	repeated := strings.Repeat("The economy grows when people spend more money every single day. ", 6)
	if !RepetitiveReasoning(repeated) {
		t.Error("expected repetitive text to be flagged")
	}

	distinct := "Rivers carve valleys over geological time spans. " +
		"Birds migrate thousands of miles between continents every year. " +
		"Quantum computers exploit superposition to evaluate many states. " +
		"Medieval guilds regulated apprenticeships and craft standards closely. " +
		"Photosynthesis converts sunlight into chemical energy in plants. " +
		"Submarine cables carry nearly all intercontinental internet traffic."
	if RepetitiveReasoning(distinct) {
		t.Error("distinct sentences should not be flagged")
	}

	if RepetitiveReasoning("Too few sentences here. Only two of them.") {
		t.Error("fewer than five qualifying sentences should never flag")
	}
}

func TestCopyPasteIndicators(t *testing.T) {
	text := "Some  text with doubled spaces.\n\n\n\nAnd excessive breaks."
	got := CopyPasteIndicators(text)
	if len(got) != 2 {
		t.Fatalf("got %v, want two indicators", got)
	}
	if got[0] != "Multiple consecutive spaces" || got[1] != "Excessive line breaks" {
		t.Errorf("unexpected order or content: %v", got)
	}
	if CopyPasteIndicators("clean text") != nil {
		t.Error("clean text should have no indicators")
	}
}

func TestSentenceCompleteness(t *testing.T) {
	polished := "This sentence contains more than eight words in total here. " +
		"Another complete sentence follows with plenty of additional words too."
	if got := SentenceCompleteness(polished); got != 1.0 {
		t.Errorf("got %f, want 1.0", got)
	}

	fragments := "quick note. second idea. maybe more."
	if got := SentenceCompleteness(fragments); got != 0.0 {
		t.Errorf("fragments: got %f, want 0", got)
	}

	if got := SentenceCompleteness(""); got != 0.0 {
		t.Errorf("empty: got %f, want 0", got)
	}
}

func TestIsGenericFilename(t *testing.T) {
	generic := []string{"untitled1.docx", "document.pdf", "copy of essay.docx", "download3.txt"}
	for _, name := range generic {
		if !IsGenericFilename(name) {
			t.Errorf("%q should be generic", name)
		}
	}
	if IsGenericFilename("smith_week3_reflection.docx") || IsGenericFilename("") {
		t.Error("named files and empty names are not generic")
	}
}

func TestCheckWhiteTextKeywords(t *testing.T) {
	text := "The essay must mention a purple elephant and a golden compass somewhere."
	report := CheckWhiteTextKeywords(text, []string{"purple elephant", "golden compass", "silver key"})
	if len(report.Found) != 2 || len(report.Missing) != 1 {
		t.Fatalf("found=%v missing=%v", report.Found, report.Missing)
	}
	if len(report.Flags) != 2 {
		t.Fatalf("expected detection flag plus medium-confidence flag, got %v", report.Flags)
	}

	empty := CheckWhiteTextKeywords("", []string{"anything"})
	if len(empty.Flags) != 0 || empty.Score != 0 {
		t.Error("empty text should produce an empty report")
	}
}
