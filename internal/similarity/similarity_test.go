package similarity

import (
	"math"
	"testing"
)

func TestJaccardReflexive(t *testing.T) {
	texts := []string{
		"a single sentence",
		"The quick brown fox jumps over the lazy dog",
	}
	for _, text := range texts {
		if got := Jaccard(text, text); got != 1.0 {
			t.Errorf("Jaccard(x, x) = %f, want 1.0 for %q", got, text)
		}
	}
}

func TestJaccardEmpty(t *testing.T) {
	if got := Jaccard("", "anything"); got != 0.0 {
		t.Errorf("empty left: got %f, want 0", got)
	}
	if got := Jaccard("anything", ""); got != 0.0 {
		t.Errorf("empty right: got %f, want 0", got)
	}
	if got := Jaccard("", ""); got != 0.0 {
		t.Errorf("both empty: got %f, want 0", got)
	}
}

func TestJaccardSymmetric(t *testing.T) {
	a := "students write essays about history"
	b := "students write papers about science"
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("Jaccard must be symmetric")
	}
}

func TestJaccardOverlap(t *testing.T) {
	// sets: {a,b,c,d} and {c,d,e,f} -> 2/6
	got := Jaccard("a b c d", "c d e f")
	want := 2.0 / 6.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}
}

func TestJaccardCaseAndSpace(t *testing.T) {
	if got := Jaccard("  Hello World ", "hello world"); got != 1.0 {
		t.Errorf("trim/lowercase equal texts should score 1.0, got %f", got)
	}
}

func TestExtractKeyPhrases(t *testing.T) {
	text := "The committee reviewed numerous detailed proposals yesterday."
	phrases := ExtractKeyPhrases(text, 3, 8)
	if len(phrases) == 0 {
		t.Fatal("expected phrases from content-heavy sentence")
	}
	for _, p := range phrases {
		if p != lower(p) {
			t.Errorf("phrase not lowercased: %q", p)
		}
	}
}

func TestExtractKeyPhrasesFiltersFunctionWords(t *testing.T) {
	// All words are three characters or fewer, so no window can reach the
	// content-word minimum.
	phrases := ExtractKeyPhrases("it is in the of a to be or not", 3, 8)
	if len(phrases) != 0 {
		t.Errorf("expected no phrases, got %v", phrases)
	}
}

func TestExtractKeyPhrasesEmpty(t *testing.T) {
	if got := ExtractKeyPhrases("", 3, 8); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestNormalizePhrase(t *testing.T) {
	a := NormalizePhrase("climate change impacts coastal cities")
	b := NormalizePhrase("impacts coastal cities climate change")
	if a != b {
		t.Errorf("reordered phrases should normalize equal: %q vs %q", a, b)
	}
	if NormalizePhrase("Word!") != "word" {
		t.Error("punctuation should be stripped")
	}
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + 32
		}
	}
	return string(out)
}
